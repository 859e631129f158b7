// Package metrics exposes the Prometheus collectors tournamentd registers
// for its consensus subsystems.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Consensus bundles every collector the orchestrator, battle engine, trust
// engine, and finality gadget report into.
type Consensus struct {
	tournamentsStarted   *prometheus.CounterVec
	tournamentsCompleted *prometheus.CounterVec
	phaseDuration        *prometheus.HistogramVec
	missedCommitments    prometheus.Counter
	missedReveals        prometheus.Counter

	battlesRun      prometheus.Counter
	battleSteps     prometheus.Histogram
	battleExtinct   *prometheus.CounterVec
	battleTieBreaks prometheus.Counter

	trustGauge        *prometheus.GaugeVec
	eligibleSetSize   prometheus.Gauge
	participantsKilled prometheus.Counter
	slashesApplied    *prometheus.CounterVec

	blockFinalized  prometheus.Counter
	blockRejected   prometheus.Counter
	equivocations   prometheus.Counter
	finalityHeight  prometheus.Gauge
}

var (
	consensusOnce sync.Once
	consensusReg  *Consensus
)

// Registry returns the lazily-initialized singleton metrics registry.
func Registry() *Consensus {
	consensusOnce.Do(func() {
		consensusReg = &Consensus{
			tournamentsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "tournament",
				Name:      "started_total",
				Help:      "Count of tournaments started by block height.",
			}, []string{"height"}),
			tournamentsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "tournament",
				Name:      "completed_total",
				Help:      "Count of tournaments that produced a winner.",
			}, []string{"height"}),
			phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "tourneychain",
				Subsystem: "tournament",
				Name:      "phase_duration_seconds",
				Help:      "Wall-clock duration of each tournament phase.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"phase"}),
			missedCommitments: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "tournament",
				Name:      "missed_commitments_total",
				Help:      "Count of eligible participants who never submitted a commitment.",
			}),
			missedReveals: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "tournament",
				Name:      "missed_reveals_total",
				Help:      "Count of committed participants who never submitted a reveal.",
			}),
			battlesRun: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "battle",
				Name:      "runs_total",
				Help:      "Count of cellular-automaton battles executed.",
			}),
			battleSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "tourneychain",
				Subsystem: "battle",
				Name:      "steps",
				Help:      "Number of generations a battle ran before resolving.",
				Buckets:   prometheus.LinearBuckets(0, 50, 20),
			}),
			battleExtinct: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "battle",
				Name:      "outcomes_total",
				Help:      "Count of battle outcomes segmented by winning side.",
			}, []string{"side"}),
			battleTieBreaks: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "battle",
				Name:      "tie_breaks_total",
				Help:      "Count of battles resolved by the entropy tie-break.",
			}),
			trustGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "tourneychain",
				Subsystem: "ebsl",
				Name:      "trust",
				Help:      "Current trust score per participant.",
			}, []string{"participant"}),
			eligibleSetSize: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "tourneychain",
				Subsystem: "ebsl",
				Name:      "eligible_set_size",
				Help:      "Number of participants currently above the eligibility threshold.",
			}),
			participantsKilled: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "ebsl",
				Name:      "participants_killed_total",
				Help:      "Count of participants whose trust crossed below the kill threshold.",
			}),
			slashesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "ebsl",
				Name:      "slashes_applied_total",
				Help:      "Count of slashing actions applied segmented by evidence kind.",
			}, []string{"kind"}),
			blockFinalized: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "forkchoice",
				Name:      "blocks_finalized_total",
				Help:      "Count of blocks reaching Finalized status.",
			}),
			blockRejected: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "forkchoice",
				Name:      "blocks_rejected_total",
				Help:      "Count of blocks rejected once a conflicting branch finalized.",
			}),
			equivocations: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "tourneychain",
				Subsystem: "forkchoice",
				Name:      "equivocations_total",
				Help:      "Count of detected double-votes.",
			}),
			finalityHeight: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "tourneychain",
				Subsystem: "forkchoice",
				Name:      "finalized_height",
				Help:      "Height of the most recently finalized block.",
			}),
		}
		prometheus.MustRegister(
			consensusReg.tournamentsStarted,
			consensusReg.tournamentsCompleted,
			consensusReg.phaseDuration,
			consensusReg.missedCommitments,
			consensusReg.missedReveals,
			consensusReg.battlesRun,
			consensusReg.battleSteps,
			consensusReg.battleExtinct,
			consensusReg.battleTieBreaks,
			consensusReg.trustGauge,
			consensusReg.eligibleSetSize,
			consensusReg.participantsKilled,
			consensusReg.slashesApplied,
			consensusReg.blockFinalized,
			consensusReg.blockRejected,
			consensusReg.equivocations,
			consensusReg.finalityHeight,
		)
	})
	return consensusReg
}

func (m *Consensus) ObserveTournamentStarted(height uint64) {
	if m == nil {
		return
	}
	m.tournamentsStarted.WithLabelValues(fmt.Sprintf("%d", height)).Inc()
}

func (m *Consensus) ObserveTournamentCompleted(height uint64) {
	if m == nil {
		return
	}
	m.tournamentsCompleted.WithLabelValues(fmt.Sprintf("%d", height)).Inc()
}

func (m *Consensus) ObservePhaseDuration(phase string, seconds float64) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Observe(seconds)
}

func (m *Consensus) IncMissedCommitment() {
	if m == nil {
		return
	}
	m.missedCommitments.Inc()
}

func (m *Consensus) IncMissedReveal() {
	if m == nil {
		return
	}
	m.missedReveals.Inc()
}

func (m *Consensus) ObserveBattle(steps int, side string, tieBreak bool) {
	if m == nil {
		return
	}
	m.battlesRun.Inc()
	m.battleSteps.Observe(float64(steps))
	m.battleExtinct.WithLabelValues(side).Inc()
	if tieBreak {
		m.battleTieBreaks.Inc()
	}
}

func (m *Consensus) SetTrust(participant string, trust float64) {
	if m == nil {
		return
	}
	m.trustGauge.WithLabelValues(participant).Set(trust)
}

func (m *Consensus) SetEligibleSetSize(n int) {
	if m == nil {
		return
	}
	m.eligibleSetSize.Set(float64(n))
}

func (m *Consensus) IncParticipantKilled() {
	if m == nil {
		return
	}
	m.participantsKilled.Inc()
}

func (m *Consensus) IncSlashApplied(kind string) {
	if m == nil {
		return
	}
	m.slashesApplied.WithLabelValues(kind).Inc()
}

func (m *Consensus) IncBlockFinalized(height uint64) {
	if m == nil {
		return
	}
	m.blockFinalized.Inc()
	m.finalityHeight.Set(float64(height))
}

func (m *Consensus) IncBlockRejected() {
	if m == nil {
		return
	}
	m.blockRejected.Inc()
}

func (m *Consensus) IncEquivocation() {
	if m == nil {
		return
	}
	m.equivocations.Inc()
}
