package engine

import (
	"fmt"

	"tourneychain/core/events"
	"tourneychain/observability/metrics"
)

// MetricsEmitter adapts the Prometheus registry to the events.Emitter
// contract, so every subsystem's typed event also drives a counter/gauge
// without those subsystems importing observability/metrics directly.
type MetricsEmitter struct {
	reg *metrics.Consensus
}

// NewMetricsEmitter wraps the singleton metrics registry.
func NewMetricsEmitter(reg *metrics.Consensus) MetricsEmitter {
	return MetricsEmitter{reg: reg}
}

// Emit dispatches one event to the matching collector update.
func (m MetricsEmitter) Emit(e events.Event) {
	if m.reg == nil {
		return
	}
	switch ev := e.(type) {
	case events.TournamentStarted:
		m.reg.ObserveTournamentStarted(ev.Height)
	case events.TournamentCompleted:
		m.reg.ObserveTournamentCompleted(ev.Height)
	case events.TournamentInsufficientParticipants:
		_ = ev
	case events.EvidenceRecorded:
		if ev.Kind.String() == "MissedCommitment" {
			m.reg.IncMissedCommitment()
		}
		if ev.Kind.String() == "MissedReveal" {
			m.reg.IncMissedReveal()
		}
	case events.ParticipantKilled:
		m.reg.IncParticipantKilled()
	case events.SlashApplied:
		m.reg.IncSlashApplied(fmt.Sprintf("%v", ev.Kind))
	case events.BlockFinalized:
		m.reg.IncBlockFinalized(ev.Height)
	case events.BlockRejected:
		m.reg.IncBlockRejected()
	case events.EquivocationDetected:
		m.reg.IncEquivocation()
	}
}
