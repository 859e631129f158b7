package ebsl

import (
	"context"
	"fmt"
	"sync"

	"tourneychain/core/events"
	"tourneychain/core/types"
)

// HistoryRecorder persists a queryable log of evidence events, alongside
// the counters themselves. Wired to storage/history.Store in production;
// left nil in tests that don't need the query surface.
type HistoryRecorder interface {
	Record(ctx context.Context, evt types.EvidenceEvent) error
}

// Engine is the public EBSL trust engine: per-participant (r, s) counters,
// decay, trust derivation, eligibility/kill predicates and slashing, all
// behind one mutex-guarded API. Evidence storage and slash application are
// split into their own files but collapsed into this single owning type
// since both halves share the same lock.
type Engine struct {
	mu      sync.Mutex
	store   *Store
	params  Parameters
	slasher Slasher
	emitter events.Emitter
	history HistoryRecorder
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithParameters overrides DefaultParameters().
func WithParameters(p Parameters) Option {
	return func(e *Engine) { e.params = p }
}

// WithSlasher wires a stake ledger. Defaults to NoopSlasher.
func WithSlasher(s Slasher) Option {
	return func(e *Engine) { e.slasher = s }
}

// WithEmitter wires an event sink. Defaults to events.NoopEmitter.
func WithEmitter(em events.Emitter) Option {
	return func(e *Engine) { e.emitter = em }
}

// WithHistory wires a queryable evidence-event log. Optional.
func WithHistory(h HistoryRecorder) Option {
	return func(e *Engine) { e.history = h }
}

// NewEngine constructs an Engine over store with defaults overridable by
// opts.
func NewEngine(store *Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		params:  DefaultParameters(),
		slasher: NoopSlasher{},
		emitter: events.NoopEmitter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) emit(ev events.Event) {
	if e.emitter != nil {
		e.emitter.Emit(ev)
	}
}

// RecordEvidence bumps the participant's (r, s) counters by evt.Kind's
// weight, persists the result, and applies the Catalog's slashing
// Resolution for evt.Kind against the participant's trust state as it
// stood BEFORE this event was applied — an equivocation that itself
// crosses the kill threshold is judged by the rule for a killed
// participant only starting with the NEXT piece of evidence: kill status is
// always evaluated against the state as it stood before this event.
func (e *Engine) RecordEvidence(evt types.EvidenceEvent) error {
	if _, ok := Resolve(evt.Kind); !ok {
		return fmt.Errorf("ebsl: unknown evidence kind %v", evt.Kind)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	counters, err := e.store.get(evt.Participant)
	if err != nil {
		return fmt.Errorf("ebsl: load counters: %w", err)
	}
	wasKilled := counters.trust(e.params) < e.params.TKill

	counters.apply(evt, e.params.HistoryCap)
	if err := e.store.Put(evt.Participant, counters); err != nil {
		return fmt.Errorf("ebsl: persist counters: %w", err)
	}

	e.emit(events.EvidenceRecorded{
		Participant: evt.Participant,
		Kind:        evt.Kind,
		Height:      evt.Height,
		R:           counters.R,
		S:           counters.S,
	})
	if e.history != nil {
		if err := e.history.Record(context.Background(), evt); err != nil {
			return fmt.Errorf("ebsl: record history: %w", err)
		}
	}

	rule, _ := Resolve(evt.Kind)
	resolution := rule.Apply(wasKilled)
	if err := e.applyResolution(evt.Participant, evt.Kind, resolution); err != nil {
		return err
	}

	if newTrust := counters.trust(e.params); !wasKilled && newTrust < e.params.TKill {
		e.emit(events.ParticipantKilled{Participant: evt.Participant, Trust: newTrust})
	}
	return nil
}

func (e *Engine) applyResolution(p types.ParticipantID, kind types.EvidenceKind, r Resolution) error {
	switch r.Action {
	case ActionNone:
		return nil
	case ActionBanEpochs:
		if r.BanEpochs == 0 {
			return nil
		}
		if err := e.slasher.Ban(p, r.BanEpochs); err != nil {
			return fmt.Errorf("ebsl: ban: %w", err)
		}
		e.emit(events.SlashApplied{Participant: p, Kind: kind, Action: "ban"})
		return nil
	case ActionSlashPercent, ActionSlashFull:
		if r.Percent <= 0 {
			return nil
		}
		if err := e.slasher.Slash(p, r.Percent); err != nil {
			return fmt.Errorf("ebsl: slash: %w", err)
		}
		if r.BanEpochs > 0 {
			if err := e.slasher.Ban(p, r.BanEpochs); err != nil {
				return fmt.Errorf("ebsl: ban: %w", err)
			}
		}
		e.emit(events.SlashApplied{Participant: p, Kind: kind, Action: "slash"})
		return nil
	default:
		return fmt.Errorf("ebsl: unknown slash action %v", r.Action)
	}
}

// Decay advances every known-by-caller participant's counters by epochs
// epochs of asymmetric decay. Callers pass the full eligible set explicitly
// rather than this package maintaining its own participant index.
func (e *Engine) Decay(participants []types.ParticipantID, epochs uint64) error {
	if epochs == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range participants {
		counters, err := e.store.get(p)
		if err != nil {
			return fmt.Errorf("ebsl: load counters: %w", err)
		}
		counters.decay(e.params, epochs)
		if err := e.store.Put(p, counters); err != nil {
			return fmt.Errorf("ebsl: persist counters: %w", err)
		}
	}
	return nil
}

// Trust returns the current expected trust value for a participant. An
// unknown participant has r=s=0, opinion {0,0,1}, and trust = alpha*1.
func (e *Engine) Trust(p types.ParticipantID) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	counters, err := e.store.get(p)
	if err != nil {
		return 0, fmt.Errorf("ebsl: load counters: %w", err)
	}
	return counters.trust(e.params), nil
}

// Opinion returns the full subjective-logic triple for a participant.
func (e *Engine) Opinion(p types.ParticipantID) (Opinion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	counters, err := e.store.get(p)
	if err != nil {
		return Opinion{}, fmt.Errorf("ebsl: load counters: %w", err)
	}
	return counters.opinion(e.params), nil
}

// IsEligible reports whether a participant's trust meets TMin.
func (e *Engine) IsEligible(p types.ParticipantID) (bool, error) {
	trust, err := e.Trust(p)
	if err != nil {
		return false, err
	}
	return trust >= e.params.TMin, nil
}

// IsKilled reports whether a participant's trust has fallen below TKill.
func (e *Engine) IsKilled(p types.ParticipantID) (bool, error) {
	trust, err := e.Trust(p)
	if err != nil {
		return false, err
	}
	return trust < e.params.TKill, nil
}

// Reinstate clears a participant's counters back to a fresh (r=s=0) state,
// overriding the kill predicate. This is a governance action: it bypasses
// the evidence-driven trust model entirely and exists only for the
// manual-reinstatement RPC endpoint.
func (e *Engine) Reinstate(p types.ParticipantID, operator string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Put(p, &Counters{}); err != nil {
		return fmt.Errorf("ebsl: reinstate: %w", err)
	}
	e.emit(events.ParticipantReinstated{Participant: p, Operator: operator})
	return nil
}

// EligibleSet filters candidates down to those currently meeting TMin,
// preserving input order.
func (e *Engine) EligibleSet(candidates []types.ParticipantID) ([]types.ParticipantID, error) {
	out := make([]types.ParticipantID, 0, len(candidates))
	for _, c := range candidates {
		ok, err := e.IsEligible(c)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}
