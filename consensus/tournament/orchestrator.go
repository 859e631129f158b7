package tournament

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"tourneychain/consensus/ebsl"
	coreerrors "tourneychain/core/errors"
	"tourneychain/core/events"
	"tourneychain/core/types"
	"tourneychain/crypto"
)

// Orchestrator owns one Tournament's mutable state and drives it strictly
// forward through Commit -> Reveal -> Battle -> Complete.
type Orchestrator struct {
	mu       sync.Mutex
	t        *types.Tournament
	params   Params
	resolver KeyResolver
	trust    *ebsl.Engine
	emitter  events.Emitter
	traceID  string

	seenLinkTags map[[32]byte]types.ParticipantID
}

// TraceID returns the correlation id generated for this round, for
// callers that want to tie external logs back to the events this
// orchestrator emits.
func (o *Orchestrator) TraceID() string { return o.traceID }

// Option configures an Orchestrator at construction.
type Option func(*Orchestrator)

// WithEmitter wires an event sink. Defaults to events.NoopEmitter.
func WithEmitter(e events.Emitter) Option {
	return func(o *Orchestrator) { o.emitter = e }
}

// New constructs an Orchestrator for one consensus round. eligibleSet must
// already be EBSL-filtered; fewer than two members is reported as
// coreerrors.ErrInsufficientParticipants rather than constructing a round.
func New(height uint64, eligibleSet []types.ParticipantID, seed [32]byte, params Params, resolver KeyResolver, trust *ebsl.Engine, opts ...Option) (*Orchestrator, error) {
	if len(eligibleSet) < 2 {
		return nil, fmt.Errorf("%w: height %d has %d eligible participants", coreerrors.ErrInsufficientParticipants, height, len(eligibleSet))
	}
	o := &Orchestrator{
		t: &types.Tournament{
			Height:      height,
			EligibleSet: append([]types.ParticipantID(nil), eligibleSet...),
			Seed:        seed,
			Phase:       types.PhaseCommit,
			Commitments: make(map[types.ParticipantID]types.Commitment),
			Reveals:     make(map[types.ParticipantID]types.Reveal),
		},
		params:       params,
		resolver:     resolver,
		trust:        trust,
		emitter:      events.NoopEmitter{},
		traceID:      uuid.NewString(),
		seenLinkTags: make(map[[32]byte]types.ParticipantID),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.emit(events.TournamentStarted{Height: height, ParticipantCount: len(eligibleSet), Seed: seed, TraceID: o.traceID})
	return o, nil
}

func (o *Orchestrator) emit(e events.Event) {
	if o.emitter != nil {
		o.emitter.Emit(e)
	}
}

// Snapshot returns a copy of the tournament's current phase and winner,
// safe to read without holding the caller's own lock.
func (o *Orchestrator) Snapshot() types.Tournament {
	o.mu.Lock()
	defer o.mu.Unlock()
	return *o.t
}

func (o *Orchestrator) isEligible(p types.ParticipantID) bool {
	for _, e := range o.t.EligibleSet {
		if e == p {
			return true
		}
	}
	return false
}

func (o *Orchestrator) requirePhase(want types.Phase) error {
	if o.t.Phase != want {
		return fmt.Errorf("%w: tournament is in %s, want %s", coreerrors.ErrWrongPhase, o.t.Phase, want)
	}
	return nil
}

// eligibleRing resolves the public keys for the full eligible set, in
// fixed order, for ring-signature verification.
func (o *Orchestrator) eligibleRing() ([]*crypto.PublicKey, error) {
	ring := make([]*crypto.PublicKey, 0, len(o.t.EligibleSet))
	for _, p := range o.t.EligibleSet {
		pub, err := o.resolver.PublicKey(p)
		if err != nil {
			return nil, fmt.Errorf("tournament: resolve ring member %x: %w", p, err)
		}
		ring = append(ring, pub)
	}
	return ring, nil
}
