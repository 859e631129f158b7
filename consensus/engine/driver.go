// Package engine wires the Battle Engine, Tournament Orchestrator, EBSL
// Trust Engine, and Fork Choice & Finality gadget into one per-height
// round driver: a per-round wall-clock phase scheduler, plus a concurrent
// vote ingester fed by a buffered vote channel for the finality gadget.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tourneychain/consensus/ebsl"
	"tourneychain/consensus/forkchoice"
	"tourneychain/consensus/tournament"
	coreerrors "tourneychain/core/errors"
	"tourneychain/core/events"
	"tourneychain/core/types"
	"tourneychain/p2p"
)

// Config bundles the static parameters a Driver needs at construction.
type Config struct {
	TournamentParams tournament.Params
	Stakes           forkchoice.StakeTable
	Clock            Clock
	BroadcastMaxLag  int // buffered channel depth for incoming votes

	// CommitWindow and RevealWindow bound how long RunPhaseScheduler waits
	// before forcing the commit and reveal phases closed, regardless of how
	// many participants have responded.
	CommitWindow time.Duration
	RevealWindow time.Duration
}

// Driver owns one chain + finality gadget for the node's lifetime, and
// constructs a fresh tournament.Orchestrator per height; no state carries
// over between heights.
type Driver struct {
	mu sync.Mutex

	cfg       Config
	keys      *KeyStore
	trust     *ebsl.Engine
	chain     *forkchoice.Chain
	gadget    *forkchoice.Gadget
	emitter   events.Emitter
	broadcast p2p.Broadcaster

	voteCh chan types.FinalityVote

	current *tournament.Orchestrator
}

// New constructs a Driver over an already-inserted genesis header.
func New(genesis *types.BlockHeader, keys *KeyStore, trust *ebsl.Engine, cfg Config, emitter events.Emitter, broadcast p2p.Broadcaster) (*Driver, error) {
	chain, err := forkchoice.NewChain(genesis)
	if err != nil {
		return nil, fmt.Errorf("engine: new chain: %w", err)
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	gadget := forkchoice.NewGadget(chain, cfg.Stakes, keys.AsValidatorResolver(), trust, forkchoice.WithEmitter(emitter))

	lag := cfg.BroadcastMaxLag
	if lag <= 0 {
		lag = 256
	}
	d := &Driver{
		cfg:       cfg,
		keys:      keys,
		trust:     trust,
		chain:     chain,
		gadget:    gadget,
		emitter:   emitter,
		broadcast: broadcast,
		voteCh:    make(chan types.FinalityVote, lag),
	}
	return d, nil
}

// Chain exposes the header DAG for external callers (e.g. the RPC layer).
func (d *Driver) Chain() *forkchoice.Chain { return d.chain }

// Gadget exposes the finality gadget.
func (d *Driver) Gadget() *forkchoice.Gadget { return d.gadget }

// Trust exposes the EBSL engine.
func (d *Driver) Trust() *ebsl.Engine { return d.trust }

// StartRound begins a new tournament at height over eligibleSet, seeded by
// seed (the combined VRF output for the round).
func (d *Driver) StartRound(height uint64, eligibleSet []types.ParticipantID, seed [32]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	o, err := tournament.New(height, eligibleSet, seed, d.cfg.TournamentParams, d.keys, d.trust, tournament.WithEmitter(d.emitter))
	if err != nil {
		if errors.Is(err, coreerrors.ErrInsufficientParticipants) {
			d.emitter.Emit(events.TournamentInsufficientParticipants{Height: height, Count: len(eligibleSet)})
		}
		return fmt.Errorf("engine: start round: %w", err)
	}
	d.current = o
	return nil
}

// Current returns the in-flight tournament orchestrator for the active
// round, or nil if no round has been started.
func (d *Driver) Current() *tournament.Orchestrator {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// SubmitVote enqueues a finality vote for asynchronous ingestion. It never
// blocks the caller beyond the channel's buffer; a full buffer means the
// vote is dropped rather than stalling the submitter.
func (d *Driver) SubmitVote(vote types.FinalityVote) {
	select {
	case d.voteCh <- vote:
	default:
	}
}

// RunVoteIngester drains the vote channel until ctx is cancelled,
// forwarding every vote to the finality gadget. Run this once, in its own
// goroutine, for the lifetime of the node.
func (d *Driver) RunVoteIngester(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case vote := <-d.voteCh:
			_ = d.gadget.RecordVote(vote)
		}
	}
}

// InsertHeader adds a proposed block header to the chain and returns its
// hash.
func (d *Driver) InsertHeader(h *types.BlockHeader) ([32]byte, error) {
	return d.chain.InsertHeader(h)
}

// CurrentTip returns the fork-choice tip honoring finalized-ancestor
// constraints.
func (d *Driver) CurrentTip() ([32]byte, error) {
	return d.gadget.CurrentTip()
}

// RunBattles drives the active round's bracket to completion on the
// caller's goroutine; vote ingestion (RunVoteIngester) runs independently
// of it.
func (d *Driver) RunBattles() (types.ParticipantID, error) {
	o := d.Current()
	if o == nil {
		return types.ParticipantID{}, fmt.Errorf("engine: no active round")
	}
	return o.RunBracket()
}

// stopTimer stops t, draining its channel if the timer had already fired.
func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// RunPhaseScheduler forces the round started by StartRound through its
// wall-clock phase boundaries: the commit window closes after
// cfg.CommitWindow regardless of how many participants have committed
// (missing participants accrue MissedCommitment evidence), and likewise for
// the reveal window. Call it once per started round, in its own goroutine;
// it returns once the round's bracket has run or ctx is cancelled.
func (d *Driver) RunPhaseScheduler(ctx context.Context) {
	o := d.Current()
	if o == nil {
		return
	}

	commitTimer := time.NewTimer(d.cfg.CommitWindow)
	defer stopTimer(commitTimer)
	select {
	case <-ctx.Done():
		return
	case <-commitTimer.C:
	}
	height := o.Snapshot().Height
	if err := o.AdvanceToReveal(); err != nil {
		d.emitter.Emit(events.RoundSchedulerError{Height: height, Phase: "commit", Err: err.Error()})
		return
	}

	revealTimer := time.NewTimer(d.cfg.RevealWindow)
	defer stopTimer(revealTimer)
	select {
	case <-ctx.Done():
		return
	case <-revealTimer.C:
	}
	if err := o.AdvanceToBattle(); err != nil {
		d.emitter.Emit(events.RoundSchedulerError{Height: height, Phase: "reveal", Err: err.Error()})
		return
	}

	if _, err := o.RunBracket(); err != nil {
		d.emitter.Emit(events.RoundSchedulerError{Height: height, Phase: "battle", Err: err.Error()})
	}
}
