package forkchoice

import (
	"fmt"
	"sync"

	"tourneychain/consensus/ebsl"
	coreerrors "tourneychain/core/errors"
	"tourneychain/core/events"
	"tourneychain/core/types"
	"tourneychain/crypto"
)

// ValidatorKeyResolver maps a validator identity to its verification key.
type ValidatorKeyResolver interface {
	PublicKey(validator types.ValidatorID) (*crypto.PublicKey, error)
}

// Gadget is the two-phase (prevote/precommit) finality voting round,
// layered over a Chain's header DAG. One Gadget instance serves every
// height concurrently; each height's state is independent.
type Gadget struct {
	mu sync.Mutex

	chain    *Chain
	stakes   StakeTable
	resolver ValidatorKeyResolver
	trust    *ebsl.Engine
	emitter  events.Emitter

	stakeSums map[voteKey]map[[32]byte]uint64
	seenVotes map[seenKey]types.FinalityVote
	silenced  map[seenKey]bool

	status map[[32]byte]types.FinalityStatus

	finalized     bool
	finalizedHash [32]byte
}

// Option configures a Gadget at construction.
type Option func(*Gadget)

// WithEmitter wires an event sink.
func WithEmitter(e events.Emitter) Option {
	return func(g *Gadget) { g.emitter = e }
}

// NewGadget constructs a finality gadget over chain with the given static
// stake table.
func NewGadget(chain *Chain, stakes StakeTable, resolver ValidatorKeyResolver, trust *ebsl.Engine, opts ...Option) *Gadget {
	g := &Gadget{
		chain:     chain,
		stakes:    stakes,
		resolver:  resolver,
		trust:     trust,
		emitter:   events.NoopEmitter{},
		stakeSums: make(map[voteKey]map[[32]byte]uint64),
		seenVotes: make(map[seenKey]types.FinalityVote),
		silenced:  make(map[seenKey]bool),
		status:    make(map[[32]byte]types.FinalityStatus),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gadget) emit(e events.Event) {
	if g.emitter != nil {
		g.emitter.Emit(e)
	}
}

// Status returns a block's current finality status; unknown blocks are
// FinalityPending.
func (g *Gadget) Status(blockHash [32]byte) types.FinalityStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.status[blockHash]; ok {
		return s
	}
	return types.FinalityPending
}

// RecordVote applies one signed vote. It verifies the signature, checks
// for equivocation against any vote the same validator already cast for
// this (height, vote-type, round), and — if the vote is accepted — adds
// the validator's stake toward the relevant gate, promoting the block's
// status when the 2/3 threshold is crossed.
func (g *Gadget) RecordVote(vote types.FinalityVote) error {
	pub, err := g.resolver.PublicKey(vote.Validator)
	if err != nil {
		return fmt.Errorf("forkchoice: resolve validator %x: %w", vote.Validator, err)
	}
	if !crypto.Verify(pub, voteMessage(vote), vote.Signature) {
		return coreerrors.ErrSignatureInvalid
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := seenKey{validator: vote.Validator, voteKey: voteKey{height: vote.Height, voteType: vote.VoteType, round: vote.Round}}

	if g.silenced[key] {
		return fmt.Errorf("forkchoice: validator %x silenced for this round after equivocation", vote.Validator)
	}

	if prior, exists := g.seenVotes[key]; exists {
		if prior.BlockHash == vote.BlockHash {
			return coreerrors.ErrDuplicateVote
		}
		return g.handleEquivocation(prior, vote)
	}
	g.seenVotes[key] = vote

	return g.tallyVote(vote)
}

func (g *Gadget) tallyVote(vote types.FinalityVote) error {
	vk := voteKey{height: vote.Height, voteType: vote.VoteType, round: vote.Round}
	if g.stakeSums[vk] == nil {
		g.stakeSums[vk] = make(map[[32]byte]uint64)
	}
	g.stakeSums[vk][vote.BlockHash] += g.stakes[vote.Validator]
	sum := g.stakeSums[vk][vote.BlockHash]
	if !exceedsTwoThirds(sum, g.stakes.Total()) {
		return nil
	}

	switch vote.VoteType {
	case types.Prevote:
		if g.status[vote.BlockHash] != types.FinalityPending {
			return nil
		}
		g.promote(vote.BlockHash, types.FinalityPrevoted)
		g.emit(events.BlockPrevoted{BlockHash: vote.BlockHash, Height: vote.Height})
	case types.Precommit:
		if g.status[vote.BlockHash] != types.FinalityPrevoted {
			return nil
		}
		g.promote(vote.BlockHash, types.FinalityFinalized)
		g.finalized = true
		g.finalizedHash = vote.BlockHash
		g.emit(events.BlockFinalized{BlockHash: vote.BlockHash, Height: vote.Height})
		g.rejectConflicting(vote.BlockHash)
	}
	return nil
}

// exceedsTwoThirds reports sum > (2/3)*total using only integer
// arithmetic: sum*3 > total*2.
func exceedsTwoThirds(sum, total uint64) bool {
	return sum*3 > total*2
}

func (g *Gadget) promote(blockHash [32]byte, status types.FinalityStatus) {
	if g.status[blockHash] == types.FinalityFinalized {
		return // finalization is monotonic and terminal
	}
	g.status[blockHash] = status
}

// rejectConflicting marks as Rejected every block that already has a
// finality status entry (i.e. has received a vote) and is neither an
// ancestor nor a descendant of the finalized block, at any height. Headers
// that have never been voted on get no status entry here; CurrentTip still
// excludes them because it only considers descendants of the finalized
// block.
func (g *Gadget) rejectConflicting(finalized [32]byte) {
	for hash := range g.status {
		if hash == finalized {
			continue
		}
		if !g.chain.IsDescendant(hash, finalized) && !g.chain.IsDescendant(finalized, hash) {
			if g.status[hash] != types.FinalityRejected {
				g.status[hash] = types.FinalityRejected
				if h, ok := g.chain.Header(hash); ok {
					g.emit(events.BlockRejected{BlockHash: hash, Height: h.Height})
				}
			}
		}
	}
}

// handleEquivocation rejects the second vote, records the evidence, and
// silences the validator's further votes for this (height, vote-type,
// round).
func (g *Gadget) handleEquivocation(prior, second types.FinalityVote) error {
	key := seenKey{validator: second.Validator, voteKey: voteKey{height: second.Height, voteType: second.VoteType, round: second.Round}}
	g.silenced[key] = true

	evidence := types.EquivocationEvidence{
		Validator: second.Validator,
		Height:    second.Height,
		VoteType:  second.VoteType,
		Round:     second.Round,
		VoteA:     prior,
		VoteB:     second,
	}
	g.emit(events.EquivocationDetected{Evidence: evidence})

	if g.trust != nil {
		var participant types.ParticipantID
		copy(participant[:], second.Validator[:])
		if err := g.trust.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceEquivocation, Participant: participant, Height: second.Height}); err != nil {
			return fmt.Errorf("forkchoice: record equivocation evidence: %w", err)
		}
	}

	return fmt.Errorf("forkchoice: equivocation detected for validator %x at height %d", second.Validator, second.Height)
}
