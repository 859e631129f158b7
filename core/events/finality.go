package events

import "tourneychain/core/types"

const (
	TypeBlockPrevoted     = "finality.prevoted"
	TypeBlockFinalized    = "finality.finalized"
	TypeBlockRejected     = "finality.rejected"
	TypeEquivocationFound = "finality.equivocation"
	TypeTipChanged        = "forkchoice.tip_changed"
)

// BlockPrevoted fires when a block crosses the prevote gate.
type BlockPrevoted struct {
	BlockHash [32]byte
	Height    uint64
}

func (e BlockPrevoted) EventType() string { return TypeBlockPrevoted }

// BlockFinalized fires when a block crosses the precommit gate having
// already been prevoted.
type BlockFinalized struct {
	BlockHash [32]byte
	Height    uint64
}

func (e BlockFinalized) EventType() string { return TypeBlockFinalized }

// BlockRejected fires when a finalized ancestor implicitly rejects a
// conflicting subtree.
type BlockRejected struct {
	BlockHash [32]byte
	Height    uint64
}

func (e BlockRejected) EventType() string { return TypeBlockRejected }

// EquivocationDetected fires when two conflicting votes are observed from
// the same validator for the same (height, type, round).
type EquivocationDetected struct {
	Evidence types.EquivocationEvidence
}

func (e EquivocationDetected) EventType() string { return TypeEquivocationFound }

// TipChanged describes a change of the fork-choice tip. No component in this
// repository emits it: Gadget.CurrentTip recomputes the tip on each call
// without tracking the previous one.
type TipChanged struct {
	NewTip [32]byte
	Height uint64
}

func (e TipChanged) EventType() string { return TypeTipChanged }
