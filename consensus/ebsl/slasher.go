package ebsl

import "tourneychain/core/types"

// Slasher applies the stake-level consequences of a Resolution to a
// participant's stake ledger: the trust engine decides WHAT happens,
// something outside this package (the staking ledger) decides how
// balances move.
type Slasher interface {
	// Slash burns percent of the participant's stake (0-100).
	Slash(participant types.ParticipantID, percent int) error
	// Ban removes eligibility for epochs epochs (0 means no ban).
	Ban(participant types.ParticipantID, epochs uint64) error
}

// NoopSlasher discards every call; useful for tests and for running the
// trust engine without a wired staking ledger.
type NoopSlasher struct{}

func (NoopSlasher) Slash(types.ParticipantID, int) error   { return nil }
func (NoopSlasher) Ban(types.ParticipantID, uint64) error { return nil }
