// Package tournament drives one consensus round's commit/reveal/battle
// state machine to completion: a single mutex-guarded struct advances
// strictly forward through named phases, collecting participant input at
// each phase boundary and emitting evidence on phase completion.
package tournament

import (
	"tourneychain/core/types"
	"tourneychain/crypto"
)

// Params configures one tournament round's battle sizing.
type Params struct {
	StepBudget int
	GridSize   int
}

// DefaultParams returns the canonical battle sizing used unless a
// deployment overrides it.
func DefaultParams() Params {
	return Params{StepBudget: 500, GridSize: types.DefaultGridSize}
}

// KeyResolver maps participant identities to their verification keys, used
// to check ring signatures over the eligible set at commit time.
type KeyResolver interface {
	PublicKey(participant types.ParticipantID) (*crypto.PublicKey, error)
}
