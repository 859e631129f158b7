package forkchoice

import "tourneychain/core/types"

// StakeTable is the per-validator stake weight used to evaluate the 2/3
// gates. It is read-only from the gadget's perspective; updating stake
// belongs to a collaborator outside this package.
type StakeTable map[types.ValidatorID]uint64

// Total sums every validator's stake.
func (s StakeTable) Total() uint64 {
	var total uint64
	for _, w := range s {
		total += w
	}
	return total
}
