package config

import (
	"fmt"

	"tourneychain/core/types"
)

// ValidateConfig checks a ConsensusLimits for internal consistency before
// it is wired into the orchestrator.
func ValidateConfig(l ConsensusLimits) error {
	if l.Battle.GridSize <= 0 || l.Battle.GridSize > types.MaxGridSize {
		return fmt.Errorf("battle: grid_size must be in (0, %d]", types.MaxGridSize)
	}
	if l.Battle.StepBudget <= 0 {
		return fmt.Errorf("battle: step_budget must be > 0")
	}
	if l.Timeouts.CommitWindowSeconds <= 0 {
		return fmt.Errorf("timeouts: commit_window_seconds must be > 0")
	}
	if l.Timeouts.RevealWindowSeconds <= 0 {
		return fmt.Errorf("timeouts: reveal_window_seconds must be > 0")
	}
	if l.Timeouts.VoteRoundTimeoutSeconds <= 0 {
		return fmt.Errorf("timeouts: vote_round_timeout_seconds must be > 0")
	}
	return nil
}
