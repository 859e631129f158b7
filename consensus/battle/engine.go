package battle

import (
	"fmt"

	coreerrors "tourneychain/core/errors"
	"tourneychain/core/types"
)

// Option configures a single Run invocation.
type Option func(*runConfig)

type runConfig struct {
	withTranscript bool
}

// WithTranscript requests a transcript hash chain be produced alongside
// the result. Omitted by default since most matches never need replay.
func WithTranscript() Option {
	return func(c *runConfig) { c.withTranscript = true }
}

// Run adjudicates a single Battle to completion, returning the winner,
// final energies, and (optionally) a transcript digest. Run always
// terminates: either one side is extinguished before the step budget is
// exhausted, or the step budget itself bounds the loop. There are no
// recoverable errors during the run itself — the only errors Run returns
// are setup-time placement failures; once a battle starts it cannot fail.
func Run(b types.Battle, opts ...Option) (types.BattleResult, error) {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if b.GridSize <= 0 {
		b.GridSize = types.DefaultGridSize
	}
	if b.GridSize > types.MaxGridSize {
		return types.BattleResult{}, fmt.Errorf("%w: size %d exceeds %d", coreerrors.ErrGridTooLarge, b.GridSize, types.MaxGridSize)
	}

	grid := newBoard(b.GridSize)

	widthB, heightB, err := b.GliderB.Pattern.Dimensions()
	if err != nil {
		return types.BattleResult{}, fmt.Errorf("battle: %w", err)
	}

	cornerA := placementA(b.GridSize)
	cornerB := placementB(b.GridSize, widthB, heightB)

	if err := grid.place(b.GliderA, cornerA, types.SideA); err != nil {
		return types.BattleResult{}, err
	}
	if err := grid.place(b.GliderB, cornerB, types.SideB); err != nil {
		return types.BattleResult{}, err
	}

	tr := newTranscript(cfg.withTranscript)
	tr.record(0, grid.tagBytes())

	t := grid.tally()
	stepsRun := 0
	for step := 0; step < b.StepBudget; step++ {
		if t.extinct() {
			break
		}
		grid.step()
		stepsRun++
		tr.record(step+1, grid.tagBytes())
		t = grid.tally()
	}

	winner := decide(t, b.EntropySeed)
	digest, hasTranscript := tr.digest()

	return types.BattleResult{
		Winner:         winner,
		FinalEnergyA:   t.energyA,
		FinalEnergyB:   t.energyB,
		StepsRun:       stepsRun,
		TranscriptHash: digest,
		HasTranscript:  hasTranscript,
	}, nil
}
