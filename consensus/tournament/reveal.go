package tournament

import (
	"fmt"

	coreerrors "tourneychain/core/errors"
	"tourneychain/core/events"
	"tourneychain/core/types"
	"tourneychain/crypto"
)

// SubmitReveal opens a prior commitment. Validity requires the digest of
// (pattern-tag, nonce) to equal an unopened commitment's digest for this
// exact participant, and the participant to be in the eligible set.
func (o *Orchestrator) SubmitReveal(reveal types.Reveal) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requirePhase(types.PhaseReveal); err != nil {
		return err
	}
	if !o.isEligible(reveal.Participant) {
		return fmt.Errorf("%w: %x", coreerrors.ErrNotEligible, reveal.Participant)
	}
	commitment, ok := o.t.Commitments[reveal.Participant]
	if !ok {
		return fmt.Errorf("%w: %x has no commitment", coreerrors.ErrNoMatchingCommitment, reveal.Participant)
	}
	if _, already := o.t.Reveals[reveal.Participant]; already {
		return fmt.Errorf("tournament: %x already revealed", reveal.Participant)
	}

	digest := crypto.HashConcat([]byte{reveal.Glider.Pattern.Tag()}, reveal.Nonce[:])
	if digest != commitment.Digest {
		return fmt.Errorf("%w: digest mismatch for %x", coreerrors.ErrInvalidReveal, reveal.Participant)
	}

	o.t.Reveals[reveal.Participant] = reveal
	return nil
}

// AdvanceToBattle closes the reveal window: participants who committed
// but never produced a valid reveal accrue MissedReveal evidence, and the
// tournament moves to PhaseBattle.
func (o *Orchestrator) AdvanceToBattle() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requirePhase(types.PhaseReveal); err != nil {
		return err
	}
	for p := range o.t.Commitments {
		if _, revealed := o.t.Reveals[p]; !revealed {
			if err := o.trust.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceMissedReveal, Participant: p, Height: o.t.Height}); err != nil {
				return fmt.Errorf("tournament: record MissedReveal: %w", err)
			}
		}
	}
	from := o.t.Phase
	o.t.Phase = types.PhaseBattle
	o.emit(events.TournamentPhaseChanged{Height: o.t.Height, From: from, To: o.t.Phase})
	return nil
}
