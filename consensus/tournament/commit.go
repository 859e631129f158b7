package tournament

import (
	"fmt"

	coreerrors "tourneychain/core/errors"
	"tourneychain/core/events"
	"tourneychain/core/types"
	"tourneychain/crypto"
)

// SubmitCommitment records one participant's commit-phase submission.
// commitment.RingSig is verified against the full eligible set (so the
// signer is provably some eligible member without which one being
// disclosed), and commitment.LinkTag is rejected if it equals the tag of a
// previously-accepted commitment. The tag is supplied by the caller and is
// not checked against the ring signature, so it does not by itself stop a
// signer who presents a fresh tag from committing twice under different
// claimed identities. claimed is bookkeeping only — the
// orchestrator's own notion of who to charge MissedReveal against if this
// commitment is never opened — not a claim verified by the ring signature
// itself.
func (o *Orchestrator) SubmitCommitment(claimed types.ParticipantID, commitment types.Commitment) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requirePhase(types.PhaseCommit); err != nil {
		return err
	}
	if !o.isEligible(claimed) {
		return fmt.Errorf("%w: %x", coreerrors.ErrNotEligible, claimed)
	}
	if _, exists := o.t.Commitments[claimed]; exists {
		return fmt.Errorf("tournament: %x already committed", claimed)
	}

	ring, err := o.eligibleRing()
	if err != nil {
		return err
	}
	ok, _ := crypto.RingVerify(ring, commitment.Digest[:], crypto.RingSignature{Sig: commitment.RingSig})
	if !ok {
		return fmt.Errorf("%w: ring signature does not verify", coreerrors.ErrInvalidReveal)
	}

	if prior, dup := o.seenLinkTags[commitment.LinkTag]; dup {
		return fmt.Errorf("tournament: duplicate commitment linkability tag (first seen from %x)", prior)
	}
	o.seenLinkTags[commitment.LinkTag] = claimed

	commitment.Height = o.t.Height
	o.t.Commitments[claimed] = commitment
	return nil
}

// AdvanceToReveal closes the commit window: participants who never
// submitted a commitment accrue MissedCommitment evidence, and the
// tournament moves to PhaseReveal.
func (o *Orchestrator) AdvanceToReveal() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requirePhase(types.PhaseCommit); err != nil {
		return err
	}
	for _, p := range o.t.EligibleSet {
		if _, committed := o.t.Commitments[p]; !committed {
			if err := o.trust.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceMissedCommitment, Participant: p, Height: o.t.Height}); err != nil {
				return fmt.Errorf("tournament: record MissedCommitment: %w", err)
			}
		}
	}
	from := o.t.Phase
	o.t.Phase = types.PhaseReveal
	o.emit(events.TournamentPhaseChanged{Height: o.t.Height, From: from, To: o.t.Phase})
	return nil
}
