package errors

import stderrors "errors"

// Programmer / contract violations: surfaced to the caller immediately,
// never retried, never logged as a fault against a participant.
var (
	ErrWrongPhase             = stderrors.New("tournament: wrong phase")
	ErrInsufficientParticipants = stderrors.New("tournament: insufficient eligible participants")
	ErrDuplicateVote          = stderrors.New("finality: duplicate vote")
	ErrUnknownParent          = stderrors.New("forkchoice: unknown parent header")
	ErrAlreadyKnown           = stderrors.New("forkchoice: header already known")
	ErrUnknownBlock           = stderrors.New("finality: unknown block hash")
)

// Participant faults: posted as evidence into EBSL; the caller is told the
// submission was rejected, but no global failure is raised.
var (
	ErrInvalidReveal        = stderrors.New("tournament: invalid reveal")
	ErrNoMatchingCommitment = stderrors.New("tournament: no matching commitment")
	ErrNotEligible          = stderrors.New("tournament: participant not eligible")
)

// Resource exhaustion: rejected at the boundary, never retried.
var (
	ErrGridTooLarge     = stderrors.New("battle: grid exceeds implementation ceiling")
	ErrInvalidPlacement = stderrors.New("battle: invalid glider placement")
)

// External-dependency failures: fatal for the specific message; the message
// is dropped with no state update.
var (
	ErrSignatureInvalid = stderrors.New("crypto: signature verification failed")
	ErrVRFInvalid       = stderrors.New("crypto: vrf verification failed")
)
