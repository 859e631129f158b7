package events

import (
	"encoding/hex"
	"fmt"

	"tourneychain/core/types"
)

const (
	TypeTournamentStarted   = "tournament.started"
	TypeTournamentPhase     = "tournament.phase"
	TypeTournamentCompleted = "tournament.completed"
	TypeTournamentInsufficient = "tournament.insufficient_participants"
	TypeRoundSchedulerError = "tournament.scheduler_error"
)

// TournamentStarted fires when a tournament is constructed for a height.
// TraceID correlates this round's log lines and events end to end.
type TournamentStarted struct {
	Height      uint64
	ParticipantCount int
	Seed        [32]byte
	TraceID     string
}

func (e TournamentStarted) EventType() string { return TypeTournamentStarted }

// TournamentPhaseChanged fires on every strictly-monotonic phase transition.
type TournamentPhaseChanged struct {
	Height uint64
	From   types.Phase
	To     types.Phase
}

func (e TournamentPhaseChanged) EventType() string { return TypeTournamentPhase }

// TournamentCompleted fires once a winner is determined.
type TournamentCompleted struct {
	Height uint64
	Winner types.ParticipantID
	Matches int
	TraceID string
}

func (e TournamentCompleted) EventType() string { return TypeTournamentCompleted }

func (e TournamentCompleted) String() string {
	return fmt.Sprintf("tournament %d completed, winner=%s matches=%d", e.Height, hex.EncodeToString(e.Winner[:]), e.Matches)
}

// TournamentInsufficientParticipants fires when fewer than two participants
// are eligible at a height, so no block is produced.
type TournamentInsufficientParticipants struct {
	Height uint64
	Count  int
}

func (e TournamentInsufficientParticipants) EventType() string { return TypeTournamentInsufficient }

// RoundSchedulerError fires when the wall-clock phase scheduler fails to
// advance a round, e.g. because the round was already past the phase it
// tried to force closed.
type RoundSchedulerError struct {
	Height uint64
	Phase  string
	Err    string
}

func (e RoundSchedulerError) EventType() string { return TypeRoundSchedulerError }
