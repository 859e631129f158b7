package tournament

import (
	"fmt"

	"tourneychain/consensus/battle"
	coreerrors "tourneychain/core/errors"
	"tourneychain/core/events"
	"tourneychain/core/types"
)

// RunBracket executes every match of the single-elimination bracket to
// completion: round 0 is built from the revealed participants (sorted,
// shuffled, bye-padded), each non-bye match is run through the battle
// engine, and winners propagate upward until one participant remains. The
// tournament moves to PhaseComplete and the completion evidence batch
// (GoodBlock for the winner, HonestParticipation for every revealer) is
// recorded one event at a time; the batch is not atomic, so if recording
// fails part-way the events already recorded stay applied.
func (o *Orchestrator) RunBracket() (types.ParticipantID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requirePhase(types.PhaseBattle); err != nil {
		return types.ParticipantID{}, err
	}

	revealed := make([]types.ParticipantID, 0, len(o.t.Reveals))
	for p := range o.t.Reveals {
		revealed = append(revealed, p)
	}
	if len(revealed) < 2 {
		return types.ParticipantID{}, fmt.Errorf("%w: only %d participants revealed", coreerrors.ErrInsufficientParticipants, len(revealed))
	}

	ordered := sortedParticipants(revealed)
	shuffled := seededShuffle(ordered, o.t.Seed)

	round := buildRound0(shuffled, o.t.Seed)
	allMatches := make([]types.Match, 0, 2*len(round))

	for {
		for i := range round {
			m := &round[i]
			if m.Bye {
				continue
			}
			if err := o.runMatch(m); err != nil {
				return types.ParticipantID{}, err
			}
		}
		allMatches = append(allMatches, round...)
		if len(round) == 1 {
			break
		}
		round = nextRound(round, round[0].Round+1, o.t.Seed)
	}

	winner := allMatches[len(allMatches)-1].Winner
	o.t.Matches = allMatches
	o.t.Winner = winner
	o.t.HasWinner = true
	from := o.t.Phase
	o.t.Phase = types.PhaseComplete
	o.emit(events.TournamentPhaseChanged{Height: o.t.Height, From: from, To: o.t.Phase})

	if err := o.recordCompletionEvidence(winner, revealed); err != nil {
		return types.ParticipantID{}, err
	}
	o.emit(events.TournamentCompleted{Height: o.t.Height, Winner: winner, Matches: len(allMatches), TraceID: o.traceID})
	return winner, nil
}

// runMatch places the two finalists' revealed gliders into a battle and
// resolves the match's winner and transcript.
func (o *Orchestrator) runMatch(m *types.Match) error {
	revealA := o.t.Reveals[m.A]
	revealB := o.t.Reveals[m.B]

	b := types.Battle{
		GliderA:     revealA.Glider,
		GliderB:     revealB.Glider,
		StepBudget:  o.params.StepBudget,
		EntropySeed: m.EntropySeed,
		GridSize:    o.params.GridSize,
	}
	result, err := battle.Run(b, battle.WithTranscript())
	if err != nil {
		return fmt.Errorf("tournament: round %d match %d: %w", m.Round, m.MatchIndex, err)
	}

	m.Outcome = result.Winner
	m.Transcript = result.TranscriptHash
	if result.Winner == types.OutcomeAWins {
		m.Winner = m.A
	} else {
		m.Winner = m.B
	}
	return nil
}

// recordCompletionEvidence emits the fixed evidence batch for a completed
// bracket.
func (o *Orchestrator) recordCompletionEvidence(winner types.ParticipantID, revealed []types.ParticipantID) error {
	if err := o.trust.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: winner, Height: o.t.Height}); err != nil {
		return fmt.Errorf("tournament: record GoodBlock: %w", err)
	}
	for _, p := range revealed {
		if err := o.trust.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceHonestParticipation, Participant: p, Height: o.t.Height}); err != nil {
			return fmt.Errorf("tournament: record HonestParticipation: %w", err)
		}
	}
	return nil
}
