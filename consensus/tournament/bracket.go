package tournament

import (
	"bytes"
	"encoding/binary"
	"sort"

	"tourneychain/core/types"
	"tourneychain/crypto"
)

// sortedParticipants orders participants by canonical byte order, the
// fixed input order the VRF-seeded shuffle is applied to so that two
// independent nodes computing the same tournament always start from the
// same sequence.
func sortedParticipants(participants []types.ParticipantID) []types.ParticipantID {
	out := append([]types.ParticipantID(nil), participants...)
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

// seededShuffle applies a Fisher-Yates permutation to participants whose
// pseudo-random stream is derived deterministically from seed: draw i is
// H(seed || "shuffle" || i) reduced modulo the remaining span.
func seededShuffle(participants []types.ParticipantID, seed [32]byte) []types.ParticipantID {
	out := append([]types.ParticipantID(nil), participants...)
	for i := len(out) - 1; i > 0; i-- {
		j := int(drawUint64(seed, uint64(i)) % uint64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func drawUint64(seed [32]byte, counter uint64) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)
	digest := crypto.HashConcat(seed[:], []byte("shuffle"), buf[:])
	return binary.BigEndian.Uint64(digest[:8])
}

// nextPowerOfTwo returns the smallest power of two >= n, n >= 1.
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// matchSeed derives the per-match entropy seed: H("match-seed" ||
// tournament-seed || round || match-index).
func matchSeed(tournamentSeed [32]byte, round, matchIndex int) [32]byte {
	var roundBuf, indexBuf [8]byte
	binary.BigEndian.PutUint64(roundBuf[:], uint64(round))
	binary.BigEndian.PutUint64(indexBuf[:], uint64(matchIndex))
	return crypto.HashConcat([]byte("match-seed"), tournamentSeed[:], roundBuf[:], indexBuf[:])
}

// buildRound0 lays out the first bracket round from the shuffled,
// bye-padded participant order: the first `byes` matches are free wins for
// the top of the bracket, and the remaining participants pair up normally.
func buildRound0(shuffled []types.ParticipantID, tournamentSeed [32]byte) []types.Match {
	n := len(shuffled)
	slots := nextPowerOfTwo(n)
	byes := slots - n
	roundMatches := slots / 2

	matches := make([]types.Match, roundMatches)
	for i := 0; i < byes; i++ {
		p := shuffled[i]
		matches[i] = types.Match{
			Round:       0,
			MatchIndex:  i,
			A:           p,
			HasA:        true,
			Bye:         true,
			Winner:      p,
			Outcome:     types.OutcomeAWins,
			EntropySeed: matchSeed(tournamentSeed, 0, i),
		}
	}
	rest := shuffled[byes:]
	for i := byes; i < roundMatches; i++ {
		pairIdx := (i - byes) * 2
		matches[i] = types.Match{
			Round:       0,
			MatchIndex:  i,
			A:           rest[pairIdx],
			B:           rest[pairIdx+1],
			HasA:        true,
			HasB:        true,
			EntropySeed: matchSeed(tournamentSeed, 0, i),
		}
	}
	return matches
}

// nextRound pairs the winners of consecutive matches from the previous
// round into the next round's matches, ready for execution.
func nextRound(prev []types.Match, round int, tournamentSeed [32]byte) []types.Match {
	roundMatches := len(prev) / 2
	matches := make([]types.Match, roundMatches)
	for i := 0; i < roundMatches; i++ {
		a := prev[2*i]
		b := prev[2*i+1]
		matches[i] = types.Match{
			Round:       round,
			MatchIndex:  i,
			A:           a.Winner,
			B:           b.Winner,
			HasA:        true,
			HasB:        true,
			EntropySeed: matchSeed(tournamentSeed, round, i),
		}
	}
	return matches
}
