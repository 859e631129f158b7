package forkchoice

import (
	"encoding/binary"

	"tourneychain/core/types"
	"tourneychain/crypto"
)

// voteKey groups votes by the (height, vote-type, round) triple whose
// stake sum determines a gate.
type voteKey struct {
	height   uint64
	voteType types.VoteType
	round    int
}

// seenKey identifies the single vote a validator is allowed to cast for a
// given (height, vote-type, round); a second, conflicting vote under the
// same key is equivocation.
type seenKey struct {
	validator types.ValidatorID
	voteKey
}

// voteMessage is the canonical byte string a vote's signature covers.
func voteMessage(v types.FinalityVote) []byte {
	return VoteMessage(v)
}

// VoteMessage is the canonical byte string a vote's signature covers,
// exported so callers outside this package (validators signing a vote
// before submission) can reproduce it.
func VoteMessage(v types.FinalityVote) []byte {
	var heightBuf, roundBuf [8]byte
	binary.BigEndian.PutUint64(heightBuf[:], v.Height)
	binary.BigEndian.PutUint64(roundBuf[:], uint64(v.Round))
	return crypto.HashConcat(v.BlockHash[:], heightBuf[:], []byte{byte(v.VoteType)}, roundBuf[:])[:]
}
