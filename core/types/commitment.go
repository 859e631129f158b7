package types

// ParticipantID identifies a tournament participant. It carries no
// human-readable form; display formatting, if any, belongs to a
// collaborator outside the specified core.
type ParticipantID [20]byte

// Commitment binds a participant to a reveal without disclosing identity:
// only a digest and an anonymous (ring) signature blob travel at commit
// time.
type Commitment struct {
	Digest    [32]byte
	RingSig   []byte
	LinkTag   [32]byte
	Height    uint64
}

// Reveal opens a prior commitment.
type Reveal struct {
	Glider      Glider
	Nonce       [16]byte
	Participant ParticipantID
}
