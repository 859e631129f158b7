package events

import (
	"tourneychain/core/types"
)

const (
	TypeEvidenceRecorded  = "ebsl.evidence.recorded"
	TypeTrustSlashApplied = "ebsl.slash.applied"
	TypeTrustKilled       = "ebsl.participant.killed"
	TypeParticipantReinstated = "ebsl.participant.reinstated"
)

// EvidenceRecorded fires whenever an EvidenceEvent is applied to a
// participant's counters.
type EvidenceRecorded struct {
	Participant types.ParticipantID
	Kind        types.EvidenceKind
	Height      uint64
	R           float64
	S           float64
}

func (e EvidenceRecorded) EventType() string { return TypeEvidenceRecorded }

// SlashApplied fires when the slashing table selects a non-trivial action
// for an evidence event.
type SlashApplied struct {
	Participant types.ParticipantID
	Kind        types.EvidenceKind
	Action      string
}

func (e SlashApplied) EventType() string { return TypeTrustSlashApplied }

// ParticipantKilled fires the first time a participant's trust score drops
// below t_kill.
type ParticipantKilled struct {
	Participant types.ParticipantID
	Trust       float64
}

func (e ParticipantKilled) EventType() string { return TypeTrustKilled }

// ParticipantReinstated fires when a governance operator manually resets a
// killed participant's counters, overriding the kill predicate.
type ParticipantReinstated struct {
	Participant types.ParticipantID
	Operator    string
}

func (e ParticipantReinstated) EventType() string { return TypeParticipantReinstated }
