package ebsl

import "tourneychain/core/types"

// SlashAction names the disciplinary action a Rule applies to a
// participant's stake and standing, generalised from a penalty rule action
// set to the evidence kinds tournament consensus defines.
type SlashAction int

const (
	// ActionNone applies no slash or ban; the event affects trust only
	// through the (r, s) counters already bumped by Engine.RecordEvidence.
	ActionNone SlashAction = iota
	// ActionTrustOnly is identical to ActionNone and exists so rules can
	// state their intent explicitly in the table below.
	ActionTrustOnly
	// ActionBanEpochs removes eligibility for a fixed number of epochs
	// without touching stake.
	ActionBanEpochs
	// ActionSlashPercent burns a percentage of stake (0-100).
	ActionSlashPercent
	// ActionSlashFull burns all stake and bans permanently.
	ActionSlashFull
)

// Rule is one row of the slashing table: the action to take for an
// evidence kind, and whether the outcome depends on the participant's
// current kill status (trust < TKill).
type Rule struct {
	Action       SlashAction
	PercentAlive int // percent slashed when not killed
	PercentKilled int // percent slashed when killed
	BanEpochsAlive  uint64
	BanEpochsKilled uint64
}

// PermanentBan is the BanEpochs value an ActionSlashFull resolution carries:
// a ban that never expires.
const PermanentBan = ^uint64(0)

// Catalog is the exhaustive evidence-kind -> Rule slashing table. Every
// EvidenceKind must have an entry; Engine.RecordEvidence returns an error
// for a kind with no entry, so a future evidence kind cannot silently skip
// discipline.
var Catalog = map[types.EvidenceKind]Rule{
	types.EvidenceGoodBlock:           {Action: ActionNone},
	types.EvidenceHonestParticipation: {Action: ActionNone},
	types.EvidenceMissedCommitment:    {Action: ActionNone},

	types.EvidenceMissedReveal: {
		Action:          ActionBanEpochs,
		BanEpochsAlive:  0,
		BanEpochsKilled: 5,
	},
	types.EvidenceInvalidBlock: {
		Action:          ActionSlashPercent,
		PercentAlive:    15,
		PercentKilled:   100,
		BanEpochsKilled: 10,
	},
	types.EvidenceInvalidTournament: {
		Action:        ActionSlashPercent,
		PercentAlive:  25,
		PercentKilled: 50,
	},
	types.EvidenceProofFailure: {
		Action:        ActionSlashPercent,
		PercentAlive:  75,
		PercentKilled: 100,
	},
	types.EvidenceEquivocation: {
		Action: ActionSlashFull,
	},
}

// Resolve returns the Rule for kind, and whether the kind has an entry in
// the Catalog at all.
func Resolve(kind types.EvidenceKind) (Rule, bool) {
	r, ok := Catalog[kind]
	return r, ok
}

// Resolution is the concrete, already-branched-on-killed outcome of
// applying a Rule, ready for a Slasher to consume.
type Resolution struct {
	Action     SlashAction
	Percent    int
	BanEpochs  uint64
}

// Apply branches a Rule on the participant's current killed status and
// returns the concrete action to take.
func (r Rule) Apply(killed bool) Resolution {
	switch r.Action {
	case ActionSlashFull:
		return Resolution{Action: ActionSlashFull, Percent: 100, BanEpochs: PermanentBan}
	case ActionSlashPercent:
		if killed {
			return Resolution{Action: ActionSlashPercent, Percent: r.PercentKilled, BanEpochs: r.BanEpochsKilled}
		}
		return Resolution{Action: ActionSlashPercent, Percent: r.PercentAlive, BanEpochs: r.BanEpochsAlive}
	case ActionBanEpochs:
		if killed {
			return Resolution{Action: ActionBanEpochs, BanEpochs: r.BanEpochsKilled}
		}
		return Resolution{Action: ActionBanEpochs, BanEpochs: r.BanEpochsAlive}
	default:
		return Resolution{Action: ActionNone}
	}
}
