package ebsl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"tourneychain/core/events"
	"tourneychain/core/types"
	"tourneychain/storage"
)

func testParticipant(b byte) types.ParticipantID {
	var p types.ParticipantID
	p[19] = b
	return p
}

func TestColdStartIsIneligible(t *testing.T) {
	// S3: a participant with no recorded evidence has r=s=0, u=1, trust =
	// alpha*1 = 0.4, which is below TMin (0.75) — ineligible by default.
	eng := NewEngine(NewStore(storage.NewMemDB()))
	p := testParticipant(1)

	trust, err := eng.Trust(p)
	require.NoError(t, err)
	require.InDelta(t, 0.4, trust, 1e-9)

	eligible, err := eng.IsEligible(p)
	require.NoError(t, err)
	require.False(t, eligible)

	killed, err := eng.IsKilled(p)
	require.NoError(t, err)
	require.False(t, killed)
}

func TestOpinionSumsToOne(t *testing.T) {
	eng := NewEngine(NewStore(storage.NewMemDB()))
	p := testParticipant(2)

	for i := 0; i < 5; i++ {
		require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: p, Height: uint64(i)}))
	}
	require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceMissedCommitment, Participant: p, Height: 10}))

	op, err := eng.Opinion(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, op.Belief, 0.0)
	require.GreaterOrEqual(t, op.Disbelief, 0.0)
	require.GreaterOrEqual(t, op.Uncertainty, 0.0)
	require.InDelta(t, 1.0, op.Belief+op.Disbelief+op.Uncertainty, 1e-9)
}

func TestRepeatedGoodBlocksBecomeEligible(t *testing.T) {
	eng := NewEngine(NewStore(storage.NewMemDB()))
	p := testParticipant(3)

	for i := 0; i < 50; i++ {
		require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: p, Height: uint64(i)}))
	}

	trust, err := eng.Trust(p)
	require.NoError(t, err)
	require.Greater(t, trust, 0.75)

	eligible, err := eng.IsEligible(p)
	require.NoError(t, err)
	require.True(t, eligible)
}

func TestEquivocationKillsAndSlashesFully(t *testing.T) {
	slasher := &recordingSlasher{}
	eng := NewEngine(NewStore(storage.NewMemDB()), WithSlasher(slasher))
	p := testParticipant(4)

	// A couple of honest blocks first, so the kill is visibly a reversal —
	// but not so many that the single equivocation's weight can't overcome
	// the accumulated belief.
	for i := 0; i < 2; i++ {
		require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: p, Height: uint64(i)}))
	}
	require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceEquivocation, Participant: p, Height: 100}))

	trust, err := eng.Trust(p)
	require.NoError(t, err)
	require.Less(t, trust, DefaultParameters().TKill)

	require.Len(t, slasher.slashes, 1)
	require.Equal(t, 100, slasher.slashes[0].percent)
}

func TestDecayAsymmetry(t *testing.T) {
	// S4: positive and negative evidence decay at different rates
	// (0.99 vs 0.999), so after many epochs a participant who accumulated
	// both r and s sees their ratio shift over time even with no new
	// evidence.
	eng := NewEngine(NewStore(storage.NewMemDB()))
	p := testParticipant(5)

	require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: p, Height: 0}))
	require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceInvalidBlock, Participant: p, Height: 1}))

	before, err := eng.Opinion(p)
	require.NoError(t, err)

	require.NoError(t, eng.Decay([]types.ParticipantID{p}, 100))

	after, err := eng.Opinion(p)
	require.NoError(t, err)

	// r decays faster than s (0.99 vs 0.999), so belief's share of the
	// opinion shrinks while disbelief's share grows even though both r and
	// s are individually decreasing.
	require.Less(t, after.Belief, before.Belief)
	require.Greater(t, after.Disbelief, before.Disbelief)
	require.Greater(t, after.Disbelief/after.Belief, before.Disbelief/before.Belief)
}

func TestDecayZeroCounterStaysZero(t *testing.T) {
	eng := NewEngine(NewStore(storage.NewMemDB()))
	p := testParticipant(6)
	require.NoError(t, eng.Decay([]types.ParticipantID{p}, 1000))
	trust, err := eng.Trust(p)
	require.NoError(t, err)
	require.InDelta(t, 0.4, trust, 1e-9)
}

func TestCountersNeverNegative(t *testing.T) {
	eng := NewEngine(NewStore(storage.NewMemDB()))
	p := testParticipant(7)
	require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceMissedReveal, Participant: p, Height: 0}))
	require.NoError(t, eng.Decay([]types.ParticipantID{p}, 1_000_000))

	c, err := eng.store.Get(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, c.R, 0.0)
	require.GreaterOrEqual(t, c.S, 0.0)
	require.False(t, math.IsNaN(c.R))
	require.False(t, math.IsNaN(c.S))
}

func TestMissedRevealOnlyBansWhenKilled(t *testing.T) {
	slasher := &recordingSlasher{}
	eng := NewEngine(NewStore(storage.NewMemDB()), WithSlasher(slasher))
	p := testParticipant(8)

	// Not killed yet: MissedReveal should not ban.
	require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceMissedReveal, Participant: p, Height: 0}))
	require.Empty(t, slasher.bans)

	// Drive trust below TKill with repeated ProofFailure, then MissedReveal
	// should ban.
	for i := 0; i < 5; i++ {
		require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceProofFailure, Participant: p, Height: uint64(i) + 1}))
	}
	killed, err := eng.IsKilled(p)
	require.NoError(t, err)
	require.True(t, killed)

	require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceMissedReveal, Participant: p, Height: 100}))
	require.NotEmpty(t, slasher.bans)
	require.Equal(t, uint64(5), slasher.bans[len(slasher.bans)-1].epochs)
}

func TestEligibleSetFiltersByTrust(t *testing.T) {
	eng := NewEngine(NewStore(storage.NewMemDB()))
	honest := testParticipant(9)
	unknown := testParticipant(10)

	for i := 0; i < 50; i++ {
		require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: honest, Height: uint64(i)}))
	}

	set, err := eng.EligibleSet([]types.ParticipantID{honest, unknown})
	require.NoError(t, err)
	require.Equal(t, []types.ParticipantID{honest}, set)
}

func TestEventsEmittedOnEvidenceAndSlash(t *testing.T) {
	capt := &capturingEmitter{}
	eng := NewEngine(NewStore(storage.NewMemDB()), WithEmitter(capt))
	p := testParticipant(11)

	require.NoError(t, eng.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceEquivocation, Participant: p, Height: 0}))

	var sawEvidence, sawSlash, sawKilled bool
	for _, e := range capt.events {
		switch e.(type) {
		case events.EvidenceRecorded:
			sawEvidence = true
		case events.SlashApplied:
			sawSlash = true
		case events.ParticipantKilled:
			sawKilled = true
		}
	}
	require.True(t, sawEvidence)
	require.True(t, sawSlash)
	require.True(t, sawKilled)
}

type recordingSlasher struct {
	slashes []struct {
		participant types.ParticipantID
		percent     int
	}
	bans []struct {
		participant types.ParticipantID
		epochs      uint64
	}
}

func (r *recordingSlasher) Slash(p types.ParticipantID, percent int) error {
	r.slashes = append(r.slashes, struct {
		participant types.ParticipantID
		percent     int
	}{p, percent})
	return nil
}

func (r *recordingSlasher) Ban(p types.ParticipantID, epochs uint64) error {
	r.bans = append(r.bans, struct {
		participant types.ParticipantID
		epochs      uint64
	}{p, epochs})
	return nil
}

type capturingEmitter struct {
	events []events.Event
}

func (c *capturingEmitter) Emit(e events.Event) {
	c.events = append(c.events, e)
}
