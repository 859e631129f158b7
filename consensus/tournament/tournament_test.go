package tournament

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tourneychain/consensus/ebsl"
	"tourneychain/core/types"
	"tourneychain/crypto"
	"tourneychain/storage"
)

type mapResolver struct {
	keys map[types.ParticipantID]*crypto.PublicKey
}

func (m mapResolver) PublicKey(p types.ParticipantID) (*crypto.PublicKey, error) {
	return m.keys[p], nil
}

type participantFixture struct {
	id      types.ParticipantID
	secret  *crypto.PrivateKey
	pattern types.GliderPattern
}

func newFixtures(t *testing.T, patterns []types.GliderPattern) []participantFixture {
	t.Helper()
	out := make([]participantFixture, len(patterns))
	for i, pattern := range patterns {
		key, err := crypto.GeneratePrivateKey()
		require.NoError(t, err)
		out[i] = participantFixture{id: key.PubKey().ParticipantID(), secret: key, pattern: pattern}
	}
	return out
}

func runFullTournament(t *testing.T, fixtures []participantFixture, seed [32]byte) (*Orchestrator, types.ParticipantID) {
	t.Helper()

	eligible := make([]types.ParticipantID, len(fixtures))
	keys := map[types.ParticipantID]*crypto.PublicKey{}
	for i, f := range fixtures {
		eligible[i] = f.id
		keys[f.id] = f.secret.PubKey()
	}
	resolver := mapResolver{keys: keys}
	trust := ebsl.NewEngine(ebsl.NewStore(storage.NewMemDB()))

	for _, f := range fixtures {
		for i := 0; i < 10; i++ {
			require.NoError(t, trust.RecordEvidence(types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: f.id, Height: uint64(i)}))
		}
	}

	orch, err := New(1, eligible, seed, Params{StepBudget: 50, GridSize: 64}, resolver, trust)
	require.NoError(t, err)

	ring := make([]*crypto.PublicKey, len(fixtures))
	for i, f := range fixtures {
		ring[i] = f.secret.PubKey()
	}

	for _, f := range fixtures {
		nonce := [16]byte{}
		nonce[0] = f.id[19]
		digest := crypto.HashConcat([]byte{f.pattern.Tag()}, nonce[:])
		sig, tag, err := crypto.RingSign(ring, f.secret, digest[:])
		require.NoError(t, err)
		require.NoError(t, orch.SubmitCommitment(f.id, types.Commitment{Digest: digest, RingSig: sig.Sig, LinkTag: tag}))
	}
	require.NoError(t, orch.AdvanceToReveal())

	for _, f := range fixtures {
		nonce := [16]byte{}
		nonce[0] = f.id[19]
		glider := types.NewGlider(f.pattern, types.Position{})
		require.NoError(t, orch.SubmitReveal(types.Reveal{Glider: glider, Nonce: nonce, Participant: f.id}))
	}
	require.NoError(t, orch.AdvanceToBattle())

	winner, err := orch.RunBracket()
	require.NoError(t, err)
	return orch, winner
}

func TestTournamentFourParticipantsDeterministic(t *testing.T) {
	seed := crypto.Hash([]byte("seed-1"))
	patterns := []types.GliderPattern{
		types.PatternStandard, types.PatternLightweight,
		types.PatternMiddleweight, types.PatternHeavyweight,
	}

	fixtures := newFixtures(t, patterns)

	orch1, winner1 := runFullTournament(t, fixtures, seed)
	snap1 := orch1.Snapshot()
	require.Equal(t, types.PhaseComplete, snap1.Phase)
	require.Len(t, snap1.Matches, 3)

	orch2, winner2 := runFullTournament(t, fixtures, seed)
	snap2 := orch2.Snapshot()

	require.Equal(t, winner1, winner2)
	require.Equal(t, snap1.Matches, snap2.Matches)
}

func TestTournamentRejectsFewerThanTwoEligible(t *testing.T) {
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	trust := ebsl.NewEngine(ebsl.NewStore(storage.NewMemDB()))
	resolver := mapResolver{keys: map[types.ParticipantID]*crypto.PublicKey{}}
	_, err = New(1, []types.ParticipantID{key.PubKey().ParticipantID()}, [32]byte{}, DefaultParams(), resolver, trust)
	require.Error(t, err)
}

func TestSubmitCommitmentRejectsIneligible(t *testing.T) {
	fixtures := newFixtures(t, []types.GliderPattern{types.PatternStandard, types.PatternLightweight})
	eligible := []types.ParticipantID{fixtures[0].id, fixtures[1].id}
	keys := map[types.ParticipantID]*crypto.PublicKey{
		fixtures[0].id: fixtures[0].secret.PubKey(),
		fixtures[1].id: fixtures[1].secret.PubKey(),
	}
	trust := ebsl.NewEngine(ebsl.NewStore(storage.NewMemDB()))
	orch, err := New(1, eligible, [32]byte{}, DefaultParams(), mapResolver{keys: keys}, trust)
	require.NoError(t, err)

	outsider, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	err = orch.SubmitCommitment(outsider.PubKey().ParticipantID(), types.Commitment{})
	require.Error(t, err)
}

func TestAdvanceOutOfOrderFails(t *testing.T) {
	fixtures := newFixtures(t, []types.GliderPattern{types.PatternStandard, types.PatternLightweight})
	eligible := []types.ParticipantID{fixtures[0].id, fixtures[1].id}
	keys := map[types.ParticipantID]*crypto.PublicKey{
		fixtures[0].id: fixtures[0].secret.PubKey(),
		fixtures[1].id: fixtures[1].secret.PubKey(),
	}
	trust := ebsl.NewEngine(ebsl.NewStore(storage.NewMemDB()))
	orch, err := New(1, eligible, [32]byte{}, DefaultParams(), mapResolver{keys: keys}, trust)
	require.NoError(t, err)

	err = orch.AdvanceToBattle()
	require.Error(t, err)
}

func TestMissedCommitmentEvidenceRecorded(t *testing.T) {
	fixtures := newFixtures(t, []types.GliderPattern{types.PatternStandard, types.PatternLightweight})
	eligible := []types.ParticipantID{fixtures[0].id, fixtures[1].id}
	keys := map[types.ParticipantID]*crypto.PublicKey{
		fixtures[0].id: fixtures[0].secret.PubKey(),
		fixtures[1].id: fixtures[1].secret.PubKey(),
	}
	trust := ebsl.NewEngine(ebsl.NewStore(storage.NewMemDB()))
	orch, err := New(1, eligible, [32]byte{}, DefaultParams(), mapResolver{keys: keys}, trust)
	require.NoError(t, err)

	require.NoError(t, orch.AdvanceToReveal())

	for _, f := range fixtures {
		op, err := trust.Opinion(f.id)
		require.NoError(t, err)
		require.Greater(t, op.Disbelief, 0.0)
	}
}
