package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tourneychain/core/types"
)

func TestRecordAndListByParticipant(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	var p types.ParticipantID
	p[0] = 0xAB

	ctx := context.Background()
	require.NoError(t, s.Record(ctx, types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: p, Height: 1}))
	require.NoError(t, s.Record(ctx, types.EvidenceEvent{Kind: types.EvidenceMissedCommitment, Participant: p, Height: 2}))

	records, err := s.ListByParticipant(ctx, p, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "MissedCommitment", records[0].Kind)
	require.Equal(t, "GoodBlock", records[1].Kind)
}

func TestListByHeightFiltersAcrossParticipants(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	var a, b types.ParticipantID
	a[0], b[0] = 0x01, 0x02

	ctx := context.Background()
	require.NoError(t, s.Record(ctx, types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: a, Height: 5}))
	require.NoError(t, s.Record(ctx, types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: b, Height: 5}))
	require.NoError(t, s.Record(ctx, types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: b, Height: 6}))

	records, err := s.ListByHeight(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestListByParticipantRespectsLimit(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	var p types.ParticipantID
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, types.EvidenceEvent{Kind: types.EvidenceGoodBlock, Participant: p, Height: uint64(i)}))
	}

	records, err := s.ListByParticipant(ctx, p, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
}
