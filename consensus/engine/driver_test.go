package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tourneychain/consensus/ebsl"
	"tourneychain/consensus/forkchoice"
	"tourneychain/consensus/tournament"
	"tourneychain/core/events"
	"tourneychain/core/types"
	"tourneychain/crypto"
	"tourneychain/p2p"
	"tourneychain/storage"
)

type noopSender struct{}

func (noopSender) Send(*p2p.Message) error { return nil }

type capturingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturingEmitter) Emit(e events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *capturingEmitter) has(eventType string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if e.EventType() == eventType {
			return true
		}
	}
	return false
}

func TestDriverRunsFullRoundAndFinalizes(t *testing.T) {
	genesis := &types.BlockHeader{Height: 0}
	keys := NewKeyStore()

	type fixture struct {
		id      types.ParticipantID
		secret  *crypto.PrivateKey
		pattern types.GliderPattern
	}
	patterns := []types.GliderPattern{types.PatternStandard, types.PatternLightweight, types.PatternMiddleweight, types.PatternHeavyweight}
	fixtures := make([]fixture, len(patterns))
	eligible := make([]types.ParticipantID, len(patterns))
	stakes := forkchoice.StakeTable{}
	for i, pattern := range patterns {
		sk, err := crypto.GeneratePrivateKey()
		require.NoError(t, err)
		keys.Register(sk.PubKey())
		fixtures[i] = fixture{id: sk.PubKey().ParticipantID(), secret: sk, pattern: pattern}
		eligible[i] = fixtures[i].id
		var v types.ValidatorID
		copy(v[:], fixtures[i].id[:])
		stakes[v] = 100
	}

	trust := ebsl.NewEngine(ebsl.NewStore(storage.NewMemDB()))
	broadcaster := p2p.NewRetryBroadcaster(noopSender{})
	defer broadcaster.Close()

	d, err := New(genesis, keys, trust, Config{
		TournamentParams: tournament.Params{StepBudget: 50, GridSize: 64},
		Stakes:           stakes,
		Clock:            RealClock{},
	}, nil, broadcaster)
	require.NoError(t, err)

	require.NoError(t, d.StartRound(1, eligible, crypto.Hash([]byte("round-1"))))

	o := d.Current()
	require.NotNil(t, o)

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
		require.NoError(t, o.SubmitCommitment(f.id, types.Commitment{Digest: digest, RingSig: sig.Sig, LinkTag: tag}))
	}
	require.NoError(t, o.AdvanceToReveal())
	for _, f := range fixtures {
		nonce := [16]byte{}
		nonce[0] = f.id[19]
		glider := types.NewGlider(f.pattern, types.Position{})
		require.NoError(t, o.SubmitReveal(types.Reveal{Glider: glider, Nonce: nonce, Participant: f.id}))
	}
	require.NoError(t, o.AdvanceToBattle())

	winner, err := d.RunBattles()
	require.NoError(t, err)
	require.Contains(t, eligible, winner)

	header := &types.BlockHeader{Height: 1, PrevHash: [32]byte{}, Work: 1, Proposer: winner}
	genesisHash, err := genesis.Hash()
	require.NoError(t, err)
	header.PrevHash = genesisHash
	blockHash, err := d.InsertHeader(header)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.RunVoteIngester(ctx)

	for _, f := range fixtures {
		var v types.ValidatorID
		copy(v[:], f.id[:])
		vote := types.FinalityVote{BlockHash: blockHash, Height: 1, VoteType: types.Prevote, Round: 0, Validator: v}
		sig, err := crypto.Sign(f.secret, forkchoice.VoteMessage(vote))
		require.NoError(t, err)
		vote.Signature = sig
		d.SubmitVote(vote)
	}
	for _, f := range fixtures {
		var v types.ValidatorID
		copy(v[:], f.id[:])
		vote := types.FinalityVote{BlockHash: blockHash, Height: 1, VoteType: types.Precommit, Round: 0, Validator: v}
		sig, err := crypto.Sign(f.secret, forkchoice.VoteMessage(vote))
		require.NoError(t, err)
		vote.Signature = sig
		d.SubmitVote(vote)
	}

	require.Eventually(t, func() bool {
		return d.Gadget().Status(blockHash) == types.FinalityFinalized
	}, time.Second, 5*time.Millisecond)

	tip, err := d.CurrentTip()
	require.NoError(t, err)
	require.Equal(t, blockHash, tip)
}

func TestRunPhaseSchedulerForcesWindowsClosedWithoutInput(t *testing.T) {
	genesis := &types.BlockHeader{Height: 0}
	keys := NewKeyStore()

	eligible := make([]types.ParticipantID, 2)
	stakes := forkchoice.StakeTable{}
	for i := range eligible {
		sk, err := crypto.GeneratePrivateKey()
		require.NoError(t, err)
		keys.Register(sk.PubKey())
		eligible[i] = sk.PubKey().ParticipantID()
		var v types.ValidatorID
		copy(v[:], eligible[i][:])
		stakes[v] = 100
	}

	trust := ebsl.NewEngine(ebsl.NewStore(storage.NewMemDB()))
	emitter := &capturingEmitter{}

	d, err := New(genesis, keys, trust, Config{
		TournamentParams: tournament.Params{StepBudget: 10, GridSize: 32},
		Stakes:           stakes,
		Clock:            RealClock{},
		CommitWindow:     10 * time.Millisecond,
		RevealWindow:     10 * time.Millisecond,
	}, emitter, nil)
	require.NoError(t, err)

	require.NoError(t, d.StartRound(1, eligible, crypto.Hash([]byte("round-1"))))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.RunPhaseScheduler(ctx)

	o := d.Current()
	require.Equal(t, types.PhaseBattle, o.Snapshot().Phase)
	require.True(t, emitter.has(events.TypeRoundSchedulerError))

	for _, p := range eligible {
		trustValue, err := trust.Trust(p)
		require.NoError(t, err)
		require.Less(t, trustValue, 0.5)
	}
}
