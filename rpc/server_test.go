package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"tourneychain/consensus/ebsl"
	"tourneychain/consensus/engine"
	"tourneychain/consensus/forkchoice"
	"tourneychain/consensus/tournament"
	"tourneychain/core/types"
	"tourneychain/crypto"
	"tourneychain/storage"
)

func newTestServer(t *testing.T, governanceSecret []byte) (*Server, types.ParticipantID) {
	t.Helper()
	sk, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	participant := sk.PubKey().ParticipantID()

	keys := engine.NewKeyStore()
	keys.Register(sk.PubKey())

	trust := ebsl.NewEngine(ebsl.NewStore(storage.NewMemDB()))

	genesis := &types.BlockHeader{Height: 0}
	var validator types.ValidatorID
	copy(validator[:], participant[:])
	d, err := engine.New(genesis, keys, trust, engine.Config{
		TournamentParams: tournament.Params{StepBudget: 10, GridSize: 32},
		Stakes:           forkchoice.StakeTable{validator: 100},
		Clock:            engine.RealClock{},
	}, nil, nil)
	require.NoError(t, err)

	return NewServer(context.Background(), d, trust, 0, governanceSecret), participant
}

func doRPC(t *testing.T, s *Server, method string, params interface{}, headers map[string]string) RPCResponse {
	t.Helper()
	rawParams, err := json.Marshal(params)
	require.NoError(t, err)
	body, err := json.Marshal(RPCRequest{JSONRPC: jsonRPCVersion, Method: method, Params: rawParams, ID: 1})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(string(body)))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var resp RPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCurrentTipAndTrustRoundTrip(t *testing.T) {
	s, participant := newTestServer(t, nil)

	resp := doRPC(t, s, "current_tip", map[string]string{}, nil)
	require.Nil(t, resp.Error)

	resp = doRPC(t, s, "trust", map[string]string{"participant": hex.EncodeToString(participant[:])}, nil)
	require.Nil(t, resp.Error)
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	s, _ := newTestServer(t, nil)
	resp := doRPC(t, s, "not_a_method", map[string]string{}, nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestGovernanceReinstateRequiresToken(t *testing.T) {
	s, participant := newTestServer(t, []byte("test-secret"))

	resp := doRPC(t, s, "governance_reinstate", map[string]string{"participant": hex.EncodeToString(participant[:])}, nil)
	require.NotNil(t, resp.Error)

	badToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, governanceClaims{Role: "not-governance"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	resp = doRPC(t, s, "governance_reinstate", map[string]string{"participant": hex.EncodeToString(participant[:])},
		map[string]string{"Authorization": "Bearer " + badToken})
	require.NotNil(t, resp.Error)

	goodToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, governanceClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "operator-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "governance",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	resp = doRPC(t, s, "governance_reinstate", map[string]string{"participant": hex.EncodeToString(participant[:])},
		map[string]string{"Authorization": "Bearer " + goodToken})
	require.Nil(t, resp.Error)
}

func TestGovernanceReinstateDisabledWithoutSecret(t *testing.T) {
	s, participant := newTestServer(t, nil)
	resp := doRPC(t, s, "governance_reinstate", map[string]string{"participant": hex.EncodeToString(participant[:])}, nil)
	require.NotNil(t, resp.Error)
}

func TestRunTournamentAutoAdvancesPhases(t *testing.T) {
	s, participant := newTestServer(t, nil)
	other := types.ParticipantID{0x01}

	resp := doRPC(t, s, "run_tournament", runTournamentParams{
		Height:   1,
		Eligible: []string{hex.EncodeToString(participant[:]), hex.EncodeToString(other[:])},
		Seed:     hex.EncodeToString(make([]byte, 32)),
	}, nil)
	require.Nil(t, resp.Error)

	require.Eventually(t, func() bool {
		o := s.driver.Current()
		return o != nil && o.Snapshot().Phase >= types.PhaseReveal
	}, time.Second, 5*time.Millisecond)
}
