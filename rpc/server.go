package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"tourneychain/consensus/ebsl"
	"tourneychain/consensus/engine"
	"tourneychain/core/types"
)

// Server serves tournament consensus operations over JSON-RPC at /rpc, plus
// /healthz alongside it.
type Server struct {
	driver           *engine.Driver
	trust            *ebsl.Engine
	limiter          *rate.Limiter
	governanceSecret []byte
	router           chi.Router

	// schedulerCtx bounds the phase-timeout goroutines run_tournament
	// launches; cancelling it (node shutdown) stops every in-flight
	// scheduler.
	schedulerCtx context.Context
}

// NewServer wires routes against driver and trust. burstsPerSecond bounds
// the rate limit applied to the submit_* endpoints. governanceSecret
// signs/verifies the bearer token required by governance_reinstate; an
// empty secret disables that endpoint entirely. ctx bounds the lifetime of
// any background phase scheduler run_tournament starts; pass
// context.Background() if the caller has no natural shutdown signal.
func NewServer(ctx context.Context, driver *engine.Driver, trust *ebsl.Engine, burstsPerSecond int, governanceSecret []byte) *Server {
	if burstsPerSecond <= 0 {
		burstsPerSecond = 50
	}
	s := &Server{
		driver:           driver,
		trust:            trust,
		limiter:          rate.NewLimiter(rate.Limit(burstsPerSecond), burstsPerSecond*2),
		governanceSecret: governanceSecret,
		schedulerCtx:     ctx,
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Post("/rpc", s.handleRPC)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON", nil)
		return
	}

	if isThrottledMethod(req.Method) && !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, req.ID, codeInternal, "rate limit exceeded", nil)
		return
	}

	var operator string
	if req.Method == "governance_reinstate" {
		if len(s.governanceSecret) == 0 {
			writeError(w, http.StatusForbidden, req.ID, codeInvalidRequest, "governance endpoint disabled", nil)
			return
		}
		op, err := verifyGovernanceToken(r.Header.Get("Authorization"), s.governanceSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, req.ID, codeInvalidRequest, err.Error(), nil)
			return
		}
		operator = op
	}

	handler, ok := s.methods()[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "unknown method", req.Method)
		return
	}

	if req.Method == "governance_reinstate" {
		result, err := s.governanceReinstate(req.Params, operator)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
		writeResult(w, req.ID, result)
		return
	}

	result, err := handler(req.Params)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, result)
}

func isThrottledMethod(method string) bool {
	switch method {
	case "submit_commitment", "submit_reveal", "submit_vote":
		return true
	default:
		return false
	}
}

type handlerFunc func(params json.RawMessage) (interface{}, error)

func (s *Server) methods() map[string]handlerFunc {
	return map[string]handlerFunc{
		"submit_commitment": s.submitCommitment,
		"submit_reveal":     s.submitReveal,
		"submit_vote":       s.submitVote,
		"insert_header":     s.insertHeader,
		"current_tip":       s.currentTip,
		"finality_status":   s.finalityStatus,
		"trust":             s.getTrust,
		"is_eligible":       s.isEligible,
		"run_tournament":    s.runTournament,
		"governance_reinstate": func(params json.RawMessage) (interface{}, error) {
			return s.governanceReinstate(params, "")
		},
	}
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj})
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func decodeParticipant(hexStr string) (types.ParticipantID, error) {
	var p types.ParticipantID
	b, err := hex.DecodeString(hexStr)
	if err != nil || len(b) != len(p) {
		return p, errInvalidParticipant
	}
	copy(p[:], b)
	return p, nil
}

func decodeHash(hexStr string) ([32]byte, error) {
	var h [32]byte
	b, err := hex.DecodeString(hexStr)
	if err != nil || len(b) != len(h) {
		return h, errInvalidHash
	}
	copy(h[:], b)
	return h, nil
}

var (
	errInvalidParticipant = newRPCDecodeError("invalid participant id")
	errInvalidHash        = newRPCDecodeError("invalid 32-byte hash")
)

type rpcDecodeError string

func (e rpcDecodeError) Error() string { return string(e) }

func newRPCDecodeError(msg string) error { return rpcDecodeError(msg) }
