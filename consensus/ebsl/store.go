package ebsl

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"tourneychain/core/types"
	"tourneychain/storage"
)

var counterPrefix = []byte("consensus/ebsl/counters/")

// Store persists per-participant Counters in a storage.Database, keyed by
// a namespaced byte prefix.
type Store struct {
	db storage.Database
	mu sync.RWMutex
}

// NewStore wraps a storage.Database as a Counters store.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func counterKey(p types.ParticipantID) []byte {
	key := make([]byte, len(counterPrefix)+len(p))
	copy(key, counterPrefix)
	copy(key[len(counterPrefix):], p[:])
	return key
}

// rlpCounters is the wire-encodable mirror of Counters: RLP has no encoding
// for floating-point values, so R and S are stored as fixed-point integers.
type rlpCounters struct {
	R       uint64 // fixed-point, 1e9 scale, to keep RLP deterministic across platforms
	S       uint64
	History []types.EvidenceEvent
}

const fixedScale = 1e9

func toFixed(v float64) uint64 {
	if v < 0 {
		v = 0
	}
	return uint64(v * fixedScale)
}

func fromFixed(v uint64) float64 {
	return float64(v) / fixedScale
}

// Get loads the counters for a participant, returning a zero-value counter
// (r=s=0) if none has been persisted yet — a brand-new participant starts
// with neutral trust.
func (s *Store) Get(p types.ParticipantID) (*Counters, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("ebsl: store not initialised")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(p)
}

func (s *Store) get(p types.ParticipantID) (*Counters, error) {
	data, err := s.db.Get(counterKey(p))
	if err != nil {
		return &Counters{}, nil
	}
	var wire rlpCounters
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return nil, err
	}
	return &Counters{R: fromFixed(wire.R), S: fromFixed(wire.S), History: wire.History}, nil
}

// Put persists the counters for a participant.
func (s *Store) Put(p types.ParticipantID, c *Counters) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("ebsl: store not initialised")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wire := rlpCounters{R: toFixed(c.R), S: toFixed(c.S), History: c.History}
	encoded, err := rlp.EncodeToBytes(wire)
	if err != nil {
		return err
	}
	return s.db.Put(counterKey(p), encoded)
}
