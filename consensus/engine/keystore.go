package engine

import (
	"fmt"
	"sync"

	"tourneychain/core/types"
	"tourneychain/crypto"
)

// KeyStore resolves identities to verification keys. Validator identities
// and participant identities share the same 20-byte address space in this
// design (see DESIGN.md's open-question decision), so one registry backs
// both the tournament.KeyResolver and forkchoice.ValidatorKeyResolver
// contracts.
type KeyStore struct {
	mu   sync.RWMutex
	keys map[types.ParticipantID]*crypto.PublicKey
}

// NewKeyStore builds an empty registry.
func NewKeyStore() *KeyStore {
	return &KeyStore{keys: make(map[types.ParticipantID]*crypto.PublicKey)}
}

// Register associates a public key with its derived participant identity.
func (s *KeyStore) Register(pub *crypto.PublicKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[pub.ParticipantID()] = pub
}

// PublicKey implements tournament.KeyResolver.
func (s *KeyStore) PublicKey(p types.ParticipantID) (*crypto.PublicKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pub, ok := s.keys[p]
	if !ok {
		return nil, fmt.Errorf("engine: unknown participant %x", p)
	}
	return pub, nil
}

// ValidatorPublicKey implements forkchoice.ValidatorKeyResolver.
func (s *KeyStore) ValidatorPublicKey(v types.ValidatorID) (*crypto.PublicKey, error) {
	var p types.ParticipantID
	copy(p[:], v[:])
	return s.PublicKey(p)
}

// validatorResolver adapts KeyStore to forkchoice.ValidatorKeyResolver's
// exact method name.
type validatorResolver struct{ *KeyStore }

// PublicKey implements forkchoice.ValidatorKeyResolver.
func (r validatorResolver) PublicKey(v types.ValidatorID) (*crypto.PublicKey, error) {
	return r.ValidatorPublicKey(v)
}

// AsValidatorResolver returns a view of the store satisfying
// forkchoice.ValidatorKeyResolver.
func (s *KeyStore) AsValidatorResolver() validatorResolver {
	return validatorResolver{s}
}
