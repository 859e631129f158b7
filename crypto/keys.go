package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"

	"github.com/ethereum/go-ethereum/crypto"

	"tourneychain/core/types"
)

// PrivateKey wraps a secp256k1 signing key used for validator identity.
type PrivateKey struct {
	*ecdsa.PrivateKey
}

// PublicKey wraps the corresponding verification key.
type PublicKey struct {
	*ecdsa.PublicKey
}

// GeneratePrivateKey creates a fresh random key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the raw private scalar.
func (k *PrivateKey) Bytes() []byte {
	return crypto.FromECDSA(k.PrivateKey)
}

// PubKey derives the public key.
func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{&k.PrivateKey.PublicKey}
}

// Bytes returns the uncompressed public key encoding.
func (k *PublicKey) Bytes() []byte {
	return crypto.FromECDSAPub(k.PublicKey)
}

// ParticipantID derives the 20-byte participant/validator identity from the
// public key via the standard Ethereum address derivation.
func (k *PublicKey) ParticipantID() types.ParticipantID {
	var id types.ParticipantID
	copy(id[:], crypto.PubkeyToAddress(*k.PublicKey).Bytes())
	return id
}

// PrivateKeyFromBytes reconstructs a key from its raw scalar bytes.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// PublicKeyFromBytes reconstructs a public key from its uncompressed
// encoding.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	key, err := crypto.UnmarshalPubkey(b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{key}, nil
}
