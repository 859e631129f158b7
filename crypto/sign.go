package crypto

import (
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	coreerrors "tourneychain/core/errors"
)

// Sign produces a non-malleable secp256k1 signature over the 32-byte hash
// of message using ethcrypto.Sign.
func Sign(key *PrivateKey, message []byte) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("crypto: nil signing key")
	}
	digest := Hash(message)
	sig, err := ethcrypto.Sign(digest[:], key.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: sign: %w", err)
	}
	return sig, nil
}

// Verify checks a signature produced by Sign against a public key.
func Verify(pub *PublicKey, message, sig []byte) bool {
	if pub == nil || len(sig) < 64 {
		return false
	}
	digest := Hash(message)
	recovered, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return false
	}
	return recovered.Equal(pub.PublicKey)
}

// VerifyOrError is Verify, surfaced as the External-dependency failure
// sentinel used throughout §7's error taxonomy.
func VerifyOrError(pub *PublicKey, message, sig []byte) error {
	if Verify(pub, message, sig) {
		return nil
	}
	return coreerrors.ErrSignatureInvalid
}
