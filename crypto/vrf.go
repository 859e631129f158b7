package crypto

import (
	"fmt"

	coreerrors "tourneychain/core/errors"
)

// VRF and VRFVerify implement "one unique output per (secret, message)"
// over the deterministic secp256k1 signature primitive: the proof is a
// deterministic signature over message, and the output is its hash.
// Because the underlying ECDSA signer is deterministic (RFC6979-style),
// the same (secret, message) pair always yields the same proof and
// therefore the same output, and nobody without the secret key can forge a
// matching proof. This is not a production verifiable-random-function
// construction.
func VRF(key *PrivateKey, message []byte) (output [32]byte, proof []byte, err error) {
	sig, err := Sign(key, message)
	if err != nil {
		return [32]byte{}, nil, fmt.Errorf("crypto: vrf: %w", err)
	}
	return Hash(sig), sig, nil
}

// VRFVerify checks a VRF output/proof pair against the claimed public key
// and message.
func VRFVerify(pub *PublicKey, message []byte, output [32]byte, proof []byte) error {
	if !Verify(pub, message, proof) {
		return coreerrors.ErrVRFInvalid
	}
	if Hash(proof) != output {
		return coreerrors.ErrVRFInvalid
	}
	return nil
}

// CombineVRFOutputs derives the tournament seed from the set of VRF
// outputs supplied by the round's signers:
// Hash("TOURNAMENT_SEED" || concat(outputs)).
func CombineVRFOutputs(outputs [][32]byte) [32]byte {
	parts := make([][]byte, 0, len(outputs)+1)
	parts = append(parts, []byte("TOURNAMENT_SEED"))
	for _, o := range outputs {
		cp := o
		parts = append(parts, cp[:])
	}
	return HashConcat(parts...)
}
