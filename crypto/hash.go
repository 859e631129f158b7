package crypto

import "lukechampine.com/blake3"

// Hash is the collision-resistant, deterministic digest primitive consumed
// by every layer of the core: header hashing, evidence canonicalization,
// per-match entropy derivation, and VRF-seed combination.
func Hash(data []byte) [32]byte {
	return blake3.Sum256(data)
}

// HashConcat hashes the concatenation of the given byte slices without an
// intermediate allocation-heavy join.
func HashConcat(parts ...[]byte) [32]byte {
	h := blake3.New(32, nil)
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
