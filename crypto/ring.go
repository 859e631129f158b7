package crypto

import (
	"fmt"
)

// RingSignature is an anonymous-signature blob: a conventional signature by
// the actual signer, verifiable against any member of the ring without
// revealing which member produced it to a caller that only wants the
// boolean/linkability-tag surface of RingVerify.
type RingSignature struct {
	Sig []byte
}

// RingSign produces an anonymous signature over message on behalf of
// secretKey, plus a linkability tag. The tag is a deterministic function of
// the signer's key alone, so two signatures by the same signer (on any
// ring, any message) carry the same tag, while two different signers never
// collide — this is what lets a commit round reject duplicate identities
// without learning who committed twice. This is a minimal construction,
// not a production anonymity scheme.
func RingSign(ring []*PublicKey, secretKey *PrivateKey, message []byte) (RingSignature, [32]byte, error) {
	if secretKey == nil {
		return RingSignature{}, [32]byte{}, fmt.Errorf("crypto: ringsign: nil secret key")
	}
	if len(ring) == 0 {
		return RingSignature{}, [32]byte{}, fmt.Errorf("crypto: ringsign: empty ring")
	}
	signerPub := secretKey.PubKey()
	found := false
	for _, member := range ring {
		if member != nil && member.PublicKey.Equal(signerPub.PublicKey) {
			found = true
			break
		}
	}
	if !found {
		return RingSignature{}, [32]byte{}, fmt.Errorf("crypto: ringsign: secret key not a member of ring")
	}
	sig, err := Sign(secretKey, message)
	if err != nil {
		return RingSignature{}, [32]byte{}, fmt.Errorf("crypto: ringsign: %w", err)
	}
	tag := linkabilityTag(secretKey)
	return RingSignature{Sig: sig}, tag, nil
}

// RingVerify reports whether sig is a valid signature by some member of
// ring over message, and if so returns that member's index. The caller
// receives only the boolean and index for bracket bookkeeping; nothing here
// prevents a caller from correlating the index across calls, which is why
// callers (the tournament orchestrator) only ever rely on the linkability
// tag for identity linkage, never on the recovered index.
func RingVerify(ring []*PublicKey, message []byte, sig RingSignature) (ok bool, index int) {
	for i, member := range ring {
		if member == nil {
			continue
		}
		if Verify(member, message, sig.Sig) {
			return true, i
		}
	}
	return false, -1
}

func linkabilityTag(secretKey *PrivateKey) [32]byte {
	return HashConcat([]byte("ring-link"), secretKey.Bytes())
}
