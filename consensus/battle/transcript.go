package battle

import (
	"encoding/binary"

	"tourneychain/crypto"
)

// transcript accumulates a hash chain over each generation's side-tag
// grid, sufficient for a third party to replay and confirm a battle's
// outcome without re-deriving the original gliders.
type transcript struct {
	enabled bool
	chain   [32]byte
	started bool
}

func newTranscript(enabled bool) *transcript {
	return &transcript{enabled: enabled}
}

// record folds one generation's side-tag grid into the chain:
// chain' = H(chain || step || tags).
func (t *transcript) record(step int, tags []byte) {
	if !t.enabled {
		return
	}
	var stepBuf [8]byte
	binary.BigEndian.PutUint64(stepBuf[:], uint64(step))
	if !t.started {
		t.chain = crypto.HashConcat(stepBuf[:], tags)
		t.started = true
		return
	}
	t.chain = crypto.HashConcat(t.chain[:], stepBuf[:], tags)
}

func (t *transcript) digest() ([32]byte, bool) {
	if !t.enabled {
		return [32]byte{}, false
	}
	return t.chain, true
}
