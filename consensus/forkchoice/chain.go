// Package forkchoice maintains the header DAG, selects the active tip by
// cumulative work, and runs the two-phase (prevote/precommit) finality
// gadget over it: short reader-writer critical sections over small maps,
// one entry updated per call.
package forkchoice

import (
	"bytes"
	"fmt"
	"sync"

	coreerrors "tourneychain/core/errors"
	"tourneychain/core/types"
)

// Chain is the header DAG: every header ever inserted, indexed by hash,
// plus the current tip set (hashes with no known child).
type Chain struct {
	mu sync.RWMutex

	genesis [32]byte
	headers map[[32]byte]*types.BlockHeader
	work    map[[32]byte]uint64 // cumulative work from genesis to this header, inclusive
	tips    map[[32]byte]bool
}

// NewChain seeds the DAG with a genesis header, which is always a tip and
// always its own ancestor.
func NewChain(genesis *types.BlockHeader) (*Chain, error) {
	hash, err := genesis.Hash()
	if err != nil {
		return nil, fmt.Errorf("forkchoice: hash genesis: %w", err)
	}
	c := &Chain{
		genesis: hash,
		headers: map[[32]byte]*types.BlockHeader{hash: genesis},
		work:    map[[32]byte]uint64{hash: genesis.Work},
		tips:    map[[32]byte]bool{hash: true},
	}
	return c, nil
}

// InsertHeader adds a new header to the DAG. The parent must already be
// known. Re-inserting a known header is reported as ErrAlreadyKnown.
// Inserting updates the tip set: the parent is no longer a tip once it has
// a known child.
func (c *Chain) InsertHeader(h *types.BlockHeader) ([32]byte, error) {
	hash, err := h.Hash()
	if err != nil {
		return [32]byte{}, fmt.Errorf("forkchoice: hash header: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, known := c.headers[hash]; known {
		return hash, coreerrors.ErrAlreadyKnown
	}
	parentWork, known := c.work[h.PrevHash]
	if !known {
		return [32]byte{}, fmt.Errorf("%w: %x", coreerrors.ErrUnknownParent, h.PrevHash)
	}

	c.headers[hash] = h
	c.work[hash] = parentWork + h.Work
	delete(c.tips, h.PrevHash)
	c.tips[hash] = true
	return hash, nil
}

// Header returns a known header by hash.
func (c *Chain) Header(hash [32]byte) (*types.BlockHeader, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.headers[hash]
	return h, ok
}

// CumulativeWork returns the total work from genesis to hash, inclusive.
func (c *Chain) CumulativeWork(hash [32]byte) (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	w, ok := c.work[hash]
	return w, ok
}

// Tips returns a snapshot of the current tip set.
func (c *Chain) Tips() [][32]byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([][32]byte, 0, len(c.tips))
	for h := range c.tips {
		out = append(out, h)
	}
	return out
}

// IsDescendant reports whether candidate is ancestor itself or a descendant of
// ancestor by walking PrevHash links back to genesis.
func (c *Chain) IsDescendant(candidate, ancestor [32]byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cur := candidate
	for {
		if cur == ancestor {
			return true
		}
		if cur == c.genesis {
			return cur == ancestor
		}
		h, ok := c.headers[cur]
		if !ok {
			return false
		}
		cur = h.PrevHash
	}
}

// byteLess implements the byte-string tie-break used both by fork choice
// and nowhere else, kept here since it is purely a Chain-internal detail.
func byteLess(a, b [32]byte) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
