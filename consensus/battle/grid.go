// Package battle implements the deterministic cellular-automaton engine
// that adjudicates a single pairwise match between two revealed gliders.
package battle

import (
	"tourneychain/core/types"
)

// board holds the toroidal grid state with a read/write double buffer for
// both the liveness/energy layer and the provenance side-tag layer, the
// same two-phase discipline (read generation g, write generation g+1) the
// orchestrator's concurrency model assumes battle workers use internally.
type board struct {
	size int

	cur  []types.GridCell
	next []types.GridCell

	tagCur  []types.SideTag
	tagNext []types.SideTag
}

func newBoard(size int) *board {
	n := size * size
	return &board{
		size:    size,
		cur:     make([]types.GridCell, n),
		next:    make([]types.GridCell, n),
		tagCur:  make([]types.SideTag, n),
		tagNext: make([]types.SideTag, n),
	}
}

func (b *board) index(row, col int) int {
	row = wrap(row, b.size)
	col = wrap(col, b.size)
	return row*b.size + col
}

// wrap reduces v into [0, size) under toroidal (modular) wraparound,
// handling negative v correctly unlike the plain % operator.
func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}

func (b *board) get(row, col int) types.GridCell {
	return b.cur[b.index(row, col)]
}

func (b *board) tagAt(row, col int) types.SideTag {
	return b.tagCur[b.index(row, col)]
}

func (b *board) set(row, col int, cell types.GridCell, tag types.SideTag) {
	idx := b.index(row, col)
	b.cur[idx] = cell
	b.tagCur[idx] = tag
}

// swap commits the write buffer as the new read buffer for both layers.
func (b *board) swap() {
	b.cur, b.next = b.next, b.cur
	b.tagCur, b.tagNext = b.tagNext, b.tagCur
}

// neighborOffsets is the 8-cell Moore neighborhood used by every rule in
// this engine.
var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// neighborInfo holds the count of live neighbors and, for each, its
// energy and side tag, for use by both the survival rule and the
// provenance-inheritance rule.
type neighborInfo struct {
	count  int
	energy []uint8
	tags   []types.SideTag
}

// tagBytes renders the current side-tag grid as a compact byte slice for
// transcript hashing.
func (b *board) tagBytes() []byte {
	out := make([]byte, len(b.tagCur))
	for i, t := range b.tagCur {
		out[i] = byte(t)
	}
	return out
}

func (b *board) neighbors(row, col int) neighborInfo {
	var info neighborInfo
	for _, off := range neighborOffsets {
		r, c := row+off[0], col+off[1]
		cell := b.get(r, c)
		if cell.Alive {
			info.count++
			info.energy = append(info.energy, cell.Energy)
			info.tags = append(info.tags, b.tagAt(r, c))
		}
	}
	return info
}
