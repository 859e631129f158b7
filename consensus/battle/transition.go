package battle

import "tourneychain/core/types"

// step evolves the board by exactly one generation, applying the
// energy-extended Conway rule to the read buffer and writing the result
// into the write buffer, then committing it with a single swap — the
// two-phase (read generation g, write generation g+1) barrier the battle
// workers rely on so that a cell's transition never observes a neighbor
// that has already been updated for the next generation.
func (b *board) step() {
	for row := 0; row < b.size; row++ {
		for col := 0; col < b.size; col++ {
			b.transitionCell(row, col)
		}
	}
	b.swap()
}

func (b *board) transitionCell(row, col int) {
	cell := b.get(row, col)
	info := b.neighbors(row, col)
	idx := row*b.size + col

	switch {
	case cell.Alive && (info.count == 2 || info.count == 3):
		energy := cell.Energy
		if energy > 0 {
			energy--
		}
		b.next[idx] = types.GridCell{Alive: true, Energy: energy}
		b.tagNext[idx] = b.tagCur[idx]
	case !cell.Alive && info.count == 3:
		avg := floorAverage(info.energy)
		b.next[idx] = types.GridCell{Alive: true, Energy: avg}
		b.tagNext[idx] = inheritTag(info)
	default:
		b.next[idx] = types.GridCell{}
		b.tagNext[idx] = types.SideNone
	}
}

// floorAverage computes the floor of the arithmetic mean of a set of
// energies, per spec: a newly-born cell's energy is the floor-average of
// its live neighbors' energies.
func floorAverage(energies []uint8) uint8 {
	if len(energies) == 0 {
		return 0
	}
	var sum int
	for _, e := range energies {
		sum += int(e)
	}
	return uint8(sum / len(energies))
}

// inheritTag resolves the provenance tag for a newly-born cell: majority
// side among its live neighbors, tie broken by higher summed neighbor
// energy on that side, further tie broken in favor of A.
func inheritTag(info neighborInfo) types.SideTag {
	var countA, countB int
	var energyA, energyB int
	for i, tag := range info.tags {
		switch tag {
		case types.SideA:
			countA++
			energyA += int(info.energy[i])
		case types.SideB:
			countB++
			energyB += int(info.energy[i])
		}
	}
	switch {
	case countA > countB:
		return types.SideA
	case countB > countA:
		return types.SideB
	case energyA >= energyB:
		return types.SideA
	default:
		return types.SideB
	}
}
