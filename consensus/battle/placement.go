package battle

import (
	"fmt"

	coreerrors "tourneychain/core/errors"
	"tourneychain/core/types"
)

// placementA returns the fixed top-left corner used for glider A:
// (N/5, N/5).
func placementA(n int) types.Position {
	return types.Position{Row: n / 5, Col: n / 5}
}

// placementB returns the fixed top-left corner used for glider B, computed
// from B's bounding box so that its bottom-right edge lands at
// (4N/5, 4N/5): (4N/5 - width_B, 4N/5 - height_B).
func placementB(n int, widthB, heightB int) types.Position {
	return types.Position{Row: 4*n/5 - heightB, Col: 4*n/5 - widthB}
}

// place writes a glider's live cells onto the board at the given top-left
// corner, tagging them with side. It returns ErrInvalidPlacement if any
// target cell is already alive (overlap) or the corner puts any pattern
// cell outside [0, size) on either axis; placement does not wrap.
func (b *board) place(g types.Glider, corner types.Position, side types.SideTag) error {
	offsets, err := g.Pattern.LiveOffsets()
	if err != nil {
		return fmt.Errorf("battle: %w", err)
	}
	for _, off := range offsets {
		row, col := corner.Row+off.Row, corner.Col+off.Col
		if row < 0 || col < 0 || row >= b.size || col >= b.size {
			return fmt.Errorf("%w: pattern cell (%d,%d) out of bounds", coreerrors.ErrInvalidPlacement, row, col)
		}
		if b.get(row, col).Alive {
			return fmt.Errorf("%w: overlap at (%d,%d)", coreerrors.ErrInvalidPlacement, row, col)
		}
	}
	for _, off := range offsets {
		row, col := corner.Row+off.Row, corner.Col+off.Col
		b.set(row, col, types.GridCell{Alive: true, Energy: g.Energy}, side)
	}
	return nil
}
