package forkchoice

import (
	"fmt"
)

// SelectTip returns the chain tip maximizing cumulative work, ties broken
// by the lower hash as a byte string. Chain itself has no notion of
// finality; Gadget.CurrentTip wraps this with the finalized-descendant
// constraint.
func (c *Chain) SelectTip() ([32]byte, error) {
	return c.selectBest(c.Tips())
}

func (c *Chain) selectBest(candidates [][32]byte) ([32]byte, error) {
	if len(candidates) == 0 {
		return [32]byte{}, fmt.Errorf("forkchoice: no tips")
	}
	best := candidates[0]
	bestWork, _ := c.CumulativeWork(best)
	for _, t := range candidates[1:] {
		w, _ := c.CumulativeWork(t)
		switch {
		case w > bestWork:
			best, bestWork = t, w
		case w == bestWork && byteLess(t, best):
			best = t
		}
	}
	return best, nil
}

// CurrentTip returns the active tip: the known header maximizing
// cumulative work among candidates, where candidates is every tip once no
// block is finalized yet, or only the descendants of the most recently
// finalized block once one exists — a finalized ancestor constrains the
// tip set.
func (g *Gadget) CurrentTip() ([32]byte, error) {
	g.mu.Lock()
	finalized, fhash := g.finalized, g.finalizedHash
	g.mu.Unlock()

	tips := g.chain.Tips()
	if !finalized {
		return g.chain.selectBest(tips)
	}
	descendants := make([][32]byte, 0, len(tips))
	for _, t := range tips {
		if g.chain.IsDescendant(t, fhash) {
			descendants = append(descendants, t)
		}
	}
	return g.chain.selectBest(descendants)
}
