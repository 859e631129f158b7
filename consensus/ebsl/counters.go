package ebsl

import "tourneychain/core/types"

// Counters is the per-participant (r, s) state plus a bounded ring of
// recent events. r and s monotonically grow on insertion and shrink under
// decay; they are never negative.
type Counters struct {
	R       float64
	S       float64
	History []types.EvidenceEvent
}

// Clone returns a deep copy safe for concurrent use after this call
// returns.
func (c *Counters) Clone() *Counters {
	if c == nil {
		return &Counters{}
	}
	out := &Counters{R: c.R, S: c.S}
	if len(c.History) > 0 {
		out.History = append([]types.EvidenceEvent(nil), c.History...)
	}
	return out
}

// Opinion is the subjective-logic triple (belief, disbelief, uncertainty)
// derived from (r, s, k). b + d + u == 1.
type Opinion struct {
	Belief      float64
	Disbelief   float64
	Uncertainty float64
}

// apply records one evidence event, bumping r or s by its fixed weight and
// appending to the bounded history ring.
func (c *Counters) apply(evt types.EvidenceEvent, historyCap int) {
	if evt.Kind.Positive() {
		c.R += evt.Kind.Weight()
	} else {
		c.S += evt.Kind.Weight()
	}
	c.History = append(c.History, evt)
	if historyCap > 0 && len(c.History) > historyCap {
		c.History = c.History[len(c.History)-historyCap:]
	}
}

// decay multiplicatively attenuates r and s for the given number of elapsed
// epochs. An all-zero counter stays all-zero.
func (c *Counters) decay(params Parameters, epochs uint64) {
	if epochs == 0 {
		return
	}
	for i := uint64(0); i < epochs; i++ {
		c.R *= params.DecayPos
		c.S *= params.DecayNeg
	}
}

// opinion computes the subjective-logic triple for the counters.
func (c *Counters) opinion(params Parameters) Opinion {
	denom := c.R + c.S + params.K
	if denom <= 0 {
		return Opinion{Uncertainty: 1}
	}
	return Opinion{
		Belief:      c.R / denom,
		Disbelief:   c.S / denom,
		Uncertainty: params.K / denom,
	}
}

// trust computes the expected trust score E = b + alpha*u, clamped to
// [0, 1].
func (c *Counters) trust(params Parameters) float64 {
	op := c.opinion(params)
	e := op.Belief + params.Alpha*op.Uncertainty
	if e < 0 {
		return 0
	}
	if e > 1 {
		return 1
	}
	return e
}
