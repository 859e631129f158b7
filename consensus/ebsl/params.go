package ebsl

// Parameters configures the subjective-logic trust computation and its
// eligibility/kill thresholds. The zero value is never used directly; call
// DefaultParameters.
type Parameters struct {
	K         float64
	Alpha     float64
	TMin      float64
	TKill     float64
	DecayPos  float64
	DecayNeg  float64
	HistoryCap int
}

// DefaultParameters returns the trust engine's canonical default values.
func DefaultParameters() Parameters {
	return Parameters{
		K:          2,
		Alpha:      0.4,
		TMin:       0.75,
		TKill:      0.20,
		DecayPos:   0.99,
		DecayNeg:   0.999,
		HistoryCap: 1000,
	}
}
