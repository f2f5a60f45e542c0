package core

import "math"

// Iteration counts of the two eccentric anomaly solvers. They are fixed: the
// solvers never test for convergence, so each call costs the same.
const (
	StandardIterations       = 5
	LaguerreConwayIterations = 8

	// laguerreConwayThreshold is the eccentricity at and above which the
	// Laguerre-Conway method is used.
	laguerreConwayThreshold = 0.3
)

// EccentricAnomaly solves Kepler's equation E - e sin E = M for an elliptical
// orbit (0 <= e < 1). M may be any angle; E is returned unreduced.
func EccentricAnomaly(ecc, meanAnomaly float64) float64 {
	if ecc < laguerreConwayThreshold {
		return eccentricAnomalyStandard(ecc, meanAnomaly, StandardIterations)
	}
	return eccentricAnomalyLaguerreConway(ecc, meanAnomaly, LaguerreConwayIterations)
}

// eccentricAnomalyStandard uses successive substitution E <- M + e sin E,
// starting from E = M.
func eccentricAnomalyStandard(ecc, meanAnomaly float64, iterations int) float64 {
	E := meanAnomaly
	for i := 0; i < iterations; i++ {
		E = meanAnomaly + ecc*math.Sin(E)
	}
	return E
}

// eccentricAnomalyLaguerreConway applies the Laguerre-Conway iteration with
// n = 5, which converges for every e < 1.
func eccentricAnomalyLaguerreConway(ecc, meanAnomaly float64, iterations int) float64 {
	sign := 1.0
	if math.Sin(meanAnomaly) < 0 {
		sign = -1.0
	}
	E := meanAnomaly + 0.85*ecc*sign

	for i := 0; i < iterations; i++ {
		s := ecc * math.Sin(E)
		c := ecc * math.Cos(E)
		z := E - s - meanAnomaly
		z1 := 1 - c
		z2 := s
		signZ1 := 1.0
		if z1 < 0 {
			signZ1 = -1.0
		}
		E += -5 * z / (z1 + signZ1*math.Sqrt(math.Abs(16*z1*z1-20*z*z2)))
	}
	return E
}
