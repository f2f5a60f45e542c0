package core

import (
	"math"
	"testing"
)

func keplerResidual(ecc, meanAnomaly, E float64) float64 {
	return math.Abs(E - ecc*math.Sin(E) - meanAnomaly)
}

func TestEccentricAnomaly_CircularOrbitIsMeanAnomaly(t *testing.T) {
	for _, M := range []float64{-2, 0, 0.5, math.Pi, 5} {
		if got := EccentricAnomaly(0, M); got != M {
			t.Fatalf("EccentricAnomaly(0, %v) = %v, want %v", M, got, M)
		}
	}
}

func TestEccentricAnomaly_LaguerreConwayResidual(t *testing.T) {
	const steps = 800
	for _, ecc := range []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99, 0.995, 0.999} {
		for i := 0; i <= steps; i++ {
			M := -2*math.Pi + 4*math.Pi*float64(i)/steps
			E := EccentricAnomaly(ecc, M)
			if r := keplerResidual(ecc, M, E); r > 1e-9 {
				t.Fatalf("e=%v M=%v: residual %g exceeds 1e-9", ecc, M, r)
			}
		}
	}
}

func TestEccentricAnomaly_StandardResidualSmallEccentricity(t *testing.T) {
	for _, ecc := range []float64{0.0001, 0.001, 0.005, 0.01} {
		for _, M := range []float64{0.1, 1, 2.5, 4, 6} {
			E := EccentricAnomaly(ecc, M)
			if r := keplerResidual(ecc, M, E); r > 1e-9 {
				t.Fatalf("e=%v M=%v: residual %g exceeds 1e-9", ecc, M, r)
			}
		}
	}
}

// Five substitution steps leave an error of order e^6 near the switch-over.
func TestEccentricAnomaly_StandardResidualNearThreshold(t *testing.T) {
	const ecc = 0.29
	for _, M := range []float64{0.1, 1, 2.5, 4, 6} {
		E := EccentricAnomaly(ecc, M)
		if r := keplerResidual(ecc, M, E); r > 1e-3 {
			t.Fatalf("e=%v M=%v: residual %g exceeds 1e-3", ecc, M, r)
		}
	}
}

func TestEccentricAnomaly_BranchSelection(t *testing.T) {
	const M = 1.2
	if got, want := EccentricAnomaly(0.2999, M), eccentricAnomalyStandard(0.2999, M, StandardIterations); got != want {
		t.Fatalf("e just below threshold should use substitution: got %v want %v", got, want)
	}
	if got, want := EccentricAnomaly(0.3, M), eccentricAnomalyLaguerreConway(0.3, M, LaguerreConwayIterations); got != want {
		t.Fatalf("e at threshold should use Laguerre-Conway: got %v want %v", got, want)
	}
}
