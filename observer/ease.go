package observer

import (
	"math"

	"github.com/signalsfoundry/cosmoview/internal/numeric"
)

// Smoothstep is the cubic ease 3x² - 2x³.
func Smoothstep(x float64) float64 {
	return x * x * (3 - 2*x)
}

// Smootherstep is Perlin's quintic ease 6x⁵ - 15x⁴ + 10x³, continuous in the
// second derivative at 0 and 1.
func Smootherstep(x float64) float64 {
	return x * x * x * (x*(x*6-15) + 10)
}

// Bisection bounds and tolerance for the exponential rate parameter.
const (
	easeRateLower     = 1.0e-4
	easeRateTolerance = 1.0e-12
)

// ExponentialEase maps the unit interval onto itself with an exponential
// acceleration phase followed by a constant-velocity phase. Position is 0 at
// x = 0 and 1 at x = 1, the initial velocity is StartSpeed and the velocity
// is continuous at AccelerationTime, the fraction of the interval spent
// accelerating.
type ExponentialEase struct {
	StartSpeed       float64
	AccelerationTime float64
}

// rate solves for the exponent b that makes the ease reach exactly 1 at x = 1.
func (e ExponentialEase) rate() float64 {
	v0, ta := e.StartSpeed, e.AccelerationTime
	endPosition := func(b float64) float64 {
		c := math.Exp(ta * b)
		return (v0/b)*(c-1) + (1-ta)*v0*c - 1
	}
	return numeric.Bisect(endPosition, easeRateLower, 100/ta, easeRateTolerance)
}

// Eval returns the eased position at x in [0, 1].
func (e ExponentialEase) Eval(x float64) float64 {
	v0, ta := e.StartSpeed, e.AccelerationTime
	b := e.rate()
	a := v0 / b
	peakVelocity := v0 * math.Exp(b*ta)
	accelerating := a * (math.Exp(b*math.Min(x, ta)) - 1)
	cruising := math.Max(0, x-ta) * peakVelocity
	return accelerating + cruising
}

// SmoothStep mirrors Eval about x = 0.5 for a symmetric ease-in/ease-out with
// a linear middle. AccelerationTime is a fraction of each half, so 0.5 spends
// a quarter of the time accelerating and a quarter decelerating.
func (e ExponentialEase) SmoothStep(t float64) float64 {
	if t < 0.5 {
		return 0.5 * e.Eval(2*t)
	}
	return 1 - 0.5*e.Eval(2*(1-t))
}
