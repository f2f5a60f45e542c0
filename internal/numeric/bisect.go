// Package numeric holds small numerical utilities shared by the motion and
// camera code.
package numeric

// Bisect finds a root of an increasing function f in [lower, upper] by
// repeated midpoint bisection. Iteration stops once the bracket is narrower
// than 2*tolerance and the midpoint of the final bracket is returned.
//
// f must be negative left of the root and non-negative right of it. If the
// bracket does not contain a sign change the result converges to whichever
// bound f never crossed.
func Bisect(f func(float64) float64, lower, upper, tolerance float64) float64 {
	x := (lower + upper) / 2.0
	for upper-lower > 2.0*tolerance {
		if f(x) < 0.0 {
			lower = x
		} else {
			upper = x
		}
		x = (lower + upper) / 2.0
	}
	return x
}
