package observer

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
)

type fixedBody struct {
	pos r3.Vec
	rot quat.Number
}

func newFixedBody(pos r3.Vec) *fixedBody {
	return &fixedBody{pos: pos, rot: core.Identity()}
}

func (b *fixedBody) Position(float64) r3.Vec         { return b.pos }
func (b *fixedBody) Orientation(float64) quat.Number { return b.rot }

func assertVecNear(t *testing.T, name string, got, want r3.Vec, tol float64) {
	t.Helper()
	if !scalar.EqualWithinAbs(got.X, want.X, tol) ||
		!scalar.EqualWithinAbs(got.Y, want.Y, tol) ||
		!scalar.EqualWithinAbs(got.Z, want.Z, tol) {
		t.Fatalf("%s: got %+v, want %+v (tol %g)", name, got, want, tol)
	}
}

func assertSameRotation(t *testing.T, name string, got, want quat.Number, tol float64) {
	t.Helper()
	d := got.Real*want.Real + got.Imag*want.Imag + got.Jmag*want.Jmag + got.Kmag*want.Kmag
	if d < 0 {
		d = -d
	}
	if !scalar.EqualWithinAbs(d, 1, tol) {
		t.Fatalf("%s: got %+v, want %+v (|dot|=%v)", name, got, want, d)
	}
}

// lookDirection is the observer's -z axis in ICRF.
func lookDirection(obs *Observer, simTime float64) r3.Vec {
	return core.Rotate(obs.AbsoluteOrientation(simTime), r3.Vec{Z: -1})
}
