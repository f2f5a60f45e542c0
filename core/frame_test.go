package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/model"
)

func TestInertialFrameTable(t *testing.T) {
	if ICRF().Orientation(0) != Identity() {
		t.Fatalf("ICRF should be the identity frame")
	}
	if ICRF() != ICRF() {
		t.Fatalf("frame table should be shared")
	}

	for _, name := range []string{FrameICRF, FrameEquatorJ2000, FrameEclipticJ2000, FrameEquatorB1950, FrameGalactic} {
		f, ok := InertialFrameByName(name)
		if !ok || f.Name() != name {
			t.Fatalf("missing frame %q", name)
		}
		if !scalar.EqualWithinAbs(quat.Abs(f.Orientation(0)), 1, 1e-14) {
			t.Fatalf("%s orientation not unit", name)
		}
		if f.AngularVelocity(1e9) != (r3.Vec{}) {
			t.Fatalf("%s should not rotate", name)
		}
	}
	if f, ok := InertialFrameByName("IAU_EARTH"); ok || f != nil {
		t.Fatalf("unknown frame should not resolve")
	}
}

func TestEclipticJ2000_PoleTiltedByObliquity(t *testing.T) {
	pole := Rotate(EclipticJ2000().Orientation(0), unitZ)
	angle := math.Acos(r3.Dot(pole, unitZ)) * 180 / math.Pi
	if math.Abs(angle-J2000Obliquity) > 1e-4 {
		t.Fatalf("ecliptic pole tilt %v deg, want %v", angle, J2000Obliquity)
	}
	// The ecliptic north pole lies on the -y side in equatorial coordinates.
	if pole.Y >= 0 {
		t.Fatalf("ecliptic pole %+v should have negative y", pole)
	}
}

func TestEquatorJ2000_FrameBiasIsTiny(t *testing.T) {
	q := EquatorJ2000().Orientation(0)
	// The bias is tens of milliarcseconds.
	angle := 2 * math.Asin(r3.Norm(r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}))
	if angle <= 0 || angle > 1e-6 {
		t.Fatalf("frame bias angle %v rad", angle)
	}
}

func TestGalacticFrame_CenterDirection(t *testing.T) {
	// The galactic center (l=0, b=0) lies near RA 266.4 deg, Dec -28.9 deg.
	center := Rotate(galacticOrientation(), unitX)
	ra := math.Atan2(center.Y, center.X) * 180 / math.Pi
	if ra < 0 {
		ra += 360
	}
	dec := math.Asin(center.Z) * 180 / math.Pi
	if math.Abs(ra-266.4) > 0.5 || math.Abs(dec+28.9) > 0.5 {
		t.Fatalf("galactic center at RA %v Dec %v", ra, dec)
	}
}

func galacticOrientation() quat.Number {
	f, _ := InertialFrameByName(FrameGalactic)
	return f.Orientation(0)
}

type movingPoint struct {
	state func(t float64) model.StateVector
}

func (m movingPoint) State(t float64) model.StateVector { return m.state(t) }

func TestTwoBodyRotatingFrame(t *testing.T) {
	primary := movingPoint{func(float64) model.StateVector {
		return model.StateVector{Position: r3.Vec{X: 10}}
	}}
	secondary := movingPoint{func(float64) model.StateVector {
		return model.StateVector{Position: r3.Vec{X: 10, Y: 5}, Velocity: r3.Vec{X: -2}}
	}}
	f := NewTwoBodyRotatingFrame(primary, secondary)

	q := f.Orientation(0)
	assertVecNear(t, "x axis", Rotate(q, unitX), unitY, 1e-12)
	assertVecNear(t, "z axis", Rotate(q, unitZ), unitZ, 1e-12)
	// r x v / |r|^2 = (0,5,0) x (-2,0,0) / 25
	assertVecNear(t, "angular velocity", f.AngularVelocity(0), r3.Vec{Z: 0.4}, 1e-15)
}

func TestTwoBodyRotatingFrame_Degenerate(t *testing.T) {
	origin := movingPoint{func(float64) model.StateVector { return model.StateVector{} }}
	still := movingPoint{func(float64) model.StateVector {
		return model.StateVector{Position: r3.Vec{X: 1}}
	}}
	radial := movingPoint{func(float64) model.StateVector {
		return model.StateVector{Position: r3.Vec{X: 1}, Velocity: r3.Vec{X: 3}}
	}}

	for name, f := range map[string]*TwoBodyRotatingFrame{
		"coincident": NewTwoBodyRotatingFrame(origin, origin),
		"stationary": NewTwoBodyRotatingFrame(origin, still),
		"radial":     NewTwoBodyRotatingFrame(origin, radial),
	} {
		if q := f.Orientation(0); q != Identity() {
			t.Fatalf("%s: expected identity, got %+v", name, q)
		}
	}
	if w := NewTwoBodyRotatingFrame(origin, origin).AngularVelocity(0); w != (r3.Vec{}) {
		t.Fatalf("coincident bodies should have zero angular velocity, got %+v", w)
	}
}

func TestBodyFixedFrame(t *testing.T) {
	rot := NewUniformRotationModel(0, 0, 0.1, 0, 0)
	f := NewBodyFixedFrame(rot)
	assertSameRotation(t, "orientation", f.Orientation(3), rot.Orientation(3), 1e-15)
	assertVecNear(t, "angular velocity", f.AngularVelocity(3), r3.Vec{Z: 0.1}, 1e-15)
}
