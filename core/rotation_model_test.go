package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestUniformRotationModel(t *testing.T) {
	const rate = 2 * math.Pi / 86400
	m := NewUniformRotationModel(0.4, 1.2, rate, 0.5, 100)

	pole := Rotate(quat.Mul(AxisAngle(unitZ, 1.2), AxisAngle(unitX, 0.4)), unitZ)
	for _, tm := range []float64{100, 5000, 86500} {
		// The spin axis is the body's z axis and stays fixed.
		assertVecNear(t, "pole", Rotate(m.Orientation(tm), unitZ), pole, 1e-12)
	}
	assertVecNear(t, "angular velocity", m.AngularVelocity(0), r3.Scale(rate, pole), 1e-13)

	// One sidereal period later the orientation repeats.
	assertSameRotation(t, "period", m.Orientation(100+86400), m.Orientation(100), 1e-12)

	// At the epoch the meridian angle is applied about the pole.
	want := quat.Mul(quat.Mul(AxisAngle(unitZ, 1.2), AxisAngle(unitX, 0.4)), AxisAngle(unitZ, 0.5))
	assertSameRotation(t, "epoch", m.Orientation(100), want, 1e-13)
}

func TestFixedRotationModel(t *testing.T) {
	q := AxisAngle(unitX, 1)
	m := FixedRotationModel{Rotation: q}
	if m.Orientation(0) != q || m.Orientation(1e9) != q {
		t.Fatalf("fixed rotation changed")
	}
	if m.AngularVelocity(10) != (r3.Vec{}) {
		t.Fatalf("fixed rotation should have no angular velocity")
	}
}

func TestBodyFixedRotationModel_HalfTurnAboutZ(t *testing.T) {
	body := NewUniformRotationModel(0.2, 0.3, 1e-4, 0, 0)
	m := NewBodyFixedRotationModel(body)

	for _, tm := range []float64{0, 1000} {
		bq := body.Orientation(tm)
		got := m.Orientation(tm)
		assertSameRotation(t, "composition", got, quat.Mul(bq, quat.Number{Kmag: 1}), 1e-13)
		// The body x axis is flipped, z is kept.
		assertVecNear(t, "x", Rotate(got, unitX), r3.Scale(-1, Rotate(bq, unitX)), 1e-12)
		assertVecNear(t, "z", Rotate(got, unitZ), Rotate(bq, unitZ), 1e-12)
	}
	if m.AngularVelocity(5) != body.AngularVelocity(5) {
		t.Fatalf("angular velocity should pass through")
	}
}

func TestInterpolatedRotationModel(t *testing.T) {
	q0 := Identity()
	q1 := AxisAngle(unitZ, 1.0)
	m := NewInterpolatedRotationModel([]TimeOrientation{
		{T: 10, Orientation: q1},
		{T: 0, Orientation: q0},
	})

	assertSameRotation(t, "before", m.Orientation(-5), q0, 1e-13)
	assertSameRotation(t, "after", m.Orientation(50), q1, 1e-13)
	assertSameRotation(t, "middle", m.Orientation(5), AxisAngle(unitZ, 0.5), 1e-13)
	assertVecNear(t, "angular velocity", m.AngularVelocity(3), r3.Vec{Z: 0.1}, 1e-12)
	assertVecNear(t, "angular velocity outside", m.AngularVelocity(30), r3.Vec{Z: 0.1}, 1e-12)

	empty := NewInterpolatedRotationModel(nil)
	if empty.Orientation(1) != Identity() || empty.AngularVelocity(1) != (r3.Vec{}) {
		t.Fatalf("empty model should give identity and zero")
	}
}
