package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLookRotation_MinusZPointsAtTarget(t *testing.T) {
	cases := []struct{ eye, target, up r3.Vec }{
		{r3.Vec{}, r3.Vec{X: 1}, unitZ},
		{r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: -4, Y: 0.5, Z: 10}, unitY},
		{r3.Vec{Z: 5}, r3.Vec{}, unitY},
		{r3.Vec{X: 7000}, r3.Vec{X: -3, Y: 2, Z: 1}, r3.Vec{X: 0.2, Z: 1}},
	}
	for _, c := range cases {
		q := LookRotation(c.eye, c.target, c.up)
		if !scalar.EqualWithinAbs(quat.Abs(q), 1, 1e-12) {
			t.Fatalf("LookRotation not unit: %+v", q)
		}
		want := r3.Unit(r3.Sub(c.target, c.eye))
		assertVecNear(t, "look direction", Rotate(q, r3.Vec{Z: -1}), want, 1e-12)
	}
}

func TestLookRotation_UpStaysInUpperHalf(t *testing.T) {
	q := LookRotation(r3.Vec{}, r3.Vec{X: 1}, unitZ)
	up := Rotate(q, unitY)
	assertVecNear(t, "local y", up, unitZ, 1e-12)
}

func TestLookRotation_ParallelUpIsFinite(t *testing.T) {
	q := LookRotation(r3.Vec{}, r3.Vec{Z: 10}, unitZ)
	for _, c := range []float64{q.Real, q.Imag, q.Jmag, q.Kmag} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			t.Fatalf("non-finite rotation %+v", q)
		}
	}
	assertVecNear(t, "look direction", Rotate(q, r3.Vec{Z: -1}), unitZ, 1e-12)
}

func TestLookRotation_ZeroLookIsIdentity(t *testing.T) {
	p := r3.Vec{X: 1, Y: 1, Z: 1}
	if q := LookRotation(p, p, unitY); q != Identity() {
		t.Fatalf("expected identity, got %+v", q)
	}
}

func TestQuatMatrixRoundTrip(t *testing.T) {
	qs := []quat.Number{
		Identity(),
		AxisAngle(unitX, 0.3),
		AxisAngle(r3.Vec{X: 1, Y: -2, Z: 0.5}, 2.9),
		AxisAngle(unitY, math.Pi),
		AxisAngle(unitZ, -math.Pi+1e-3),
	}
	for _, q := range qs {
		got := QuatFromMatrix(MatrixFromQuat(q))
		assertSameRotation(t, "round trip", got, q, 1e-12)
	}
}

func TestAxisAngle_RotatesVector(t *testing.T) {
	q := AxisAngle(unitZ, math.Pi/2)
	assertVecNear(t, "x rotated about z", Rotate(q, unitX), unitY, 1e-14)
	if AxisAngle(r3.Vec{}, 1) != Identity() {
		t.Fatalf("zero axis should give identity")
	}
}

func TestSlerp(t *testing.T) {
	q0 := Identity()
	q1 := AxisAngle(unitZ, math.Pi/2)
	assertSameRotation(t, "t=0", Slerp(q0, q1, 0), q0, 1e-13)
	assertSameRotation(t, "t=1", Slerp(q0, q1, 1), q1, 1e-13)
	assertSameRotation(t, "t=0.5", Slerp(q0, q1, 0.5), AxisAngle(unitZ, math.Pi/4), 1e-13)

	// -q1 is the same rotation; the shorter arc must be taken.
	neg := quat.Scale(-1, q1)
	assertSameRotation(t, "shorter arc", Slerp(q0, neg, 0.5), AxisAngle(unitZ, math.Pi/4), 1e-13)
}

func TestUnitOrthogonal(t *testing.T) {
	for _, v := range []r3.Vec{unitX, unitY, unitZ, {X: 1, Y: 2, Z: 3}, {Z: -4}, {X: 1e-20, Z: 1}} {
		u := UnitOrthogonal(v)
		if !scalar.EqualWithinAbs(r3.Norm(u), 1, 1e-14) {
			t.Fatalf("UnitOrthogonal(%v) not unit: %v", v, u)
		}
		if d := r3.Dot(u, v); math.Abs(d) > 1e-12*r3.Norm(v) {
			t.Fatalf("UnitOrthogonal(%v) not orthogonal: dot=%v", v, d)
		}
	}
}

func TestMatrixFromQuat(t *testing.T) {
	q := AxisAngle(r3.Vec{X: 1, Y: 1}, 0.7)
	m := MatrixFromQuat(q)

	var id r3.Mat
	id.Mul(m, m.T())
	if !mat.EqualApprox(&id, r3.Eye(), 1e-14) {
		t.Fatalf("R R^T not identity: %v", mat.Formatted(&id))
	}
	v := r3.Vec{X: 0.3, Y: -2, Z: 5}
	assertVecNear(t, "matrix rotation", m.MulVec(v), Rotate(q, v), 1e-14)

	cols := MatrixFromColumns(unitY, unitZ, unitX)
	assertVecNear(t, "column map", cols.MulVec(unitX), unitY, 0)
}
