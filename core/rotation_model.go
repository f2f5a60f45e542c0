package core

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotationModel gives the orientation of a body at a time in seconds past
// J2000 TDB. Angular velocity is in radians per second.
type RotationModel interface {
	Orientation(t float64) quat.Number
	AngularVelocity(t float64) r3.Vec
}

// UniformRotationModel spins at a constant rate about a fixed axis. The axis
// is the local z-axis tilted by the pole inclination and ascending node.
type UniformRotationModel struct {
	rotation             quat.Number
	rotationRate         float64
	meridianAngleAtEpoch float64
	epoch                float64
}

// NewUniformRotationModel creates a constant-rate rotation.
//
// inclination is the angle between the rotation axis and the reference +z
// direction, rotationRate is in rad/s and the meridian angle is measured at
// epoch (seconds past J2000).
func NewUniformRotationModel(inclination, ascendingNode, rotationRate, meridianAngleAtEpoch, epoch float64) *UniformRotationModel {
	return &UniformRotationModel{
		rotation:             quat.Mul(AxisAngle(unitZ, ascendingNode), AxisAngle(unitX, inclination)),
		rotationRate:         rotationRate,
		meridianAngleAtEpoch: meridianAngleAtEpoch,
		epoch:                epoch,
	}
}

// Orientation returns the precessed pole composed with the spin at t.
func (u *UniformRotationModel) Orientation(t float64) quat.Number {
	meridian := u.meridianAngleAtEpoch + (t-u.epoch)*u.rotationRate
	return quat.Mul(u.rotation, AxisAngle(unitZ, meridian))
}

// AngularVelocity is the spin-rate vector along the fixed rotation axis.
func (u *UniformRotationModel) AngularVelocity(float64) r3.Vec {
	return Rotate(u.rotation, r3.Vec{Z: u.rotationRate})
}

// FixedRotationModel holds a constant orientation.
type FixedRotationModel struct {
	Rotation quat.Number
}

// Orientation returns the fixed rotation.
func (f FixedRotationModel) Orientation(float64) quat.Number { return f.Rotation }

// AngularVelocity is always zero.
func (f FixedRotationModel) AngularVelocity(float64) r3.Vec { return r3.Vec{} }

// halfTurnZ is the quaternion (w=0, x=0, y=0, z=1): 180 degrees about z.
var halfTurnZ = quat.Number{Kmag: 1}

// BodyFixedRotationModel follows the orientation of another body with an extra
// 180 degree turn about the body's z-axis. Older catalogs define body-fixed
// frames with this offset.
type BodyFixedRotationModel struct {
	body RotationModel
}

// NewBodyFixedRotationModel creates a rotation fixed to body. The body is not
// owned; it must outlive the model.
func NewBodyFixedRotationModel(body RotationModel) *BodyFixedRotationModel {
	return &BodyFixedRotationModel{body: body}
}

// Orientation returns the body orientation composed with the half turn.
func (b *BodyFixedRotationModel) Orientation(t float64) quat.Number {
	return quat.Mul(b.body.Orientation(t), halfTurnZ)
}

// AngularVelocity passes through the body's angular velocity.
func (b *BodyFixedRotationModel) AngularVelocity(t float64) r3.Vec {
	return b.body.AngularVelocity(t)
}

// TimeOrientation is one record of an interpolated rotation.
type TimeOrientation struct {
	T           float64
	Orientation quat.Number
}

// InterpolatedRotationModel slerps between time-tagged orientation records.
// Times outside the records clamp to the first or last record.
type InterpolatedRotationModel struct {
	records []TimeOrientation
}

// NewInterpolatedRotationModel copies and sorts the records by time.
func NewInterpolatedRotationModel(records []TimeOrientation) *InterpolatedRotationModel {
	sorted := append([]TimeOrientation(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].T < sorted[j].T })
	return &InterpolatedRotationModel{records: sorted}
}

// search returns the index of the first record with T >= t.
func (m *InterpolatedRotationModel) search(t float64) int {
	return sort.Search(len(m.records), func(i int) bool { return m.records[i].T >= t })
}

// Orientation interpolates the orientation at t. With no records it returns
// the identity.
func (m *InterpolatedRotationModel) Orientation(t float64) quat.Number {
	if len(m.records) == 0 {
		return Identity()
	}
	i := m.search(t)
	switch {
	case i == 0:
		return m.records[0].Orientation
	case i == len(m.records):
		return m.records[len(m.records)-1].Orientation
	}
	s0, s1 := m.records[i-1], m.records[i]
	return Slerp(s0.Orientation, s1.Orientation, (t-s0.T)/(s1.T-s0.T))
}

// AngularVelocity returns the constant rate that carries the bracketing record
// pair into each other. Outside the records the first or last pair is used.
func (m *InterpolatedRotationModel) AngularVelocity(t float64) r3.Vec {
	n := len(m.records)
	if n < 2 {
		return r3.Vec{}
	}
	i := m.search(t)
	var t0, t1 TimeOrientation
	switch {
	case i == 0:
		t0, t1 = m.records[0], m.records[1]
	case i == n:
		t0, t1 = m.records[n-2], m.records[n-1]
	default:
		t0, t1 = m.records[i-1], m.records[i]
	}

	h := t1.T - t0.T
	dq := quat.Mul(t1.Orientation, quat.Conj(t0.Orientation))
	if dq.Real < 0 {
		dq = quat.Scale(-1, dq)
	}
	const one = 1.0 - 1e-15
	if h == 0 || math.Abs(dq.Real) > one {
		return r3.Vec{}
	}
	halfTheta := math.Acos(dq.Real)
	axis := normalizeOrZero(r3.Vec{X: dq.Imag, Y: dq.Jmag, Z: dq.Kmag})
	return r3.Scale(2*halfTheta/h, axis)
}
