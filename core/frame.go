package core

import (
	"sync"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/model"
)

// J2000Obliquity is the mean obliquity of the ecliptic at J2000, in degrees.
const J2000Obliquity = 23.4392911

// Names of the built-in inertial frames.
const (
	FrameICRF          = "ICRF"
	FrameEquatorJ2000  = "EquatorJ2000"
	FrameEclipticJ2000 = "EclipticJ2000"
	FrameEquatorB1950  = "EquatorB1950"
	FrameGalactic      = "Galactic"
)

// Frame is a reference frame whose orientation relative to ICRF may change
// with time.
type Frame interface {
	Orientation(t float64) quat.Number
	AngularVelocity(t float64) r3.Vec
}

// InertialFrame is a non-rotating frame with a fixed orientation relative to
// ICRF.
type InertialFrame struct {
	name        string
	orientation quat.Number
}

// Name returns the frame name.
func (f *InertialFrame) Name() string { return f.name }

// Orientation returns the fixed orientation.
func (f *InertialFrame) Orientation(float64) quat.Number { return f.orientation }

// AngularVelocity is always zero.
func (f *InertialFrame) AngularVelocity(float64) r3.Vec { return r3.Vec{} }

var (
	inertialOnce   sync.Once
	inertialFrames map[string]*InertialFrame
)

func arcsecToRadians(arcsec float64) float64 {
	return degToRad(arcsec / 3600.0)
}

// icrfToEquatorJ2000 is the frame bias matrix (IERS 2003 conventions).
func icrfToEquatorJ2000() *r3.Mat {
	xi0 := arcsecToRadians(-0.0166170)
	eta0 := arcsecToRadians(-0.0068192)
	da0 := arcsecToRadians(-0.01460)

	return r3.NewMat([]float64{
		1 - 0.5*(da0*da0+xi0*xi0), -da0, xi0,
		da0, 1 - 0.5*(da0*da0+eta0*eta0), eta0,
		-xi0, -eta0, 1 - 0.5*(eta0*eta0+xi0*xi0),
	})
}

// b1950ToEquatorJ2000 columns, FK4 B1950 to FK5 J2000.
var b1950ToEquatorJ2000 = MatrixFromColumns(
	r3.Vec{X: 0.9999256794956877, Y: 0.0111814832391717, Z: 0.0048590037723143},
	r3.Vec{X: -0.0111814832204662, Y: 0.9999374848933135, Z: -0.0000271702937440},
	r3.Vec{X: -0.0048590038153592, Y: -0.0000271625947142, Z: 0.9999881946023742},
)

func buildInertialFrames() {
	equatorJ2000ToICRF := quat.Conj(QuatFromMatrix(icrfToEquatorJ2000()))
	b1950ToICRF := quat.Mul(equatorJ2000ToICRF, QuatFromMatrix(b1950ToEquatorJ2000))
	eclipticToEquatorJ2000 := AxisAngle(unitX, degToRad(J2000Obliquity))
	galacticToB1950 := quat.Mul(
		quat.Mul(AxisAngle(unitZ, degToRad(282.25)), AxisAngle(unitX, degToRad(62.6))),
		AxisAngle(unitZ, degToRad(327.0)),
	)

	frames := []*InertialFrame{
		{name: FrameICRF, orientation: Identity()},
		{name: FrameEquatorJ2000, orientation: equatorJ2000ToICRF},
		{name: FrameEclipticJ2000, orientation: quat.Mul(equatorJ2000ToICRF, eclipticToEquatorJ2000)},
		{name: FrameEquatorB1950, orientation: b1950ToICRF},
		{name: FrameGalactic, orientation: quat.Mul(b1950ToICRF, galacticToB1950)},
	}
	inertialFrames = make(map[string]*InertialFrame, len(frames))
	for _, f := range frames {
		f.orientation = Normalize(f.orientation)
		inertialFrames[f.name] = f
	}
}

// InertialFrameByName looks up a built-in inertial frame. The table is built
// on first use and shared by the whole process.
func InertialFrameByName(name string) (*InertialFrame, bool) {
	inertialOnce.Do(buildInertialFrames)
	f, ok := inertialFrames[name]
	return f, ok
}

// ICRF returns the International Celestial Reference Frame.
func ICRF() *InertialFrame {
	f, _ := InertialFrameByName(FrameICRF)
	return f
}

// EclipticJ2000 returns the frame of the J2000 mean ecliptic and equinox.
func EclipticJ2000() *InertialFrame {
	f, _ := InertialFrameByName(FrameEclipticJ2000)
	return f
}

// EquatorJ2000 returns the J2000 mean equator and equinox (EME2000) frame.
func EquatorJ2000() *InertialFrame {
	f, _ := InertialFrameByName(FrameEquatorJ2000)
	return f
}

// BodyFixedFrame rotates with a body.
type BodyFixedFrame struct {
	body RotationModel
}

// NewBodyFixedFrame adapts a rotation model into a frame.
func NewBodyFixedFrame(body RotationModel) *BodyFixedFrame {
	return &BodyFixedFrame{body: body}
}

// Orientation returns the body orientation at t.
func (f *BodyFixedFrame) Orientation(t float64) quat.Number { return f.body.Orientation(t) }

// AngularVelocity returns the body angular velocity at t.
func (f *BodyFixedFrame) AngularVelocity(t float64) r3.Vec { return f.body.AngularVelocity(t) }

// StateSource is anything with a state at a time.
type StateSource interface {
	State(t float64) model.StateVector
}

// TwoBodyRotatingFrame has its x-axis pointing from the primary to the
// secondary and its z-axis normal to the secondary's orbit plane.
type TwoBodyRotatingFrame struct {
	primary   StateSource
	secondary StateSource
}

// NewTwoBodyRotatingFrame creates a frame for the primary/secondary pair.
func NewTwoBodyRotatingFrame(primary, secondary StateSource) *TwoBodyRotatingFrame {
	return &TwoBodyRotatingFrame{primary: primary, secondary: secondary}
}

func (f *TwoBodyRotatingFrame) relativeState(t float64) model.StateVector {
	return f.secondary.State(t).Sub(f.primary.State(t))
}

// Orientation returns the identity when the relative position or velocity is
// zero, or when they are parallel.
func (f *TwoBodyRotatingFrame) Orientation(t float64) quat.Number {
	s := f.relativeState(t)
	if isZeroVec(s.Position) || isZeroVec(s.Velocity) {
		return Identity()
	}

	xAxis := r3.Unit(s.Position)
	zAxis := r3.Cross(xAxis, r3.Unit(s.Velocity))
	if isZeroVec(zAxis) {
		return Identity()
	}
	zAxis = r3.Unit(zAxis)
	yAxis := r3.Cross(zAxis, xAxis)

	return QuatFromMatrix(MatrixFromColumns(xAxis, yAxis, zAxis))
}

// AngularVelocity returns r x v / |r|^2, or zero when the bodies coincide.
func (f *TwoBodyRotatingFrame) AngularVelocity(t float64) r3.Vec {
	s := f.relativeState(t)
	if isZeroVec(s.Position) {
		return r3.Vec{}
	}
	return r3.Scale(1/r3.Dot(s.Position, s.Position), r3.Cross(s.Position, s.Velocity))
}
