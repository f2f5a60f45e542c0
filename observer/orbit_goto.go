package observer

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
)

// OrbitGoto moves the observer to a point above the target's north pole.
//
// In the first half the observer backs toward its current center until it is
// at an intermediate distance. At the halfway point the center switches to
// the target, then the observer swings along a great circle to the target's
// polar axis while closing to the final distance, re-aiming at the target
// as it goes.
type OrbitGoto struct {
	duration             float64
	startTime            float64
	startOrientation     quat.Number
	finalOrientation     quat.Number
	startDirection       r3.Vec
	startDistance        float64
	intermediateDistance float64
	target               Body
	finalDistance        float64

	switchedCenter bool
	// State captured when the center switches to the target.
	switchDistance    float64
	switchDirection   r3.Vec
	switchUp          r3.Vec
	switchOrientation quat.Number
}

// OrbitGotoOption configures an OrbitGoto action.
type OrbitGotoOption func(*OrbitGoto)

// WithIntermediateDistance overrides the distance from the original center
// reached at the end of the first half. The default is the larger of the
// final distance and half the starting distance.
func WithIntermediateDistance(d float64) OrbitGotoOption {
	return func(o *OrbitGoto) { o.intermediateDistance = d }
}

// NewOrbitGoto creates an OrbitGoto action starting at realTime.
func NewOrbitGoto(obs *Observer, target Body, duration, realTime, simTime, finalDistance float64, opts ...OrbitGotoOption) *OrbitGoto {
	startDistance := r3.Norm(obs.Position())
	o := &OrbitGoto{
		duration:             duration,
		startTime:            realTime,
		startOrientation:     obs.AbsoluteOrientation(simTime),
		finalOrientation:     lookAt(obs, target, simTime),
		startDirection:       unitOr(obs.Position(), r3.Vec{Z: 1}),
		startDistance:        startDistance,
		intermediateDistance: math.Max(finalDistance, startDistance/2),
		target:               target,
		finalDistance:        finalDistance,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Target returns the body being approached.
func (o *OrbitGoto) Target() Body { return o.target }

// SwitchedCenter reports whether the observer has been moved to the target.
func (o *OrbitGoto) SwitchedCenter() bool { return o.switchedCenter }

// UpdateObserver advances the action. Once the center has switched, earlier
// times are treated as the start of the second half.
func (o *OrbitGoto) UpdateObserver(obs *Observer, realTime, simTime float64) bool {
	t := progress(o.startTime, o.duration, realTime)
	if t < 0.5 && !o.switchedCenter {
		o.approachCenter(obs, t, simTime)
		return false
	}

	if !o.switchedCenter {
		o.switchToTarget(obs, simTime)
	}
	s := math.Max(0, 2*(t-0.5))
	o.swingToPole(obs, s, simTime)
	return t >= 1
}

func (o *OrbitGoto) approachCenter(obs *Observer, t, simTime float64) {
	travel := o.startDistance - o.intermediateDistance
	distance := o.startDistance - travel*travelEase(2*t, travel)
	obs.SetPosition(r3.Scale(distance, o.startDirection))

	q := core.Slerp(o.startOrientation, o.finalOrientation, orientationEase(t))
	setAbsoluteOrientation(obs, q, simTime)
}

func (o *OrbitGoto) switchToTarget(obs *Observer, simTime float64) {
	obs.UpdateCenter(o.target, simTime)
	o.switchDistance = r3.Norm(obs.Position())
	o.switchDirection = unitOr(obs.Position(), o.poleDirection(obs, simTime))
	o.switchOrientation = obs.AbsoluteOrientation(simTime)
	o.switchUp = core.Rotate(o.switchOrientation, r3.Vec{Y: 1})
	o.switchedCenter = true
}

// poleDirection is the target's +z axis in the observer's position frame.
func (o *OrbitGoto) poleDirection(obs *Observer, simTime float64) r3.Vec {
	pole := core.Rotate(o.target.Orientation(simTime), r3.Vec{Z: 1})
	return core.Rotate(quat.Conj(obs.PositionFrame().Orientation(simTime)), pole)
}

func (o *OrbitGoto) swingToPole(obs *Observer, s, simTime float64) {
	ease := Smootherstep(s)
	dir := slerpDirection(o.switchDirection, o.poleDirection(obs, simTime), ease)
	distance := o.switchDistance + (o.finalDistance-o.switchDistance)*ease
	obs.SetPosition(r3.Scale(distance, dir))

	aim := core.LookRotation(obs.AbsolutePosition(simTime), o.target.Position(simTime), o.switchUp)
	q := core.Slerp(o.switchOrientation, aim, orientationEase(s))
	setAbsoluteOrientation(obs, q, simTime)
}

func unitOr(v, fallback r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return fallback
	}
	return r3.Scale(1/n, v)
}

// slerpDirection moves along the great circle from unit vector a to unit
// vector b. Opposite vectors rotate about an arbitrary perpendicular axis.
func slerpDirection(a, b r3.Vec, t float64) r3.Vec {
	cos := math.Max(-1, math.Min(1, r3.Dot(a, b)))
	angle := math.Acos(cos)
	switch {
	case angle < 1e-9:
		return a
	case math.Pi-angle < 1e-9:
		return core.Rotate(core.AxisAngle(core.UnitOrthogonal(a), t*angle), a)
	}
	sinAngle := math.Sin(angle)
	return r3.Add(
		r3.Scale(math.Sin((1-t)*angle)/sinAngle, a),
		r3.Scale(math.Sin(t*angle)/sinAngle, b),
	)
}
