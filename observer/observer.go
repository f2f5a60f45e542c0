// Package observer positions and orients a virtual camera relative to
// celestial bodies, and animates it with time-based actions.
package observer

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
)

// Body is anything the observer can be centered on or look at.
type Body interface {
	Position(t float64) r3.Vec
	Orientation(t float64) quat.Number
}

// Observer is a camera with a position relative to a center body and an
// orientation. The position is expressed in the position frame and the
// orientation in the pointing frame. The camera looks along its local -z
// axis with +y up.
type Observer struct {
	center        Body
	positionFrame core.Frame
	pointingFrame core.Frame
	position      r3.Vec
	orientation   quat.Number
}

// New creates an observer sitting exactly on center, with ICRF position and
// pointing frames and the identity orientation.
func New(center Body) *Observer {
	return &Observer{
		center:        center,
		positionFrame: core.ICRF(),
		pointingFrame: core.ICRF(),
		orientation:   core.Identity(),
	}
}

func (o *Observer) Center() Body                  { return o.center }
func (o *Observer) Position() r3.Vec              { return o.position }
func (o *Observer) Orientation() quat.Number      { return o.orientation }
func (o *Observer) PositionFrame() core.Frame     { return o.positionFrame }
func (o *Observer) PointingFrame() core.Frame     { return o.pointingFrame }
func (o *Observer) SetCenter(center Body)         { o.center = center }
func (o *Observer) SetPosition(p r3.Vec)          { o.position = p }
func (o *Observer) SetPositionFrame(f core.Frame) { o.positionFrame = f }
func (o *Observer) SetPointingFrame(f core.Frame) { o.pointingFrame = f }

// SetOrientation stores q normalized.
func (o *Observer) SetOrientation(q quat.Number) {
	o.orientation = core.Normalize(q)
}

func (o *Observer) centerPosition(t float64) r3.Vec {
	if o.center == nil {
		return r3.Vec{}
	}
	return o.center.Position(t)
}

// AbsolutePosition returns the observer position relative to the root of the
// system, in ICRF.
func (o *Observer) AbsolutePosition(t float64) r3.Vec {
	return r3.Add(o.centerPosition(t), core.Rotate(o.positionFrame.Orientation(t), o.position))
}

// AbsoluteOrientation returns the observer orientation in ICRF.
func (o *Observer) AbsoluteOrientation(t float64) quat.Number {
	return quat.Mul(o.pointingFrame.Orientation(t), o.orientation)
}

// UpdateCenter changes the center while keeping the absolute position at
// time t.
func (o *Observer) UpdateCenter(center Body, t float64) {
	q := o.positionFrame.Orientation(t)
	abs := o.AbsolutePosition(t)
	o.center = center
	o.position = core.Rotate(quat.Conj(q), r3.Sub(abs, o.centerPosition(t)))
}

// UpdatePositionFrame changes the position frame while keeping the absolute
// position at time t.
func (o *Observer) UpdatePositionFrame(f core.Frame, t float64) {
	q := quat.Mul(quat.Conj(f.Orientation(t)), o.positionFrame.Orientation(t))
	o.position = core.Rotate(q, o.position)
	o.positionFrame = f
}

// UpdatePointingFrame changes the pointing frame while keeping the absolute
// orientation at time t.
func (o *Observer) UpdatePointingFrame(f core.Frame, t float64) {
	q := quat.Mul(quat.Conj(f.Orientation(t)), o.pointingFrame.Orientation(t))
	o.SetOrientation(quat.Mul(q, o.orientation))
	o.pointingFrame = f
}

// Rotate turns the observer by rotation in its local coordinate system.
func (o *Observer) Rotate(rotation quat.Number) {
	o.SetOrientation(quat.Mul(o.orientation, rotation))
}

// Orbit moves the observer around its center by rotation, given in the
// observer's local coordinate system, keeping the same view of the center.
func (o *Observer) Orbit(rotation quat.Number) {
	q := core.Normalize(quat.Mul(quat.Mul(o.orientation, rotation), quat.Conj(o.orientation)))
	o.SetOrientation(quat.Mul(q, o.orientation))
	o.position = core.Rotate(q, o.position)
}

// ChangeDistance scales the distance from the center by factor.
func (o *Observer) ChangeDistance(factor float64) {
	o.position = r3.Scale(factor, o.position)
}
