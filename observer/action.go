package observer

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
)

// Action animates an observer. UpdateObserver is called once per frame with
// the real (wall clock) time and the simulation time, and reports whether
// the action has finished.
type Action interface {
	UpdateObserver(obs *Observer, realTime, simTime float64) bool
}

// progress returns (now - start) / duration clamped to [0, 1]. A zero
// duration completes immediately.
func progress(start, duration, now float64) float64 {
	if duration == 0 {
		return 1
	}
	return math.Max(0, math.Min(1, (now-start)/duration))
}

// lookAt returns the orientation at the observer's absolute position looking
// at target, keeping the observer's current up direction.
func lookAt(obs *Observer, target Body, simTime float64) quat.Number {
	up := core.Rotate(obs.AbsoluteOrientation(simTime), r3.Vec{Y: 1})
	return core.LookRotation(obs.AbsolutePosition(simTime), target.Position(simTime), up)
}

// setAbsoluteOrientation stores an ICRF orientation in the observer's
// pointing frame.
func setAbsoluteOrientation(obs *Observer, q quat.Number, simTime float64) {
	obs.SetOrientation(quat.Mul(quat.Conj(obs.PointingFrame().Orientation(simTime)), q))
}

// setAbsolutePosition stores an absolute position relative to the observer's
// center, in its position frame.
func setAbsolutePosition(obs *Observer, p r3.Vec, simTime float64) {
	rel := r3.Sub(p, obs.centerPosition(simTime))
	obs.SetPosition(core.Rotate(quat.Conj(obs.PositionFrame().Orientation(simTime)), rel))
}

// Center turns the observer in place until the target is in the middle of
// the view.
type Center struct {
	duration         float64
	startTime        float64
	startOrientation quat.Number
	finalOrientation quat.Number
}

// NewCenter creates a Center action starting at realTime. The final
// orientation is fixed from the target position at simTime.
func NewCenter(obs *Observer, target Body, duration, realTime, simTime float64) *Center {
	return &Center{
		duration:         duration,
		startTime:        realTime,
		startOrientation: obs.AbsoluteOrientation(simTime),
		finalOrientation: lookAt(obs, target, simTime),
	}
}

// UpdateObserver slerps the orientation with a smoothstep ease.
func (c *Center) UpdateObserver(obs *Observer, realTime, simTime float64) bool {
	t := progress(c.startTime, c.duration, realTime)
	q := core.Slerp(c.startOrientation, c.finalOrientation, Smoothstep(t))
	setAbsoluteOrientation(obs, q, simTime)
	return t >= 1
}

// maxStartSpeed keeps the exponential ease solvable: its end position only
// reaches 1 for start speeds below 1.
const maxStartSpeed = 0.5

// travelEase returns the eased fraction of a straight-line move of length
// travel km at progress t. The start speed covers 0.1 km per unit of progress,
// capped for very short moves. A zero-length move completes immediately.
func travelEase(t, travel float64) float64 {
	if travel == 0 {
		return 1
	}
	v0 := math.Min(0.1/math.Abs(travel), maxStartSpeed)
	return ExponentialEase{StartSpeed: v0, AccelerationTime: 0.5}.SmoothStep(t)
}

// orientationEase reaches 1 a quarter of the way through the action.
func orientationEase(t float64) float64 {
	return Smootherstep(math.Min(1, 4*t))
}
