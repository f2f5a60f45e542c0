package observer

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
)

// Goto flies the observer in a straight line toward a target, stopping at a
// fixed distance from it. Halfway through, the observer's center switches to
// the target.
type Goto struct {
	duration         float64
	startTime        float64
	startOrientation quat.Number
	finalOrientation quat.Number
	startPosition    r3.Vec
	target           Body
	finalDistance    float64
	switchedCenter   bool
}

// NewGoto creates a Goto action starting at realTime.
func NewGoto(obs *Observer, target Body, duration, realTime, simTime, finalDistance float64) *Goto {
	return &Goto{
		duration:         duration,
		startTime:        realTime,
		startOrientation: obs.AbsoluteOrientation(simTime),
		finalOrientation: lookAt(obs, target, simTime),
		startPosition:    obs.AbsolutePosition(simTime),
		target:           target,
		finalDistance:    finalDistance,
	}
}

// Target returns the body being approached.
func (g *Goto) Target() Body { return g.target }

// UpdateObserver moves and turns the observer. The end point tracks the
// target's current position, so a moving target is followed.
func (g *Goto) UpdateObserver(obs *Observer, realTime, simTime float64) bool {
	t := progress(g.startTime, g.duration, realTime)

	q := core.Slerp(g.startOrientation, g.finalOrientation, orientationEase(t))
	setAbsoluteOrientation(obs, q, simTime)

	startToTarget := r3.Sub(g.target.Position(simTime), g.startPosition)
	distanceFromStart := r3.Norm(startToTarget)
	current := g.startPosition
	if distanceFromStart > 0 {
		travel := distanceFromStart - g.finalDistance
		pt := travelEase(t, travel)
		current = r3.Add(g.startPosition, r3.Scale(pt*travel/distanceFromStart, startToTarget))
	}
	setAbsolutePosition(obs, current, simTime)

	if t > 0.5 && !g.switchedCenter {
		obs.UpdateCenter(g.target, simTime)
		g.switchedCenter = true
	}

	return t >= 1
}
