package observer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
)

func TestNewObserverDefaults(t *testing.T) {
	earth := newFixedBody(r3.Vec{X: 1.5e8})
	obs := New(earth)
	if obs.Center() != Body(earth) {
		t.Fatalf("center not set")
	}
	if obs.PositionFrame() != core.Frame(core.ICRF()) || obs.PointingFrame() != core.Frame(core.ICRF()) {
		t.Fatalf("default frames should be ICRF")
	}
	assertVecNear(t, "absolute position", obs.AbsolutePosition(0), earth.pos, 0)
	if obs.AbsoluteOrientation(0) != core.Identity() {
		t.Fatalf("default orientation should be identity")
	}
}

func TestObserver_FramesApplyToAbsoluteState(t *testing.T) {
	obs := New(newFixedBody(r3.Vec{Y: 10}))
	frame := core.FixedRotationModel{Rotation: core.AxisAngle(r3.Vec{Z: 1}, math.Pi/2)}
	obs.SetPositionFrame(frame)
	obs.SetPointingFrame(frame)
	obs.SetPosition(r3.Vec{X: 1})
	obs.SetOrientation(core.Identity())

	assertVecNear(t, "absolute position", obs.AbsolutePosition(0), r3.Vec{Y: 11}, 1e-12)
	assertVecNear(t, "absolute look", lookDirection(obs, 0), r3.Vec{Z: -1}, 1e-12)
	assertVecNear(t, "absolute x", core.Rotate(obs.AbsoluteOrientation(0), r3.Vec{X: 1}), r3.Vec{Y: 1}, 1e-12)
}

func TestObserver_UpdateCenterKeepsAbsolutePosition(t *testing.T) {
	earth := newFixedBody(r3.Vec{X: 1.5e8})
	moon := newFixedBody(r3.Vec{X: 1.5e8 + 384400})
	obs := New(earth)
	obs.SetPositionFrame(core.EclipticJ2000())
	obs.SetPosition(r3.Vec{X: 1000, Y: 2000, Z: 500})

	before := obs.AbsolutePosition(0)
	obs.UpdateCenter(moon, 0)
	if obs.Center() != Body(moon) {
		t.Fatalf("center not switched")
	}
	assertVecNear(t, "absolute position", obs.AbsolutePosition(0), before, 1e-6)
}

func TestObserver_UpdateFramesKeepAbsoluteState(t *testing.T) {
	obs := New(newFixedBody(r3.Vec{}))
	obs.SetPosition(r3.Vec{X: 3, Y: -4, Z: 12})
	obs.SetOrientation(core.AxisAngle(r3.Vec{X: 1, Y: 1}, 0.8))

	pos := obs.AbsolutePosition(0)
	rot := obs.AbsoluteOrientation(0)

	spinning := core.NewUniformRotationModel(0.3, 0.2, 1e-3, 0, 0)
	obs.UpdatePositionFrame(spinning, 500)
	obs.UpdatePointingFrame(spinning, 500)

	assertVecNear(t, "position", obs.AbsolutePosition(500), pos, 1e-12)
	assertSameRotation(t, "orientation", obs.AbsoluteOrientation(500), rot, 1e-13)
	// At other times the observer turns with the frame.
	if r3.Norm(r3.Sub(obs.AbsolutePosition(1500), pos)) < 1 {
		t.Fatalf("observer should rotate with its frame")
	}
}

func TestObserver_OrbitKeepsDistanceAndView(t *testing.T) {
	obs := New(newFixedBody(r3.Vec{}))
	obs.SetPosition(r3.Vec{Z: 10})
	obs.SetOrientation(core.LookRotation(obs.Position(), r3.Vec{}, r3.Vec{Y: 1}))

	obs.Orbit(core.AxisAngle(r3.Vec{Y: 1}, 0.7))

	if !scalar.EqualWithinAbs(r3.Norm(obs.Position()), 10, 1e-12) {
		t.Fatalf("orbit changed distance: %v", r3.Norm(obs.Position()))
	}
	want := r3.Unit(r3.Scale(-1, obs.Position()))
	assertVecNear(t, "still looking at center", lookDirection(obs, 0), want, 1e-12)

	obs.ChangeDistance(0.5)
	if !scalar.EqualWithinAbs(r3.Norm(obs.Position()), 5, 1e-12) {
		t.Fatalf("ChangeDistance: %v", r3.Norm(obs.Position()))
	}
}

func TestObserver_SetOrientationNormalizes(t *testing.T) {
	obs := New(nil)
	obs.SetOrientation(quat.Number{Real: 2})
	if obs.Orientation() != core.Identity() {
		t.Fatalf("expected normalized identity, got %+v", obs.Orientation())
	}
	obs.Rotate(core.AxisAngle(r3.Vec{Z: 1}, 1))
	if !scalar.EqualWithinAbs(quat.Abs(obs.Orientation()), 1, 1e-15) {
		t.Fatalf("rotation not unit")
	}
	// A nil center is the origin.
	assertVecNear(t, "nil center", obs.AbsolutePosition(0), r3.Vec{}, 0)
}
