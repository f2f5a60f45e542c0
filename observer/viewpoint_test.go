package observer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
)

func TestViewpoint_AzimuthElevation(t *testing.T) {
	center := newFixedBody(r3.Vec{X: 100})
	reference := newFixedBody(r3.Vec{X: 200})

	cases := []struct {
		name      string
		azimuth   float64
		elevation float64
		want      r3.Vec
	}{
		{"toward reference", 0, 0, r3.Vec{X: 5}},
		{"quarter turn", 90, 0, r3.Vec{Y: 5}},
		{"overhead", 0, 90, r3.Vec{Z: 5}},
		{"behind", 180, 0, r3.Vec{X: -5}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := NewViewpoint(center, 5)
			v.ReferenceBody = reference
			v.Azimuth = c.azimuth
			v.Elevation = c.elevation

			obs := New(nil)
			v.PositionObserver(obs, 0)

			if obs.Center() != Body(center) {
				t.Fatalf("center not set")
			}
			assertVecNear(t, "position", obs.Position(), c.want, 1e-12)
			assertVecNear(t, "look direction", lookDirection(obs, 0), r3.Scale(-0.2, c.want), 1e-12)
		})
	}
}

func TestViewpoint_SetsInertialFrames(t *testing.T) {
	center := newFixedBody(r3.Vec{})
	obs := New(center)
	obs.SetPositionFrame(core.EclipticJ2000())
	obs.SetPointingFrame(core.EclipticJ2000())

	v := NewViewpoint(center, 10)
	v.ReferenceBody = newFixedBody(r3.Vec{Y: 1})
	v.PositionObserver(obs, 0)

	if obs.PositionFrame() != core.Frame(core.ICRF()) || obs.PointingFrame() != core.Frame(core.ICRF()) {
		t.Fatalf("viewpoint should reset observer frames to ICRF")
	}
	assertVecNear(t, "position", obs.AbsolutePosition(0), r3.Vec{Y: 10}, 1e-12)
}

func TestViewpoint_MissingOrCoincidentBodiesAreNoOps(t *testing.T) {
	center := newFixedBody(r3.Vec{X: 3})
	start := newFixedBody(r3.Vec{})

	for name, v := range map[string]*Viewpoint{
		"no reference": NewViewpoint(center, 10),
		"no center":    {ReferenceBody: center, Distance: 10},
		"coincident":   {CenterBody: center, ReferenceBody: newFixedBody(r3.Vec{X: 3}), Distance: 10},
	} {
		obs := New(start)
		obs.SetPosition(r3.Vec{Z: 1})
		v.PositionObserver(obs, 0)
		if obs.Center() != Body(start) || obs.Position() != (r3.Vec{Z: 1}) {
			t.Fatalf("%s: observer changed", name)
		}
	}
}

func TestViewpoint_UpDirection(t *testing.T) {
	center := newFixedBody(r3.Vec{})
	center.rot = core.AxisAngle(r3.Vec{X: 1}, 0.5)

	for _, up := range []UpDirection{CenterNorth, CenterSouth, EclipticNorth, EclipticSouth} {
		v := NewViewpoint(center, 1000)
		v.ReferenceBody = newFixedBody(r3.Vec{X: 1})
		v.Up = up

		obs := New(nil)
		v.PositionObserver(obs, 0)

		want := v.upVector(0)
		got := core.Rotate(obs.AbsoluteOrientation(0), r3.Vec{Y: 1})
		if d := r3.Dot(got, want); d <= 0 {
			t.Fatalf("%v: observer up %+v points away from %+v", up, got, want)
		}
		if d := r3.Dot(got, lookDirection(obs, 0)); math.Abs(d) > 1e-12 {
			t.Fatalf("%v: up not perpendicular to view direction (dot=%v)", up, d)
		}
		if !scalar.EqualWithinAbs(r3.Norm(obs.Position()), 1000, 1e-9) {
			t.Fatalf("%v: distance %v", up, r3.Norm(obs.Position()))
		}
	}
}

func TestViewpoint_UpParallelToReference(t *testing.T) {
	center := newFixedBody(r3.Vec{})
	v := NewViewpoint(center, 50)
	v.ReferenceBody = newFixedBody(r3.Vec{Z: 7})
	v.Azimuth = 30
	v.Elevation = 20

	obs := New(nil)
	v.PositionObserver(obs, 0)

	p := obs.Position()
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
		t.Fatalf("position is NaN")
	}
	if !scalar.EqualWithinAbs(r3.Norm(p), 50, 1e-9) {
		t.Fatalf("distance %v, want 50", r3.Norm(p))
	}
}

func TestUpDirectionString(t *testing.T) {
	if CenterNorth.String() != "CenterNorth" || EclipticSouth.String() != "EclipticSouth" {
		t.Fatalf("unexpected names %q %q", CenterNorth, EclipticSouth)
	}
}
