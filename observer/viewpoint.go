package observer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
)

// UpDirection selects the vector used as "up" when placing the observer.
type UpDirection int

const (
	CenterNorth   UpDirection = iota // center body's +z axis
	CenterSouth                      // center body's -z axis
	EclipticNorth                    // J2000 ecliptic +z
	EclipticSouth                    // J2000 ecliptic -z
)

func (u UpDirection) String() string {
	switch u {
	case CenterSouth:
		return "CenterSouth"
	case EclipticNorth:
		return "EclipticNorth"
	case EclipticSouth:
		return "EclipticSouth"
	default:
		return "CenterNorth"
	}
}

// Viewpoint is a stored camera placement: at Distance from CenterBody, in the
// direction of ReferenceBody, rotated by Azimuth and Elevation (degrees).
type Viewpoint struct {
	Name          string
	CenterBody    Body
	ReferenceBody Body
	Distance      float64
	Azimuth       float64
	Elevation     float64
	Up            UpDirection
}

// NewViewpoint creates a viewpoint centered on center. The reference body
// must be set before the viewpoint can place an observer.
func NewViewpoint(center Body, distance float64) *Viewpoint {
	return &Viewpoint{CenterBody: center, Distance: distance, Up: CenterNorth}
}

func (v *Viewpoint) upVector(t float64) r3.Vec {
	switch v.Up {
	case EclipticNorth:
		return core.Rotate(core.EclipticJ2000().Orientation(t), r3.Vec{Z: 1})
	case EclipticSouth:
		return core.Rotate(core.EclipticJ2000().Orientation(t), r3.Vec{Z: -1})
	case CenterSouth:
		return core.Rotate(v.CenterBody.Orientation(t), r3.Vec{Z: -1})
	default:
		return core.Rotate(v.CenterBody.Orientation(t), r3.Vec{Z: 1})
	}
}

// PositionObserver places obs at the viewpoint for time t (seconds past
// J2000), looking at the center body. It does nothing when either body is
// missing or the two bodies coincide.
func (v *Viewpoint) PositionObserver(obs *Observer, t float64) {
	if v.CenterBody == nil || v.ReferenceBody == nil {
		return
	}

	toRef := r3.Sub(v.ReferenceBody.Position(t), v.CenterBody.Position(t))
	if r3.Norm(toRef) == 0 {
		return
	}
	toRefDir := r3.Unit(toRef)
	up := v.upVector(t)

	// w is up made perpendicular to the reference direction.
	lateral := r3.Cross(toRefDir, up)
	if r3.Norm(lateral) == 0 {
		lateral = core.UnitOrthogonal(toRefDir)
	}
	lateral = r3.Unit(lateral)
	w := r3.Cross(lateral, toRefDir)
	u := r3.Cross(toRefDir, w)

	azimuth := core.AxisAngle(w, v.Azimuth*math.Pi/180)
	elevation := core.AxisAngle(u, v.Elevation*math.Pi/180)
	position := core.Rotate(azimuth, core.Rotate(elevation, r3.Scale(v.Distance, toRefDir)))

	obs.SetCenter(v.CenterBody)
	obs.SetPositionFrame(core.ICRF())
	obs.SetPointingFrame(core.ICRF())
	obs.SetPosition(position)
	obs.SetOrientation(core.LookRotation(position, r3.Vec{}, up))
}
