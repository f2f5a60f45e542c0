package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/model"
)

// Plane is the set of points x with Normal·x + Offset = 0. Normal is a unit
// vector.
type Plane struct {
	Normal r3.Vec
	Offset float64
}

// NewPlane returns the plane through point with the given normal direction.
func NewPlane(normal, point r3.Vec) Plane {
	n := normalizeOrZero(normal)
	return Plane{Normal: n, Offset: -r3.Dot(n, point)}
}

// SignedDistance returns the signed distance of x from the plane.
func (p Plane) SignedDistance(x r3.Vec) float64 {
	return r3.Dot(p.Normal, x) + p.Offset
}

// AlignedEllipsoid is an ellipsoid whose principal axes are aligned with the
// coordinate axes.
type AlignedEllipsoid struct {
	SemiAxes r3.Vec
}

// NewAlignedEllipsoid creates an ellipsoid with semi-axes a, b and c along x,
// y and z.
func NewAlignedEllipsoid(a, b, c float64) AlignedEllipsoid {
	return AlignedEllipsoid{SemiAxes: r3.Vec{X: a, Y: b, Z: c}}
}

// IsDegenerate reports whether any semi-axis is not positive.
func (e AlignedEllipsoid) IsDegenerate() bool {
	return e.SemiAxes.X <= 0 || e.SemiAxes.Y <= 0 || e.SemiAxes.Z <= 0
}

// Normal returns the unit surface normal at a point v on the ellipsoid.
func (e AlignedEllipsoid) Normal(v r3.Vec) r3.Vec {
	return normalizeOrZero(e.gradient(v))
}

// ContainsPoint reports whether v lies inside or on the ellipsoid.
func (e AlignedEllipsoid) ContainsPoint(v r3.Vec) bool {
	s := e.toUnitSphere(v)
	return r3.Dot(s, s) <= 1
}

// Intersection returns the ellipse in which plane cuts the ellipsoid. The
// second result is false when there is no intersection; a tangent plane also
// counts as no intersection.
func (e AlignedEllipsoid) Intersection(plane Plane) (GeneralEllipse, bool) {
	// Substituting x = diag(a,b,c)·s turns the ellipsoid into the unit sphere
	// and the plane into (diag(a,b,c)·n)·s + d = 0.
	n := e.fromUnitSphere(plane.Normal)
	nLen := r3.Norm(n)
	if nLen == 0 {
		return UnitCircle(), false
	}
	normal := r3.Scale(1/nLen, n)
	offset := plane.Offset / nLen

	if offset*offset >= 1 {
		return UnitCircle(), false
	}

	r := math.Sqrt(1 - offset*offset)
	center := r3.Scale(-offset, normal)
	u := UnitOrthogonal(normal)
	w := r3.Cross(normal, u)

	return GeneralEllipse{
		Center: e.fromUnitSphere(center),
		V0:     e.fromUnitSphere(r3.Scale(r, u)),
		V1:     e.fromUnitSphere(r3.Scale(r, w)),
	}, true
}

// Limb returns the silhouette of the ellipsoid as seen from the external
// point p. The limb lies in the polar plane of p. The result is undefined
// (the unit circle) when p is inside the ellipsoid.
func (e AlignedEllipsoid) Limb(p r3.Vec) GeneralEllipse {
	n := e.gradient(p)
	m := r3.Norm(n)
	if m == 0 {
		return UnitCircle()
	}
	limb, _ := e.Intersection(Plane{Normal: r3.Scale(1/m, n), Offset: -1 / m})
	return limb
}

// PlanetographicToRectangular converts planetographic latitude, longitude and
// height into a body-fixed rectangular position.
func (e AlignedEllipsoid) PlanetographicToRectangular(coord model.PlanetographicCoord) r3.Vec {
	sinLat, cosLat := math.Sincos(coord.Latitude)
	sinLon, cosLon := math.Sincos(coord.Longitude)
	n := r3.Vec{X: cosLat * cosLon, Y: cosLat * sinLon, Z: sinLat}

	sq := e.squaredAxes()
	k := r3.Vec{X: sq.X * n.X, Y: sq.Y * n.Y, Z: sq.Z * n.Z}
	surface := r3.Scale(1/math.Sqrt(r3.Dot(n, k)), k)

	return r3.Add(surface, r3.Scale(coord.Height, n))
}

// RectangularToPlanetographic is the inverse of PlanetographicToRectangular.
//
// The surface foot point is foot_i = a_i² v_i / (a_i² + t), where t is the
// root of F(t) = Σ (a_i v_i / (a_i² + t))² - 1. F is convex and decreasing
// for t > -min(a_i²), so Newton's method started where F >= 0 converges
// monotonically. The body center has no defined normal and maps to latitude
// 0, longitude 0. Points deep inside a flattened body, on the plane of its
// shortest axis, have no root right of the pole and are projected radially.
func (e AlignedEllipsoid) RectangularToPlanetographic(v r3.Vec) model.PlanetographicCoord {
	const maxIterations = 100

	sq := e.squaredAxes()
	if isZeroVec(v) {
		return model.PlanetographicCoord{Height: -math.Min(e.SemiAxes.X, math.Min(e.SemiAxes.Y, e.SemiAxes.Z))}
	}

	axes := [3]float64{e.SemiAxes.X, e.SemiAxes.Y, e.SemiAxes.Z}
	a2 := [3]float64{sq.X, sq.Y, sq.Z}
	p := [3]float64{v.X, v.Y, v.Z}

	m := 0
	for i := 1; i < 3; i++ {
		if a2[i] < a2[m] {
			m = i
		}
	}
	pole := -a2[m]

	inside := e.ContainsPoint(v)
	if inside && p[m] == 0 && !rootRightOfPole(axes, a2, p, m) {
		return e.radialPlanetographic(v)
	}

	var t float64
	if inside && p[m] != 0 {
		// Inside: start right of the largest pole, where F >= 1.
		t = pole + axes[m]*math.Abs(p[m])
	}

	for i := 0; i < maxIterations; i++ {
		var f, df float64
		for k := 0; k < 3; k++ {
			d := a2[k] + t
			q := axes[k] * p[k] / d
			f += q * q
			df -= 2 * q * q / d
		}
		f -= 1
		if df == 0 {
			break
		}
		step := f / df
		prev := t
		t -= step
		if t <= pole {
			t = (prev + pole) / 2
		}
		if math.Abs(step) <= 1e-15*(math.Abs(t)+a2[0]) {
			break
		}
	}

	foot := r3.Vec{
		X: a2[0] * p[0] / (a2[0] + t),
		Y: a2[1] * p[1] / (a2[1] + t),
		Z: a2[2] * p[2] / (a2[2] + t),
	}
	n := e.Normal(foot)
	h := r3.Dot(r3.Sub(v, foot), n)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return e.radialPlanetographic(v)
	}
	return planetographicFromNormal(n, h)
}

// rootRightOfPole reports whether F has a root right of the pole -a_m² when
// v_m is zero. F then stays finite at the pole and a point deep inside the
// body can have F < 0 there.
func rootRightOfPole(axes, a2, p [3]float64, m int) bool {
	f := -1.0
	for k := 0; k < 3; k++ {
		if a2[k] == a2[m] {
			if p[k] != 0 {
				return true
			}
			continue
		}
		q := axes[k] * p[k] / (a2[k] - a2[m])
		f += q * q
	}
	return f > 0
}

// radialPlanetographic projects v onto the surface along the ray from the
// body center. It stands in for the normal projection where the latter
// has no unique foot point, deep inside a flattened body.
func (e AlignedEllipsoid) radialPlanetographic(v r3.Vec) model.PlanetographicCoord {
	foot := r3.Scale(1/r3.Norm(e.toUnitSphere(v)), v)
	return planetographicFromNormal(e.Normal(foot), r3.Norm(v)-r3.Norm(foot))
}

func planetographicFromNormal(n r3.Vec, height float64) model.PlanetographicCoord {
	return model.PlanetographicCoord{
		Latitude:  math.Asin(math.Max(-1, math.Min(1, n.Z))),
		Longitude: math.Atan2(n.Y, n.X),
		Height:    height,
	}
}

func (e AlignedEllipsoid) gradient(v r3.Vec) r3.Vec {
	sq := e.squaredAxes()
	return r3.Vec{X: v.X / sq.X, Y: v.Y / sq.Y, Z: v.Z / sq.Z}
}

func (e AlignedEllipsoid) squaredAxes() r3.Vec {
	a := e.SemiAxes
	return r3.Vec{X: a.X * a.X, Y: a.Y * a.Y, Z: a.Z * a.Z}
}

func (e AlignedEllipsoid) toUnitSphere(v r3.Vec) r3.Vec {
	a := e.SemiAxes
	return r3.Vec{X: v.X / a.X, Y: v.Y / a.Y, Z: v.Z / a.Z}
}

func (e AlignedEllipsoid) fromUnitSphere(v r3.Vec) r3.Vec {
	a := e.SemiAxes
	return r3.Vec{X: v.X * a.X, Y: v.Y * a.Y, Z: v.Z * a.Z}
}
