package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// EarthEquatorialRadiusKm and EarthPolarRadiusKm are the IAU 2015 radii used
// for the default Earth reference ellipsoid.
const (
	EarthEquatorialRadiusKm = 6378.1366
	EarthPolarRadiusKm      = 6356.7519
)

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }

func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// isZeroVec reports whether every component of v is negligible.
func isZeroVec(v r3.Vec) bool {
	return math.Abs(v.X) <= zeroPrecision && math.Abs(v.Y) <= zeroPrecision && math.Abs(v.Z) <= zeroPrecision
}

// normalizeOrZero returns the unit vector along v, or the zero vector when v
// has no length.
func normalizeOrZero(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// HasLineOfSight checks whether the straight segment between p1 and p2
// misses the ellipsoid. Both points are in the ellipsoid's body-fixed frame.
// The test is done in unit-sphere space, where the ellipsoid becomes the
// unit sphere.
func HasLineOfSight(p1, p2 r3.Vec, e AlignedEllipsoid) bool {
	s1 := e.toUnitSphere(p1)
	s2 := e.toUnitSphere(p2)

	v := r3.Sub(s2, s1)
	a := r3.Dot(v, v)
	if a == 0 {
		// Degenerate case: same point. Outside the body counts as visible.
		return r3.Dot(s1, s1) > 1
	}

	// t* minimises |s1 + t v|^2 over t ∈ ℝ.
	t := -r3.Dot(s1, v) / a
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := r3.Add(s1, r3.Scale(t, v))
	return r3.Dot(closest, closest) > 1
}

// ElevationDegrees returns the elevation angle of target as seen from
// observer, in degrees, with the local zenith taken as the ellipsoid normal
// through the observer. 0° = geometric horizon, 90° = overhead.
func ElevationDegrees(observer, target r3.Vec, e AlignedEllipsoid) float64 {
	v := r3.Sub(target, observer)
	vNorm := r3.Norm(v)
	if vNorm == 0 {
		return 90
	}

	zenith := e.Normal(observer)
	if isZeroVec(zenith) {
		return 90
	}

	cosGamma := r3.Dot(v, zenith) / vNorm
	if cosGamma > 1 {
		cosGamma = 1
	} else if cosGamma < -1 {
		cosGamma = -1
	}
	gammaDeg := radToDeg(math.Acos(cosGamma))

	return 90.0 - gammaDeg
}
