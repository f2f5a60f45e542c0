package core

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// GeneralEllipse is an arbitrary ellipse in 3D space: the set of points
//
//	Center + cos(θ) V0 + sin(θ) V1
//
// The generating vectors need not be orthogonal or of equal length.
type GeneralEllipse struct {
	Center r3.Vec
	V0     r3.Vec
	V1     r3.Vec
}

// NewGeneralEllipse creates an ellipse with the given center and generating
// vectors.
func NewGeneralEllipse(center, v0, v1 r3.Vec) GeneralEllipse {
	return GeneralEllipse{Center: center, V0: v0, V1: v1}
}

// UnitCircle returns the origin centred unit circle in the xy plane.
func UnitCircle() GeneralEllipse {
	return GeneralEllipse{V0: unitX, V1: unitY}
}

// PointAt returns the point of the ellipse at parameter theta.
func (e GeneralEllipse) PointAt(theta float64) r3.Vec {
	s, c := math.Sincos(theta)
	return r3.Add(e.Center, r3.Add(r3.Scale(c, e.V0), r3.Scale(s, e.V1)))
}

// PrincipalSemiAxes returns the two orthogonal semi-axis vectors of the
// ellipse. There is no ordering: either element may be the semi-major axis.
func (e GeneralEllipse) PrincipalSemiAxes() [2]r3.Vec {
	s00 := r3.Dot(e.V0, e.V0)
	s01 := r3.Dot(e.V0, e.V1)
	s11 := r3.Dot(e.V1, e.V1)
	gram := mat.NewSymDense(2, []float64{
		s00, s01,
		s01, s11,
	})

	var es mat.EigenSym
	if ok := es.Factorize(gram, true); !ok {
		return [2]r3.Vec{e.V0, e.V1}
	}
	var ev mat.Dense
	es.VectorsTo(&ev)

	return [2]r3.Vec{
		r3.Add(r3.Scale(ev.At(0, 0), e.V0), r3.Scale(ev.At(1, 0), e.V1)),
		r3.Add(r3.Scale(ev.At(0, 1), e.V0), r3.Scale(ev.At(1, 1), e.V1)),
	}
}
