package core

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// zeroPrecision matches the tolerance used to decide a vector is "zero" in
// look-direction and frame construction.
const zeroPrecision = 1e-12

var (
	unitX = r3.Vec{X: 1}
	unitY = r3.Vec{Y: 1}
	unitZ = r3.Vec{Z: 1}
)

// MatrixFromColumns builds a matrix whose columns are x, y and z.
func MatrixFromColumns(x, y, z r3.Vec) *r3.Mat {
	return r3.NewMat([]float64{
		x.X, y.X, z.X,
		x.Y, y.Y, z.Y,
		x.Z, y.Z, z.Z,
	})
}

// MatrixFromQuat returns the rotation matrix of the unit quaternion q.
func MatrixFromQuat(q quat.Number) *r3.Mat {
	return r3.Rotation(q).Mat()
}

// Identity returns the identity rotation.
func Identity() quat.Number {
	return quat.Number{Real: 1}
}

// AxisAngle returns the rotation of angle radians about axis. A zero axis
// yields the identity.
func AxisAngle(axis r3.Vec, angle float64) quat.Number {
	if isZeroVec(axis) {
		return Identity()
	}
	return quat.Number(r3.NewRotation(angle, axis))
}

// Rotate applies the unit quaternion q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// Normalize scales q to unit length. The zero quaternion becomes the identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return Identity()
	}
	return quat.Scale(1/n, q)
}

// Slerp interpolates between unit quaternions q0 (t=0) and q1 (t=1) along the
// shorter arc.
func Slerp(q0, q1 quat.Number, t float64) quat.Number {
	const one = 1.0 - 1e-15
	d := q0.Real*q1.Real + q0.Imag*q1.Imag + q0.Jmag*q1.Jmag + q0.Kmag*q1.Kmag
	absD := math.Abs(d)

	var scale0, scale1 float64
	if absD >= one {
		scale0 = 1.0 - t
		scale1 = t
	} else {
		theta := math.Acos(absD)
		sinTheta := math.Sin(theta)
		scale0 = math.Sin((1.0-t)*theta) / sinTheta
		scale1 = math.Sin(t*theta) / sinTheta
	}
	if d < 0 {
		scale1 = -scale1
	}
	return quat.Add(quat.Scale(scale0, q0), quat.Scale(scale1, q1))
}

// QuatFromMatrix converts the rotation matrix m (3x3) to a unit quaternion.
func QuatFromMatrix(m mat.Matrix) quat.Number {
	trace := m.At(0, 0) + m.At(1, 1) + m.At(2, 2)
	if trace > 0 {
		s := math.Sqrt(trace + 1.0)
		w := 0.5 * s
		s = 0.5 / s
		return quat.Number{
			Real: w,
			Imag: (m.At(2, 1) - m.At(1, 2)) * s,
			Jmag: (m.At(0, 2) - m.At(2, 0)) * s,
			Kmag: (m.At(1, 0) - m.At(0, 1)) * s,
		}
	}

	i := 0
	if m.At(1, 1) > m.At(0, 0) {
		i = 1
	}
	if m.At(2, 2) > m.At(i, i) {
		i = 2
	}
	j := (i + 1) % 3
	k := (j + 1) % 3

	var v [3]float64
	s := math.Sqrt(m.At(i, i) - m.At(j, j) - m.At(k, k) + 1.0)
	v[i] = 0.5 * s
	s = 0.5 / s
	w := (m.At(k, j) - m.At(j, k)) * s
	v[j] = (m.At(j, i) + m.At(i, j)) * s
	v[k] = (m.At(k, i) + m.At(i, k)) * s
	return quat.Number{Real: w, Imag: v[0], Jmag: v[1], Kmag: v[2]}
}

// UnitOrthogonal returns some unit vector orthogonal to v.
func UnitOrthogonal(v r3.Vec) r3.Vec {
	if !(math.Abs(v.X) <= zeroPrecision*math.Abs(v.Z) && math.Abs(v.Y) <= zeroPrecision*math.Abs(v.Z)) {
		inv := 1.0 / math.Hypot(v.X, v.Y)
		return r3.Vec{X: -v.Y * inv, Y: v.X * inv}
	}
	inv := 1.0 / math.Hypot(v.Y, v.Z)
	return r3.Vec{Y: -v.Z * inv, Z: v.Y * inv}
}

// LookRotation returns the orientation of an observer at eye looking toward
// target, with the local y-axis as close to up as possible. The observer looks
// along its local -z axis.
//
// A zero look direction gives the identity. When up is parallel to the look
// direction an arbitrary axis orthogonal to it is used instead.
func LookRotation(eye, target, up r3.Vec) quat.Number {
	lookDir := r3.Sub(target, eye)
	if isZeroVec(lookDir) {
		return Identity()
	}

	zAxis := r3.Scale(-1, r3.Unit(lookDir))

	xAxis := r3.Cross(up, zAxis)
	if isZeroVec(xAxis) {
		xAxis = r3.Cross(zAxis, UnitOrthogonal(zAxis))
	}
	xAxis = r3.Unit(xAxis)
	yAxis := r3.Cross(zAxis, xAxis)

	return QuatFromMatrix(MatrixFromColumns(xAxis, yAxis, zAxis))
}
