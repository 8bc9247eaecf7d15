// Package rigmath provides the small set of rotation math helpers shared by the
// synthesiser, the filters and the live capture pipeline.
//
// Rotations cross package boundaries as unit quaternions (gonum quat.Number).
// Euler angles appear only at the edges: authored joint limits are expressed in
// degrees per local axis, and the limit clamp operates in that space. The Euler
// convention is intrinsic X-Y-Z, matching the scene graph the clips are
// ultimately applied to.
package rigmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// EulerDeg is a local-space rotation in degrees about the X, Y and Z axes,
// applied intrinsically in that order.
type EulerDeg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Identity returns the identity rotation.
func Identity() quat.Number {
	return quat.Number{Real: 1}
}

// FromEuler converts an intrinsic X-Y-Z Euler rotation in degrees to a unit
// quaternion.
func FromEuler(e EulerDeg) quat.Number {
	hx := e.X * math.Pi / 360
	hy := e.Y * math.Pi / 360
	hz := e.Z * math.Pi / 360

	sx, cx := math.Sincos(hx)
	sy, cy := math.Sincos(hy)
	sz, cz := math.Sincos(hz)

	return quat.Number{
		Real: cx*cy*cz - sx*sy*sz,
		Imag: sx*cy*cz + cx*sy*sz,
		Jmag: cx*sy*cz - sx*cy*sz,
		Kmag: cx*cy*sz + sx*sy*cz,
	}
}

// ToEuler converts a unit quaternion to intrinsic X-Y-Z Euler degrees.
// At the gimbal singularity (|m13| ~ 1) Z is folded into X.
func ToEuler(q quat.Number) EulerDeg {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	m11 := 1 - 2*(y*y+z*z)
	m12 := 2 * (x*y - w*z)
	m13 := 2 * (x*z + w*y)
	m22 := 1 - 2*(x*x+z*z)
	m23 := 2 * (y*z - w*x)
	m32 := 2 * (y*z + w*x)
	m33 := 1 - 2*(x*x+y*y)

	var e EulerDeg
	sy := clampUnit(m13)
	e.Y = math.Asin(sy) * 180 / math.Pi
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33) * 180 / math.Pi
		e.Z = math.Atan2(-m12, m11) * 180 / math.Pi
	} else {
		e.X = math.Atan2(m32, m22) * 180 / math.Pi
		e.Z = 0
	}
	return e
}

// Normalize scales q to unit norm. A degenerate zero quaternion normalises to
// identity rather than NaN.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return Identity()
	}
	return quat.Scale(1/n, q)
}

// Dot returns the four-component dot product of two quaternions.
func Dot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// Slerp spherically interpolates from a to b by t along the shortest arc,
// returning a unit quaternion. t outside [0,1] is clamped.
func Slerp(a, b quat.Number, t float64) quat.Number {
	if t <= 0 {
		return Normalize(a)
	}
	if t >= 1 {
		return Normalize(b)
	}

	d := Dot(a, b)
	// Take the short way round the hypersphere.
	if d < 0 {
		b = quat.Scale(-1, b)
		d = -d
	}

	// Nearly parallel: fall back to nlerp to avoid a vanishing sin term.
	if d > 0.9995 {
		out := quat.Add(quat.Scale(1-t, a), quat.Scale(t, b))
		return Normalize(out)
	}

	theta := math.Acos(clampUnit(d))
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta
	return Normalize(quat.Add(quat.Scale(wa, a), quat.Scale(wb, b)))
}

// AngleBetween returns the rotation angle in radians separating two unit
// quaternions.
func AngleBetween(a, b quat.Number) float64 {
	d := math.Abs(Dot(a, b))
	return 2 * math.Acos(clampUnit(d))
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
