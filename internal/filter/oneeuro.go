// Package filter implements adaptive one-pole low-pass filters for scalars,
// 3-vectors and unit quaternions.
//
// All three variants share the same law: the effective cutoff frequency rises
// with the estimated signal speed, so fast motion is tracked with low lag
// while slow motion is smoothed hard. One filter instance owns the state for
// one logical channel; the first sample initialises the channel and is
// returned unchanged.
//
// Timestamps fed to a channel must strictly increase. A non-increasing
// timestamp is a programmer error; the elapsed time is clamped to a small
// epsilon so the arithmetic stays finite, but the output for that call is
// unspecified.
package filter

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/motion.report/internal/rigmath"
)

// Params configures the adaptive cutoff law.
type Params struct {
	// MinCutoff is the cutoff frequency (Hz) applied when the signal is at
	// rest. Lower values smooth more and lag more.
	MinCutoff float64
	// Beta scales how quickly the cutoff rises with signal speed.
	Beta float64
}

// DefaultRotation are the tuned parameters for joint rotation channels.
func DefaultRotation() Params { return Params{MinCutoff: 1.2, Beta: 0.6} }

// DefaultPosition are the tuned parameters for the root position channel.
func DefaultPosition() Params { return Params{MinCutoff: 1.0, Beta: 0.4} }

// derivCutoff is the fixed cutoff used to smooth the derivative estimate
// before it drives the adaptive law.
const derivCutoff = 1.0

// minDT guards against non-increasing timestamps (see package doc).
const minDT = 1e-6

func smoothingAlpha(cutoff, dt float64) float64 {
	tau := 1 / (2 * math.Pi * cutoff)
	return 1 / (1 + tau/dt)
}

// Scalar filters a one-dimensional signal.
type Scalar struct {
	p Params

	initialized bool
	lastRaw     float64
	lastOut     float64
	lastDeriv   float64
	lastTime    float64
}

// NewScalar returns a scalar filter with the given parameters.
func NewScalar(p Params) *Scalar { return &Scalar{p: p} }

// Filter smooths one sample taken at t seconds.
func (f *Scalar) Filter(x, t float64) float64 {
	if !f.initialized {
		f.initialized = true
		f.lastRaw, f.lastOut, f.lastTime = x, x, t
		return x
	}

	dt := t - f.lastTime
	if dt < minDT {
		dt = minDT
	}
	f.lastTime = t

	deriv := (x - f.lastRaw) / dt
	f.lastRaw = x
	ad := smoothingAlpha(derivCutoff, dt)
	f.lastDeriv += ad * (deriv - f.lastDeriv)

	cutoff := f.p.MinCutoff + f.p.Beta*math.Abs(f.lastDeriv)
	a := smoothingAlpha(cutoff, dt)
	f.lastOut += a * (x - f.lastOut)
	return f.lastOut
}

// Vec3 filters a 3-vector signal. A single adaptive cutoff derived from the
// vector derivative norm is applied to all three components, keeping the axes
// phase-coherent.
type Vec3 struct {
	p Params

	initialized bool
	lastRaw     r3.Vec
	lastOut     r3.Vec
	lastDeriv   float64
	lastTime    float64
}

// NewVec3 returns a 3-vector filter with the given parameters.
func NewVec3(p Params) *Vec3 { return &Vec3{p: p} }

// Filter smooths one sample taken at t seconds.
func (f *Vec3) Filter(v r3.Vec, t float64) r3.Vec {
	if !f.initialized {
		f.initialized = true
		f.lastRaw, f.lastOut, f.lastTime = v, v, t
		return v
	}

	dt := t - f.lastTime
	if dt < minDT {
		dt = minDT
	}
	f.lastTime = t

	speed := r3.Norm(r3.Sub(v, f.lastRaw)) / dt
	f.lastRaw = v
	ad := smoothingAlpha(derivCutoff, dt)
	f.lastDeriv += ad * (speed - f.lastDeriv)

	cutoff := f.p.MinCutoff + f.p.Beta*math.Abs(f.lastDeriv)
	a := smoothingAlpha(cutoff, dt)
	f.lastOut = r3.Add(f.lastOut, r3.Scale(a, r3.Sub(v, f.lastOut)))
	return f.lastOut
}

// Quat filters a unit-quaternion signal. The derivative is estimated as
// angular speed between successive samples, and the smoothing step is a
// spherical interpolation toward the new sample, so the output is a valid
// unit quaternion at every step. Filtering the four components independently
// would not guarantee that.
type Quat struct {
	p Params

	initialized bool
	lastRaw     quat.Number
	lastOut     quat.Number
	lastDeriv   float64
	lastTime    float64
}

// NewQuat returns a quaternion filter with the given parameters.
func NewQuat(p Params) *Quat { return &Quat{p: p} }

// Filter smooths one sample taken at t seconds.
func (f *Quat) Filter(q quat.Number, t float64) quat.Number {
	q = rigmath.Normalize(q)
	if !f.initialized {
		f.initialized = true
		f.lastRaw, f.lastOut, f.lastTime = q, q, t
		return q
	}

	dt := t - f.lastTime
	if dt < minDT {
		dt = minDT
	}
	f.lastTime = t

	speed := rigmath.AngleBetween(f.lastRaw, q) / dt
	f.lastRaw = q
	ad := smoothingAlpha(derivCutoff, dt)
	f.lastDeriv += ad * (speed - f.lastDeriv)

	cutoff := f.p.MinCutoff + f.p.Beta*math.Abs(f.lastDeriv)
	a := smoothingAlpha(cutoff, dt)
	f.lastOut = rigmath.Slerp(f.lastOut, q, a)
	return f.lastOut
}
