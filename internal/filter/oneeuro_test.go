package filter

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/motion.report/internal/rigmath"
)

func TestScalarFirstSamplePassesThrough(t *testing.T) {
	f := NewScalar(DefaultPosition())
	if got := f.Filter(3.7, 0.1); got != 3.7 {
		t.Errorf("first sample %v, expected 3.7", got)
	}
}

func TestScalarConvergesToConstant(t *testing.T) {
	f := NewScalar(Params{MinCutoff: 1.0, Beta: 0.5})
	f.Filter(0, 0)
	var out float64
	for i := 1; i <= 300; i++ {
		out = f.Filter(10, float64(i)/60)
	}
	if math.Abs(out-10) > 1e-3 {
		t.Errorf("after 5s of constant input got %v, expected ~10", out)
	}
}

func TestScalarOutputBetweenPreviousAndTarget(t *testing.T) {
	f := NewScalar(Params{MinCutoff: 1.0, Beta: 0.5})
	f.Filter(0, 0)
	prev := 0.0
	for i := 1; i <= 60; i++ {
		out := f.Filter(1, float64(i)/60)
		if out < prev || out > 1 {
			t.Fatalf("step %d: output %v left [%v, 1]", i, out, prev)
		}
		prev = out
	}
}

func TestScalarFasterMotionTracksCloser(t *testing.T) {
	// Feed the same ramp at two speeds; the faster one must lag less,
	// relative to its own target.
	run := func(slope float64) float64 {
		f := NewScalar(Params{MinCutoff: 1.0, Beta: 1.0})
		var out, target float64
		for i := 0; i <= 120; i++ {
			ts := float64(i) / 60
			target = slope * ts
			out = f.Filter(target, ts)
		}
		return (target - out) / slope // lag in seconds
	}
	if lagSlow, lagFast := run(1), run(50); lagFast >= lagSlow {
		t.Errorf("fast lag %v >= slow lag %v", lagFast, lagSlow)
	}
}

func TestScalarNonIncreasingTimestampStaysFinite(t *testing.T) {
	f := NewScalar(DefaultPosition())
	f.Filter(1, 1)
	out := f.Filter(2, 1) // same timestamp
	if math.IsNaN(out) || math.IsInf(out, 0) {
		t.Errorf("non-finite output %v", out)
	}
}

func TestVec3ConvergesToConstant(t *testing.T) {
	f := NewVec3(DefaultPosition())
	target := r3.Vec{X: 1, Y: -2, Z: 0.5}
	f.Filter(r3.Vec{}, 0)
	var out r3.Vec
	for i := 1; i <= 300; i++ {
		out = f.Filter(target, float64(i)/60)
	}
	if r3.Norm(r3.Sub(out, target)) > 1e-3 {
		t.Errorf("after 5s got %+v, expected ~%+v", out, target)
	}
}

func TestQuatFirstSamplePassesThrough(t *testing.T) {
	f := NewQuat(DefaultRotation())
	q := rigmath.FromEuler(rigmath.EulerDeg{X: 20, Y: -5})
	if got := f.Filter(q, 0); rigmath.AngleBetween(got, q) > 1e-12 {
		t.Errorf("first sample changed: %+v -> %+v", q, got)
	}
}

func TestQuatOutputStaysUnit(t *testing.T) {
	f := NewQuat(DefaultRotation())
	for i := 0; i <= 120; i++ {
		ts := float64(i) / 60
		q := rigmath.FromEuler(rigmath.EulerDeg{X: 40 * math.Sin(3*ts), Y: 25 * math.Cos(2*ts)})
		out := f.Filter(q, ts)
		if n := quat.Abs(out); math.Abs(n-1) > 1e-9 {
			t.Fatalf("step %d: norm %v", i, n)
		}
	}
}

func TestQuatConvergesToConstant(t *testing.T) {
	f := NewQuat(DefaultRotation())
	target := rigmath.FromEuler(rigmath.EulerDeg{Y: 70})
	f.Filter(rigmath.Identity(), 0)
	var out quat.Number
	for i := 1; i <= 300; i++ {
		out = f.Filter(target, float64(i)/60)
	}
	if rigmath.AngleBetween(out, target) > 1e-3 {
		t.Errorf("after 5s still %v rad from target", rigmath.AngleBetween(out, target))
	}
}

func TestQuatSmoothsJitter(t *testing.T) {
	// A noisy signal around a fixed rotation must come out with less spread
	// than it went in.
	f := NewQuat(DefaultRotation())
	center := rigmath.FromEuler(rigmath.EulerDeg{X: 30})
	var rawMax, outMax float64
	for i := 0; i <= 300; i++ {
		ts := float64(i) / 60
		noise := 4 * math.Sin(37*ts) // fast low-amplitude wobble
		q := rigmath.FromEuler(rigmath.EulerDeg{X: 30 + noise})
		out := f.Filter(q, ts)
		if i > 60 { // skip settling
			if d := rigmath.AngleBetween(q, center); d > rawMax {
				rawMax = d
			}
			if d := rigmath.AngleBetween(out, center); d > outMax {
				outMax = d
			}
		}
	}
	if outMax >= rawMax {
		t.Errorf("filtered spread %v >= raw spread %v", outMax, rawMax)
	}
}
