package rig

import (
	"testing"

	"github.com/banshee-data/motion.report/internal/rigmath"
)

func TestAllTopologyOrder(t *testing.T) {
	seen := make(map[Joint]bool)
	for _, j := range All() {
		if p, ok := Parent(j); ok && !seen[p] {
			t.Errorf("joint %q appears before its parent %q", j, p)
		}
		seen[j] = true
	}
	if len(seen) != 54 {
		t.Errorf("expected 54 joints, got %d", len(seen))
	}
}

func TestKnown(t *testing.T) {
	if !Known(Hips) {
		t.Error("hips should be known")
	}
	if !Known(RightLittleDistal) {
		t.Error("rightLittleDistal should be known")
	}
	if Known("tail") {
		t.Error("tail should not be known")
	}
}

func TestSide(t *testing.T) {
	tests := []struct {
		j    Joint
		want Side
	}{
		{Hips, SideCenter},
		{Head, SideCenter},
		{LeftUpperArm, SideLeft},
		{RightFoot, SideRight},
		{LeftThumbDistal, SideLeft},
	}
	for _, tt := range tests {
		if got := tt.j.Side(); got != tt.want {
			t.Errorf("%q side = %v, expected %v", tt.j, got, tt.want)
		}
	}
}

func TestFingerIndex(t *testing.T) {
	tests := []struct {
		j               Joint
		finger, segment int
	}{
		{LeftThumbProximal, 0, 0},
		{RightIndexIntermediate, 1, 1},
		{LeftMiddleDistal, 2, 2},
		{RightLittleProximal, 4, 0},
	}
	for _, tt := range tests {
		finger, segment, ok := tt.j.FingerIndex()
		if !ok || finger != tt.finger || segment != tt.segment {
			t.Errorf("%q: got (%d,%d,%v), expected (%d,%d,true)",
				tt.j, finger, segment, ok, tt.finger, tt.segment)
		}
	}
	if _, _, ok := LeftHand.FingerIndex(); ok {
		t.Error("leftHand is not a finger")
	}
}

func TestAbstractPath(t *testing.T) {
	tests := []struct {
		j    Joint
		want string
	}{
		{Hips, "hips"},
		{Chest, "hips/spine/chest"},
		{RightHand, "hips/spine/chest/upperChest/rightShoulder/rightUpperArm/rightLowerArm/rightHand"},
	}
	for _, tt := range tests {
		if got := AbstractPath(tt.j); got != tt.want {
			t.Errorf("AbstractPath(%q) = %q, expected %q", tt.j, got, tt.want)
		}
	}
}

func TestLimitKey(t *testing.T) {
	tests := []struct {
		j    Joint
		want string
	}{
		{Hips, "hips"},
		{UpperChest, "upperChest"},
		{LeftUpperArm, "upperArm"},
		{RightUpperArm, "upperArm"},
		{LeftThumbProximal, "thumbProximal"},
		{RightIndexDistal, "fingerDistal"},
		{LeftRingIntermediate, "fingerIntermediate"},
	}
	for _, tt := range tests {
		if got := LimitKey(tt.j); got != tt.want {
			t.Errorf("LimitKey(%q) = %q, expected %q", tt.j, got, tt.want)
		}
	}
}

func TestDefaultStatsCoverage(t *testing.T) {
	s := DefaultStats()
	for _, j := range All() {
		lim, ok := s.LimitsFor(j)
		if !ok {
			t.Errorf("no limits for %q", j)
			continue
		}
		for _, r := range []Range{lim.X, lim.Y, lim.Z} {
			if r.Min > r.Max {
				t.Errorf("%q: inverted range %+v", j, r)
			}
		}
		if _, ok := s.DynamicsFor(j); !ok {
			t.Errorf("no dynamics for %q", j)
		}
	}
}

func TestMirroredJointsShareProfiles(t *testing.T) {
	s := DefaultStats()
	left, _ := s.LimitsFor(LeftLowerArm)
	right, _ := s.LimitsFor(RightLowerArm)
	if left != right {
		t.Errorf("mirrored lowerArm limits differ: %+v vs %+v", left, right)
	}
}

func TestLimitClamp(t *testing.T) {
	s := DefaultStats()
	lim, _ := s.LimitsFor(LeftLowerLeg)

	e := lim.Clamp(rigmath.EulerDeg{X: 200, Y: 0, Z: -50})
	if e.X != 140 {
		t.Errorf("X clamped to %v, expected 140", e.X)
	}
	if e.Z != -8 {
		t.Errorf("Z clamped to %v, expected -8", e.Z)
	}

	in := rigmath.EulerDeg{X: 45, Y: 3, Z: 1}
	if got := lim.Clamp(in); got != in {
		t.Errorf("in-range value changed: %+v -> %+v", in, got)
	}
}

func TestLagForComposition(t *testing.T) {
	s := DefaultStats()
	p := s.Propagation()

	if got := s.LagFor(Hips); got != 0 {
		t.Errorf("root lag %v, expected 0", got)
	}
	if got, want := s.LagFor(Head), p.HipsToChest+p.ChestToHead; got != want {
		t.Errorf("head lag %v, expected %v", got, want)
	}
	if got, want := s.LagFor(RightHand), p.HipsToChest+p.ShoulderToHand; got != want {
		t.Errorf("hand lag %v, expected %v", got, want)
	}
	// Lag grows monotonically along the arm chain.
	chain := []Joint{RightShoulder, RightUpperArm, RightLowerArm, RightHand, RightIndexProximal}
	for i := 1; i < len(chain); i++ {
		if s.LagFor(chain[i]) <= s.LagFor(chain[i-1]) {
			t.Errorf("lag not increasing from %q to %q", chain[i-1], chain[i])
		}
	}
}

func TestCorrelationFor(t *testing.T) {
	s := DefaultStats()
	if got := s.CorrelationFor(CorrHipsLeg); got >= 0 {
		t.Errorf("hips-leg correlation %v, expected negative", got)
	}
	if got := s.CorrelationFor(CorrelationPair(99)); got != 1 {
		t.Errorf("unknown pair correlation %v, expected 1", got)
	}
}

func TestPoseClone(t *testing.T) {
	p := NewPose()
	c := p.Clone()
	c.Rotations[Head] = rigmath.EulerDeg{Y: 30}
	if p.Rotation(Head) != (rigmath.EulerDeg{}) {
		t.Error("mutating a clone leaked into the original")
	}
}
