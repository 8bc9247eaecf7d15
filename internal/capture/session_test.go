package capture

import (
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/rigmath"
	"github.com/banshee-data/motion.report/internal/scene"
)

func startSession(t *testing.T, opts Options) (*Session, *scene.MemoryRig, *scene.FakeScheduler) {
	t.Helper()
	r := scene.NewMemoryRig()
	sched := scene.NewFakeScheduler()
	s := NewSession(r, rig.DefaultStats(), opts)
	if err := s.Start(sched); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s, r, sched
}

func bodyFrame(j rig.Joint, e rigmath.EulerDeg) EstimateFrame {
	return EstimateFrame{
		Category:  CategoryBody,
		Rotations: map[rig.Joint]quat.Number{j: rigmath.FromEuler(e)},
	}
}

func TestSubmitDoesNotTouchRig(t *testing.T) {
	s, r, _ := startSession(t, DefaultOptions())
	defer s.Stop()

	s.Submit(bodyFrame(rig.Head, rigmath.EulerDeg{Y: 30}))
	if got := r.Rotation(rig.Head); got != rigmath.Identity() {
		t.Errorf("rig changed before tick: %+v", got)
	}
}

func TestTickAppliesFilteredTarget(t *testing.T) {
	s, r, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	target := rigmath.FromEuler(rigmath.EulerDeg{Y: 30})
	s.Submit(bodyFrame(rig.Head, rigmath.EulerDeg{Y: 30}))
	sched.Step(0.0)

	// First sample initialises the filter channel and passes through.
	if got := r.Rotation(rig.Head); rigmath.AngleBetween(got, target) > 1e-9 {
		t.Errorf("first tick wrote %+v, expected target", got)
	}
}

func TestTickKeepsFilteringHeldTarget(t *testing.T) {
	s, r, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	s.Submit(bodyFrame(rig.Head, rigmath.EulerDeg{}))
	sched.Step(0.0)
	s.Submit(bodyFrame(rig.Head, rigmath.EulerDeg{Y: 60}))
	sched.Step(1.0 / 60)

	after := r.Rotation(rig.Head)
	target := rigmath.FromEuler(rigmath.EulerDeg{Y: 60})
	if rigmath.AngleBetween(after, target) < 1e-6 {
		t.Fatal("second sample was not smoothed at all")
	}

	// No new estimates: the held target keeps converging tick over tick.
	for i := 2; i <= 240; i++ {
		sched.Step(float64(i) / 60)
	}
	if d := rigmath.AngleBetween(r.Rotation(rig.Head), target); d > 1e-3 {
		t.Errorf("held target did not converge, still %v rad away", d)
	}
}

func TestLatestEstimateWinsBetweenTicks(t *testing.T) {
	s, r, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	s.Submit(bodyFrame(rig.Head, rigmath.EulerDeg{Y: 10}))
	s.Submit(bodyFrame(rig.Head, rigmath.EulerDeg{Y: 50}))
	sched.Step(0.0)

	want := rigmath.FromEuler(rigmath.EulerDeg{Y: 50})
	if got := r.Rotation(rig.Head); rigmath.AngleBetween(got, want) > 1e-9 {
		t.Errorf("got %+v, expected the later estimate", got)
	}
}

func TestStopDiscardsLateFrames(t *testing.T) {
	s, r, sched := startSession(t, DefaultOptions())

	s.Submit(bodyFrame(rig.Head, rigmath.EulerDeg{Y: 30}))
	sched.Step(0.0)
	s.Stop()

	// An estimator callback still in flight after Stop must be a no-op.
	s.Submit(bodyFrame(rig.Head, rigmath.EulerDeg{Y: -80}))
	s.Tick(1.0)
	want := rigmath.FromEuler(rigmath.EulerDeg{Y: 30})
	if got := r.Rotation(rig.Head); rigmath.AngleBetween(got, want) > 1e-9 {
		t.Errorf("stopped session still wrote to the rig: %+v", got)
	}
	if s.State() != StateIdle {
		t.Errorf("state %q, expected idle", s.State())
	}
}

func TestStartTwiceFails(t *testing.T) {
	s, _, sched := startSession(t, DefaultOptions())
	defer s.Stop()
	if err := s.Start(sched); err == nil {
		t.Error("expected error starting a tracking session")
	}
}

func TestCalibrationYieldsIdentityAtRest(t *testing.T) {
	s, r, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	rest := rigmath.EulerDeg{X: 5, Y: -12, Z: 3} // estimator's idea of "at rest"
	s.Calibrate(CategoryBody)
	s.Submit(bodyFrame(rig.Head, rest))
	sched.Step(0.0)

	// The calibration frame itself, offset-removed, is identity.
	if got := r.Rotation(rig.Head); rigmath.AngleBetween(got, rigmath.Identity()) > 1e-9 {
		t.Errorf("calibration frame produced %+v, expected identity", got)
	}

	// Subsequent identical frames stay at identity.
	s.Submit(bodyFrame(rig.Head, rest))
	sched.Step(1.0 / 60)
	if got := r.Rotation(rig.Head); rigmath.AngleBetween(got, rigmath.Identity()) > 1e-6 {
		t.Errorf("rest frame after calibration produced %+v", got)
	}
}

func TestCalibrationRootReference(t *testing.T) {
	s, r, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	root := r3.Vec{X: 0.2, Y: 1.5, Z: -0.1}
	f := bodyFrame(rig.Hips, rigmath.EulerDeg{})
	f.RootPosition = &root

	s.Calibrate(CategoryBody)
	s.Submit(f)
	sched.Step(0.0)

	// Offset-removed root is zero, re-grounded at the bind height.
	got := r.RootPosition()
	want := r3.Vec{Y: r.BindRootHeight()}
	if r3.Norm(r3.Sub(got, want)) > 1e-9 {
		t.Errorf("root %+v, expected %+v", got, want)
	}
}

func TestClearCalibration(t *testing.T) {
	s, r, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	rest := rigmath.EulerDeg{Y: 40}
	s.Calibrate(CategoryBody)
	s.Submit(bodyFrame(rig.Head, rest))
	sched.Step(0.0)
	s.ClearCalibration()

	s.Submit(bodyFrame(rig.Head, rest))
	for i := 1; i <= 240; i++ {
		sched.Step(float64(i) / 60)
	}
	want := rigmath.FromEuler(rest)
	if d := rigmath.AngleBetween(r.Rotation(rig.Head), want); d > 1e-3 {
		t.Errorf("after clearing calibration rotation is %v rad from raw target", d)
	}
}

func TestUpperBodyModeIgnoresLegsAndHips(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeUpperBody
	s, r, sched := startSession(t, opts)
	defer s.Stop()

	f := EstimateFrame{
		Category: CategoryBody,
		Rotations: map[rig.Joint]quat.Number{
			rig.Hips:         rigmath.FromEuler(rigmath.EulerDeg{Y: 45}),
			rig.LeftUpperLeg: rigmath.FromEuler(rigmath.EulerDeg{X: 30}),
			rig.LeftUpperArm: rigmath.FromEuler(rigmath.EulerDeg{Z: 20}),
		},
	}
	for i := 0; i < 100; i++ {
		s.Submit(f)
		sched.Step(float64(i) / 60)
	}

	if got := r.Rotation(rig.Hips); got != rigmath.Identity() {
		t.Errorf("hips moved in upper-body mode: %+v", got)
	}
	if got := r.Rotation(rig.LeftUpperLeg); got != rigmath.Identity() {
		t.Errorf("leg moved in upper-body mode: %+v", got)
	}
	if got := r.Rotation(rig.LeftUpperArm); got == rigmath.Identity() {
		t.Error("arm did not move in upper-body mode")
	}
}

func TestUpperBodyFollowWeightsDecreaseDownSpine(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeUpperBody
	s, r, sched := startSession(t, opts)
	defer s.Stop()

	f := EstimateFrame{
		Category:  CategoryFace,
		Rotations: map[rig.Joint]quat.Number{rig.Head: rigmath.FromEuler(rigmath.EulerDeg{Y: 60})},
	}
	for i := 0; i < 300; i++ {
		s.Submit(f)
		sched.Step(float64(i) / 60)
	}

	head := r.Rotation(rig.Head)
	ident := rigmath.Identity()
	angles := make(map[rig.Joint]float64)
	for _, j := range []rig.Joint{rig.Neck, rig.UpperChest, rig.Chest, rig.Spine} {
		angles[j] = rigmath.AngleBetween(ident, r.Rotation(j))
	}

	headAngle := rigmath.AngleBetween(ident, head)
	if angles[rig.Neck] <= 0 || angles[rig.Neck] >= headAngle {
		t.Errorf("neck follow %v outside (0, head %v)", angles[rig.Neck], headAngle)
	}
	if !(angles[rig.Neck] > angles[rig.UpperChest] &&
		angles[rig.UpperChest] > angles[rig.Chest] &&
		angles[rig.Chest] > angles[rig.Spine]) {
		t.Errorf("follow weights not decreasing down the spine: %v", angles)
	}
	if angles[rig.Spine] <= 0 {
		t.Error("spine got no sympathetic follow")
	}
}

func TestCategoryRoutingDropsForeignJoints(t *testing.T) {
	s, r, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	// A face frame may not drive the arm, even if the estimator claims to
	// know its rotation.
	f := EstimateFrame{
		Category: CategoryFace,
		Rotations: map[rig.Joint]quat.Number{
			rig.Head:          rigmath.FromEuler(rigmath.EulerDeg{Y: 30}),
			rig.RightUpperArm: rigmath.FromEuler(rigmath.EulerDeg{Z: -60}),
		},
	}
	s.Submit(f)
	sched.Step(0.0)

	if got := r.Rotation(rig.RightUpperArm); got != rigmath.Identity() {
		t.Errorf("face frame drove the arm: %+v", got)
	}
	if got := r.Rotation(rig.Head); got == rigmath.Identity() {
		t.Error("face frame did not drive the head")
	}
}

func TestSubmitClampsToLimits(t *testing.T) {
	s, r, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	// 120 degrees of neck yaw is outside the measured envelope.
	s.Submit(bodyFrame(rig.Neck, rigmath.EulerDeg{Y: 120}))
	sched.Step(0.0)

	e := rigmath.ToEuler(r.Rotation(rig.Neck))
	if e.Y > 50+1e-6 {
		t.Errorf("neck yaw %v, expected clamp at 50", e.Y)
	}
}

func TestBindRigResetsState(t *testing.T) {
	s, r1, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	s.Calibrate(CategoryBody)
	s.Submit(bodyFrame(rig.Head, rigmath.EulerDeg{Y: 30}))
	sched.Step(0.0)

	r2 := scene.NewMemoryRig()
	s.BindRig(r2)

	// Calibration was discarded with the rebind: the old offset no longer
	// cancels this rotation.
	s.Submit(bodyFrame(rig.Head, rigmath.EulerDeg{Y: 30}))
	sched.Step(1.0 / 60)

	want := rigmath.FromEuler(rigmath.EulerDeg{Y: 30})
	if got := r2.Rotation(rig.Head); rigmath.AngleBetween(got, want) > 1e-9 {
		t.Errorf("rebind kept stale calibration: %+v", got)
	}
	// The old rig is no longer written.
	if got := r1.Rotation(rig.Head); rigmath.AngleBetween(got, rigmath.Identity()) > 1e-9 {
		t.Errorf("old rig written after rebind: %+v", got)
	}
}
