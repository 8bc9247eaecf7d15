package capture

import (
	"errors"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/motion.report/internal/clip"
	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/rigmath"
)

func TestRecordingLifecycle(t *testing.T) {
	s, _, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	if _, err := s.StopRecording(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("got %v, expected ErrNotRecording", err)
	}
	if err := s.StartRecording(); err != nil {
		t.Fatalf("start recording: %v", err)
	}
	if err := s.StartRecording(); err == nil {
		t.Error("expected error starting a second recording")
	}
	if !s.Recording() {
		t.Error("Recording() = false while recording")
	}

	sched.Step(0.0)
	if _, err := s.StopRecording(); err != nil {
		t.Errorf("stop recording: %v", err)
	}
	if s.Recording() {
		t.Error("Recording() = true after stop")
	}
}

func TestRecordingRequiresTracking(t *testing.T) {
	s := NewSession(nil, rig.DefaultStats(), DefaultOptions())
	if err := s.StartRecording(); !errors.Is(err, ErrNotTracking) {
		t.Errorf("got %v, expected ErrNotTracking", err)
	}
}

func TestRecordingProducesValidClip(t *testing.T) {
	s, _, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	if err := s.StartRecording(); err != nil {
		t.Fatalf("start recording: %v", err)
	}

	root := r3.Vec{Y: 1.0}
	for i := 0; i < 30; i++ {
		f := bodyFrame(rig.Head, rigmath.EulerDeg{Y: float64(i)})
		f.RootPosition = &root
		s.Submit(f)
		sched.Step(float64(i) / 30)
	}

	c, err := s.StopRecording()
	if err != nil {
		t.Fatalf("stop recording: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("recorded clip invalid: %v", err)
	}
	if !strings.HasPrefix(c.Name, "recording-") {
		t.Errorf("clip name %q", c.Name)
	}

	head, ok := c.TrackByName(rig.AbstractPath(rig.Head) + ".quaternion")
	if !ok {
		t.Fatal("no head track")
	}
	if head.SampleCount() != 30 {
		t.Errorf("head track has %d samples, expected 30", head.SampleCount())
	}
	if head.Times[0] != 0 {
		t.Errorf("first sample at %v, expected recording-relative 0", head.Times[0])
	}

	pos, ok := c.TrackByName(rig.AbstractPath(rig.Hips) + ".position")
	if !ok {
		t.Fatal("no root position track")
	}
	if pos.Kind != clip.KindVector3 {
		t.Errorf("root track kind %q", pos.Kind)
	}

	// Only driven joints get tracks; the legs never moved.
	if _, ok := c.TrackByName(rig.AbstractPath(rig.LeftFoot) + ".quaternion"); ok {
		t.Error("undriven joint has a track")
	}
}

func TestRecordingSkipsDuplicateTimestamps(t *testing.T) {
	s, _, sched := startSession(t, DefaultOptions())
	defer s.Stop()

	if err := s.StartRecording(); err != nil {
		t.Fatalf("start recording: %v", err)
	}
	s.Submit(bodyFrame(rig.Head, rigmath.EulerDeg{Y: 10}))
	sched.Step(0.0)
	sched.Step(0.5)
	sched.Step(0.5) // duplicate tick time must not corrupt the clip
	sched.Step(1.0)

	c, err := s.StopRecording()
	if err != nil {
		t.Fatalf("stop recording: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("clip invalid after duplicate tick: %v", err)
	}
	head, _ := c.TrackByName(rig.AbstractPath(rig.Head) + ".quaternion")
	if head.SampleCount() != 3 {
		t.Errorf("%d samples, expected 3", head.SampleCount())
	}
}

func TestEmptyRecording(t *testing.T) {
	s, _, _ := startSession(t, DefaultOptions())
	defer s.Stop()

	if err := s.StartRecording(); err != nil {
		t.Fatalf("start recording: %v", err)
	}
	c, err := s.StopRecording()
	if err != nil {
		t.Fatalf("stop recording: %v", err)
	}
	if len(c.Tracks) != 0 || c.Duration != 0 {
		t.Errorf("empty recording produced %d tracks, duration %v", len(c.Tracks), c.Duration)
	}
}
