// Package capture converts streaming joint-rotation estimates from an
// external pose/face/hand estimator into smoothed, constrained, bone-local
// rotations applied to a rig once per render tick.
//
// The estimator pushes frames at its own cadence via Submit; only pending
// target state is touched on that path. All rig mutation happens in Tick,
// which the render loop drives. The two paths are serialised by the session
// mutex, and a liveness flag discards estimator callbacks that arrive after
// Stop, so a stale in-flight frame can never write into a torn-down session.
package capture

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/motion.report/internal/filter"
	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/rigmath"
	"github.com/banshee-data/motion.report/internal/scene"
)

// Mode selects which part of the skeleton a session drives.
type Mode int

const (
	// ModeFullBody writes every joint the estimator reports.
	ModeFullBody Mode = iota
	// ModeUpperBody restricts writes to the upper-body allow-list and layers
	// sympathetic spine follow from the head rotation.
	ModeUpperBody
)

// State is the session lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateTracking State = "tracking"
)

// FollowWeights are the sympathetic-follow fractions applied in upper-body
// mode: each joint slerps from identity toward the filtered head rotation.
// Weights decrease moving down the spine.
type FollowWeights struct {
	Neck       float64
	UpperChest float64
	Chest      float64
	Spine      float64
}

// DefaultFollowWeights returns the tuned follow fractions.
func DefaultFollowWeights() FollowWeights {
	return FollowWeights{Neck: 0.55, UpperChest: 0.35, Chest: 0.22, Spine: 0.12}
}

// Options configures a session.
type Options struct {
	Mode           Mode
	RotationFilter filter.Params
	PositionFilter filter.Params
	Follow         FollowWeights
}

// DefaultOptions returns full-body options with tuned filter parameters.
func DefaultOptions() Options {
	return Options{
		Mode:           ModeFullBody,
		RotationFilter: filter.DefaultRotation(),
		PositionFilter: filter.DefaultPosition(),
		Follow:         DefaultFollowWeights(),
	}
}

var (
	// ErrNotTracking is returned for operations that require an active session.
	ErrNotTracking = errors.New("session is not tracking")
	// ErrNotRecording is returned by StopRecording when none is active.
	ErrNotRecording = errors.New("no recording in progress")
)

// Session is one live capture-to-rig session. All exported methods are safe
// for concurrent use; the estimator callback and the render tick may arrive
// on different goroutines.
type Session struct {
	id    string
	stats *rig.Stats
	opts  Options

	mu         sync.Mutex
	rig        scene.RigInstance
	state      State
	live       bool
	cancelTick func()

	// Pending targets written by Submit, consumed by Tick. Latest wins.
	pending     map[rig.Joint]quat.Number
	pendingRoot *r3.Vec

	// Calibration state.
	calibPending map[Category]bool
	calibOffset  map[rig.Joint]quat.Number
	calibRootRef *r3.Vec

	// Per-channel filter state, created lazily on first sample.
	filters    map[rig.Joint]*filter.Quat
	rootFilter *filter.Vec3

	// Joints written at least once this session; recording snapshots these.
	written map[rig.Joint]bool

	rec *recording
}

// NewSession creates an idle session bound to a rig instance.
func NewSession(r scene.RigInstance, stats *rig.Stats, opts Options) *Session {
	s := &Session{
		id:    uuid.NewString(),
		stats: stats,
		opts:  opts,
		rig:   r,
		state: StateIdle,
	}
	s.resetLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Recording reports whether frames are being accumulated.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec != nil
}

// resetLocked discards filters, calibration and pending targets together.
// A partial reset leaves stale filter history behind and pops visibly on the
// next frame, so the three maps are always rebuilt as a unit.
func (s *Session) resetLocked() {
	s.pending = make(map[rig.Joint]quat.Number)
	s.pendingRoot = nil
	s.calibPending = make(map[Category]bool)
	s.calibOffset = make(map[rig.Joint]quat.Number)
	s.calibRootRef = nil
	s.filters = make(map[rig.Joint]*filter.Quat)
	s.rootFilter = nil
	s.written = make(map[rig.Joint]bool)
}

// Start moves the session to Tracking and registers its tick pass with the
// scheduler, above downstream camera/compositing consumers.
func (s *Session) Start(sched scene.TickScheduler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateTracking {
		return fmt.Errorf("session %s already tracking", s.id)
	}
	s.state = StateTracking
	s.live = true
	s.cancelTick = sched.RegisterTick(scene.PriorityCapture, s.Tick)
	log.Printf("capture: session %s tracking (mode=%d)", s.id, s.opts.Mode)
	return nil
}

// Stop synchronously halts further writes: the tick registration is
// cancelled, pending targets and filter channels are released, and any
// estimator callback still in flight is discarded by the liveness flag.
// An active recording is abandoned.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTracking {
		return
	}
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
	s.live = false
	s.state = StateIdle
	s.rec = nil
	s.resetLocked()
	log.Printf("capture: session %s stopped", s.id)
}

// BindRig atomically rebinds the session to a new rig instance. Filter
// state, calibration offsets and pending targets are discarded together;
// carrying any of them across rig instances causes a visible snap.
func (s *Session) BindRig(r scene.RigInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rig = r
	s.resetLocked()
}

// Calibrate requests that the next frame of the given category be captured
// as the calibration reference. The capture happens before offset removal on
// that same frame, so the calibration frame itself is not distorted.
func (s *Session) Calibrate(cat Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calibPending[cat] = true
}

// ClearCalibration removes all captured calibration offsets.
func (s *Session) ClearCalibration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calibPending = make(map[Category]bool)
	s.calibOffset = make(map[rig.Joint]quat.Number)
	s.calibRootRef = nil
}

// Submit accepts one estimator frame. It only stages pending targets; the
// rig is untouched until the next Tick. Frames arriving on a stopped
// session are discarded.
func (s *Session) Submit(f EstimateFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}

	d := decodeFrame(f)
	if len(d.rotations) == 0 && d.rootPos == nil {
		// Estimator reported nothing usable; previous targets keep being
		// filtered, freezing in place rather than snapping to rest.
		return
	}

	// Pending calibration captures the raw values of this frame before the
	// offsets below are applied.
	if s.calibPending[f.Category] {
		for j, raw := range d.rotations {
			s.calibOffset[j] = rigmath.Normalize(raw)
		}
		if d.rootPos != nil {
			p := *d.rootPos
			s.calibRootRef = &p
		}
		delete(s.calibPending, f.Category)
	}

	for j, raw := range d.rotations {
		target := rigmath.Normalize(raw)
		if off, ok := s.calibOffset[j]; ok {
			target = rigmath.Normalize(quat.Mul(target, quat.Inv(off)))
		}
		// Same biomechanical clamp as the synthesiser.
		if lim, ok := s.stats.LimitsFor(j); ok {
			target = rigmath.FromEuler(lim.Clamp(rigmath.ToEuler(target)))
		}
		s.pending[j] = target
	}

	if d.rootPos != nil {
		target := *d.rootPos
		if s.calibRootRef != nil {
			target = r3.Sub(target, *s.calibRootRef)
		}
		s.pendingRoot = &target
	}
}

// Tick runs one render-tick pass: every pending target is filtered with the
// tick timestamp and written onto the rig. Multiple estimates between ticks
// collapse to the most recent; ticks with no fresh estimate keep filtering
// the held target.
func (s *Session) Tick(now float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}

	for j, target := range s.pending {
		if s.opts.Mode == ModeUpperBody && !upperBodyAllowList[j] {
			continue
		}
		f, ok := s.filters[j]
		if !ok {
			f = filter.NewQuat(s.opts.RotationFilter)
			s.filters[j] = f
		}
		s.rig.SetRotation(j, f.Filter(target, now))
		s.written[j] = true
	}

	if s.opts.Mode == ModeUpperBody {
		s.applyFollowLocked()
	}

	if s.pendingRoot != nil {
		if s.rootFilter == nil {
			s.rootFilter = filter.NewVec3(s.opts.PositionFilter)
		}
		p := s.rootFilter.Filter(*s.pendingRoot, now)
		// Re-ground on the rig's authored rest height.
		p.Y += s.rig.BindRootHeight()
		s.rig.SetRootPosition(p)
	}

	if s.rec != nil {
		s.rec.snapshot(now, s.rig, s.written, s.pendingRoot != nil)
	}
}

// applyFollowLocked layers sympathetic upper-body follow: neck, upper chest,
// chest and spine each slerp between identity and the already-filtered head
// rotation. Only the reduced mode does this; full-body mode gets its torso
// rotation from the estimator directly.
func (s *Session) applyFollowLocked() {
	if !s.written[rig.Head] {
		return
	}
	head := s.rig.Rotation(rig.Head)
	ident := rigmath.Identity()
	for _, fw := range []struct {
		j rig.Joint
		w float64
	}{
		{rig.Neck, s.opts.Follow.Neck},
		{rig.UpperChest, s.opts.Follow.UpperChest},
		{rig.Chest, s.opts.Follow.Chest},
		{rig.Spine, s.opts.Follow.Spine},
	} {
		if fw.w <= 0 {
			continue
		}
		s.rig.SetRotation(fw.j, rigmath.Slerp(ident, head, fw.w))
		s.written[fw.j] = true
	}
}
