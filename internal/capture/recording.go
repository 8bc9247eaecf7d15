package capture

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/motion.report/internal/clip"
	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/scene"
)

// RecordedFrame is one snapshot of the just-written rig state, taken at the
// end of a tick while recording is active.
type RecordedFrame struct {
	Time      float64
	Rotations map[rig.Joint]quat.Number
	Root      *r3.Vec
}

// recording accumulates frames between StartRecording and StopRecording.
type recording struct {
	id       string
	start    float64
	started  bool
	lastTime float64
	frames   []RecordedFrame
}

// snapshot captures the rotations of every joint written this session, plus
// the root position when one is being driven. Called with the session lock
// held, on the tick path.
func (r *recording) snapshot(now float64, ri scene.RigInstance, written map[rig.Joint]bool, hasRoot bool) {
	if !r.started {
		r.start = now
		r.started = true
	}
	t := now - r.start
	if len(r.frames) > 0 && t <= r.lastTime {
		// Duplicate tick timestamp; clip times must strictly increase.
		return
	}
	r.lastTime = t

	f := RecordedFrame{Time: t, Rotations: make(map[rig.Joint]quat.Number, len(written))}
	for j := range written {
		f.Rotations[j] = ri.Rotation(j)
	}
	if hasRoot {
		p := ri.RootPosition()
		f.Root = &p
	}
	r.frames = append(r.frames, f)
}

// StartRecording begins accumulating frames. Only valid while Tracking.
func (s *Session) StartRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTracking {
		return ErrNotTracking
	}
	if s.rec != nil {
		return fmt.Errorf("recording %s already in progress", s.rec.id)
	}
	s.rec = &recording{id: uuid.NewString()}
	log.Printf("capture: session %s recording %s started", s.id, s.rec.id)
	return nil
}

// StopRecording converts the accumulated frames into a clip named by the
// recording ID, with tracks under the abstract joint-path convention.
func (s *Session) StopRecording() (clip.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return clip.Clip{}, ErrNotRecording
	}
	rec := s.rec
	s.rec = nil
	log.Printf("capture: session %s recording %s stopped (%d frames)", s.id, rec.id, len(rec.frames))
	return rec.toClip(), nil
}

// toClip flattens the frame sequence into per-joint quaternion tracks plus a
// root position track. Joints are emitted in topology order for stable
// output; a joint only contributes samples for frames where it had a value.
func (r *recording) toClip() clip.Clip {
	out := clip.Clip{Name: "recording-" + r.id}
	if len(r.frames) == 0 {
		return out
	}
	out.Duration = r.frames[len(r.frames)-1].Time

	for _, j := range rig.All() {
		var times, values []float64
		for _, f := range r.frames {
			q, ok := f.Rotations[j]
			if !ok {
				continue
			}
			times = append(times, f.Time)
			values = append(values, q.Imag, q.Jmag, q.Kmag, q.Real)
		}
		if len(times) == 0 {
			continue
		}
		out.Tracks = append(out.Tracks, clip.Track{
			Name:   rig.AbstractPath(j) + ".quaternion",
			Kind:   clip.KindQuaternion,
			Times:  times,
			Values: values,
		})
	}

	var rootTimes, rootValues []float64
	for _, f := range r.frames {
		if f.Root == nil {
			continue
		}
		rootTimes = append(rootTimes, f.Time)
		rootValues = append(rootValues, f.Root.X, f.Root.Y, f.Root.Z)
	}
	if len(rootTimes) > 0 {
		out.Tracks = append(out.Tracks, clip.Track{
			Name:   rig.AbstractPath(rig.Hips) + ".position",
			Kind:   clip.KindVector3,
			Times:  rootTimes,
			Values: rootValues,
		})
	}
	return out
}
