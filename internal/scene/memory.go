package scene

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/rigmath"
)

// MemoryRig is an in-memory RigInstance covering the full humanoid joint set.
// Node paths follow the common exporter layout: "Armature/Hips/Spine/...".
// Joints can be removed to model incomplete rigs.
type MemoryRig struct {
	rotations map[rig.Joint]quat.Number
	rootPos   r3.Vec
	height    float64
	missing   map[rig.Joint]bool
}

// NewMemoryRig returns a rig with every joint present and at rest.
func NewMemoryRig() *MemoryRig {
	return &MemoryRig{
		rotations: make(map[rig.Joint]quat.Number),
		height:    0.95,
		missing:   make(map[rig.Joint]bool),
	}
}

// RemoveJoint makes the rig report no node for the joint.
func (f *MemoryRig) RemoveJoint(j rig.Joint) { f.missing[j] = true }

// SetBindRootHeight overrides the authored root rest height.
func (f *MemoryRig) SetBindRootHeight(h float64) { f.height = h }

func (f *MemoryRig) NodePath(j rig.Joint) (string, bool) {
	if f.missing[j] || !rig.Known(j) {
		return "", false
	}
	segs := []string{rig.NodeName(j)}
	for cur := j; ; {
		p, ok := rig.Parent(cur)
		if !ok {
			break
		}
		segs = append(segs, rig.NodeName(p))
		cur = p
	}
	// Reverse into root-first order under the armature node.
	for i, k := 0, len(segs)-1; i < k; i, k = i+1, k-1 {
		segs[i], segs[k] = segs[k], segs[i]
	}
	return "Armature/" + strings.Join(segs, "/"), true
}

func (f *MemoryRig) Rotation(j rig.Joint) quat.Number {
	if q, ok := f.rotations[j]; ok {
		return q
	}
	return rigmath.Identity()
}

func (f *MemoryRig) SetRotation(j rig.Joint, q quat.Number) { f.rotations[j] = q }

func (f *MemoryRig) RootPosition() r3.Vec     { return f.rootPos }
func (f *MemoryRig) SetRootPosition(p r3.Vec) { f.rootPos = p }
func (f *MemoryRig) BindRootHeight() float64  { return f.height }

// FakeScheduler runs registered callbacks synchronously when Step is called,
// in descending priority order.
type FakeScheduler struct {
	entries []tickEntry
	nextID  int
}

type tickEntry struct {
	id       int
	priority int
	fn       func(now float64)
}

// NewFakeScheduler returns an empty scheduler.
func NewFakeScheduler() *FakeScheduler { return &FakeScheduler{} }

func (s *FakeScheduler) RegisterTick(priority int, fn func(now float64)) func() {
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, tickEntry{id: id, priority: priority, fn: fn})
	sort.SliceStable(s.entries, func(i, k int) bool {
		return s.entries[i].priority > s.entries[k].priority
	})
	return func() {
		for i, e := range s.entries {
			if e.id == id {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				return
			}
		}
	}
}

// Step runs one tick at the given time.
func (s *FakeScheduler) Step(now float64) {
	for _, e := range s.entries {
		e.fn(now)
	}
}
