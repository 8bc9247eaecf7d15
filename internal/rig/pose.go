package rig

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/motion.report/internal/rigmath"
)

// Pose is a value snapshot of the skeleton: a local rotation per joint and,
// for the root only, a local position. Producers and consumers never share a
// mutable Pose; copy with Clone before handing one across a boundary.
type Pose struct {
	Rotations    map[Joint]rigmath.EulerDeg
	RootPosition r3.Vec
}

// NewPose returns an empty pose (all joints implicitly at rest).
func NewPose() Pose {
	return Pose{Rotations: make(map[Joint]rigmath.EulerDeg)}
}

// Rotation returns the joint's rotation, or the rest rotation if unset.
func (p Pose) Rotation(j Joint) rigmath.EulerDeg {
	return p.Rotations[j]
}

// Clone returns a deep copy.
func (p Pose) Clone() Pose {
	out := Pose{
		Rotations:    make(map[Joint]rigmath.EulerDeg, len(p.Rotations)),
		RootPosition: p.RootPosition,
	}
	for j, e := range p.Rotations {
		out.Rotations[j] = e
	}
	return out
}
