// Package scene declares the narrow interfaces this core consumes from the
// rendering/scene-graph collaborator, plus in-memory fakes used by tests.
// The real implementations live in the surrounding application.
package scene

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/motion.report/internal/rig"
)

// RigInstance is a concrete instantiated skeleton with resolvable scene-space
// joint transforms. All methods are called from the tick thread only.
type RigInstance interface {
	// NodePath resolves a joint to the scene path of its node on this
	// instance. ok=false when the model has no node for the joint.
	NodePath(j rig.Joint) (path string, ok bool)

	// Rotation and SetRotation access the joint's local rotation.
	Rotation(j rig.Joint) quat.Number
	SetRotation(j rig.Joint, q quat.Number)

	// RootPosition and SetRootPosition access the root (hips) local position.
	RootPosition() r3.Vec
	SetRootPosition(p r3.Vec)

	// BindRootHeight is the authored rest height of the root above the ground
	// plane, used to re-ground filtered root positions.
	BindRootHeight() float64
}

// TickScheduler registers per-frame callbacks with the render loop. Higher
// priorities run first within a tick; capture/synthesis register above any
// downstream camera or compositing consumers.
type TickScheduler interface {
	// RegisterTick adds fn to the per-frame pass and returns a cancel
	// function that unregisters it.
	RegisterTick(priority int, fn func(now float64)) (cancel func())
}

// Tick priorities used by this module's registrations.
const (
	PriorityCapture  = 100
	PriorityPlayback = 90
)
