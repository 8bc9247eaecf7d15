// Package rig describes the normalised humanoid skeleton: the joint taxonomy,
// its hierarchy, and the measured statistics (angular limits, speeds,
// propagation delays and cross-joint correlations) that both the procedural
// synthesiser and the live capture pipeline read.
//
// The data here is loaded once and read-only for the process lifetime.
// Lookups never fail: a joint without measured statistics gets a documented
// default (no clamp, zero lag, unit correlation) rather than an error.
package rig

import "strings"

// Joint is a stable identifier for one node of the humanoid skeleton. The
// names follow the standard humanoid naming used by the avatar format the
// rigs are authored in (camelCase, side prefix for mirrored joints).
type Joint string

// Core chain.
const (
	Hips       Joint = "hips"
	Spine      Joint = "spine"
	Chest      Joint = "chest"
	UpperChest Joint = "upperChest"
	Neck       Joint = "neck"
	Head       Joint = "head"
)

// Arms.
const (
	LeftShoulder  Joint = "leftShoulder"
	LeftUpperArm  Joint = "leftUpperArm"
	LeftLowerArm  Joint = "leftLowerArm"
	LeftHand      Joint = "leftHand"
	RightShoulder Joint = "rightShoulder"
	RightUpperArm Joint = "rightUpperArm"
	RightLowerArm Joint = "rightLowerArm"
	RightHand     Joint = "rightHand"
)

// Legs.
const (
	LeftUpperLeg  Joint = "leftUpperLeg"
	LeftLowerLeg  Joint = "leftLowerLeg"
	LeftFoot      Joint = "leftFoot"
	LeftToes      Joint = "leftToes"
	RightUpperLeg Joint = "rightUpperLeg"
	RightLowerLeg Joint = "rightLowerLeg"
	RightFoot     Joint = "rightFoot"
	RightToes     Joint = "rightToes"
)

// Fingers. Segment order within a finger is proximal, intermediate, distal.
const (
	LeftThumbProximal       Joint = "leftThumbProximal"
	LeftThumbIntermediate   Joint = "leftThumbIntermediate"
	LeftThumbDistal         Joint = "leftThumbDistal"
	LeftIndexProximal       Joint = "leftIndexProximal"
	LeftIndexIntermediate   Joint = "leftIndexIntermediate"
	LeftIndexDistal         Joint = "leftIndexDistal"
	LeftMiddleProximal      Joint = "leftMiddleProximal"
	LeftMiddleIntermediate  Joint = "leftMiddleIntermediate"
	LeftMiddleDistal        Joint = "leftMiddleDistal"
	LeftRingProximal        Joint = "leftRingProximal"
	LeftRingIntermediate    Joint = "leftRingIntermediate"
	LeftRingDistal          Joint = "leftRingDistal"
	LeftLittleProximal      Joint = "leftLittleProximal"
	LeftLittleIntermediate  Joint = "leftLittleIntermediate"
	LeftLittleDistal        Joint = "leftLittleDistal"
	RightThumbProximal      Joint = "rightThumbProximal"
	RightThumbIntermediate  Joint = "rightThumbIntermediate"
	RightThumbDistal        Joint = "rightThumbDistal"
	RightIndexProximal      Joint = "rightIndexProximal"
	RightIndexIntermediate  Joint = "rightIndexIntermediate"
	RightIndexDistal        Joint = "rightIndexDistal"
	RightMiddleProximal     Joint = "rightMiddleProximal"
	RightMiddleIntermediate Joint = "rightMiddleIntermediate"
	RightMiddleDistal       Joint = "rightMiddleDistal"
	RightRingProximal       Joint = "rightRingProximal"
	RightRingIntermediate   Joint = "rightRingIntermediate"
	RightRingDistal         Joint = "rightRingDistal"
	RightLittleProximal     Joint = "rightLittleProximal"
	RightLittleIntermediate Joint = "rightLittleIntermediate"
	RightLittleDistal       Joint = "rightLittleDistal"
)

// Side identifies which half of the body a mirrored joint belongs to.
type Side int

const (
	SideCenter Side = iota
	SideLeft
	SideRight
)

// parents maps every joint to its parent. Hips is the root and has no entry.
var parents = map[Joint]Joint{
	Spine:      Hips,
	Chest:      Spine,
	UpperChest: Chest,
	Neck:       UpperChest,
	Head:       Neck,

	LeftShoulder:  UpperChest,
	LeftUpperArm:  LeftShoulder,
	LeftLowerArm:  LeftUpperArm,
	LeftHand:      LeftLowerArm,
	RightShoulder: UpperChest,
	RightUpperArm: RightShoulder,
	RightLowerArm: RightUpperArm,
	RightHand:     RightLowerArm,

	LeftUpperLeg:  Hips,
	LeftLowerLeg:  LeftUpperLeg,
	LeftFoot:      LeftLowerLeg,
	LeftToes:      LeftFoot,
	RightUpperLeg: Hips,
	RightLowerLeg: RightUpperLeg,
	RightFoot:     RightLowerLeg,
	RightToes:     RightFoot,

	LeftThumbProximal:       LeftHand,
	LeftThumbIntermediate:   LeftThumbProximal,
	LeftThumbDistal:         LeftThumbIntermediate,
	LeftIndexProximal:       LeftHand,
	LeftIndexIntermediate:   LeftIndexProximal,
	LeftIndexDistal:         LeftIndexIntermediate,
	LeftMiddleProximal:      LeftHand,
	LeftMiddleIntermediate:  LeftMiddleProximal,
	LeftMiddleDistal:        LeftMiddleIntermediate,
	LeftRingProximal:        LeftHand,
	LeftRingIntermediate:    LeftRingProximal,
	LeftRingDistal:          LeftRingIntermediate,
	LeftLittleProximal:      LeftHand,
	LeftLittleIntermediate:  LeftLittleProximal,
	LeftLittleDistal:        LeftLittleIntermediate,
	RightThumbProximal:      RightHand,
	RightThumbIntermediate:  RightThumbProximal,
	RightThumbDistal:        RightThumbIntermediate,
	RightIndexProximal:      RightHand,
	RightIndexIntermediate:  RightIndexProximal,
	RightIndexDistal:        RightIndexIntermediate,
	RightMiddleProximal:     RightHand,
	RightMiddleIntermediate: RightMiddleProximal,
	RightMiddleDistal:       RightMiddleIntermediate,
	RightRingProximal:       RightHand,
	RightRingIntermediate:   RightRingProximal,
	RightRingDistal:         RightRingIntermediate,
	RightLittleProximal:     RightHand,
	RightLittleIntermediate: RightLittleProximal,
	RightLittleDistal:       RightLittleIntermediate,
}

// allJoints is the stable iteration order: root first, then each chain from
// the torso outward. Synthesis iterates this slice so output track order is
// deterministic.
var allJoints = []Joint{
	Hips, Spine, Chest, UpperChest, Neck, Head,
	LeftShoulder, LeftUpperArm, LeftLowerArm, LeftHand,
	RightShoulder, RightUpperArm, RightLowerArm, RightHand,
	LeftUpperLeg, LeftLowerLeg, LeftFoot, LeftToes,
	RightUpperLeg, RightLowerLeg, RightFoot, RightToes,
	LeftThumbProximal, LeftThumbIntermediate, LeftThumbDistal,
	LeftIndexProximal, LeftIndexIntermediate, LeftIndexDistal,
	LeftMiddleProximal, LeftMiddleIntermediate, LeftMiddleDistal,
	LeftRingProximal, LeftRingIntermediate, LeftRingDistal,
	LeftLittleProximal, LeftLittleIntermediate, LeftLittleDistal,
	RightThumbProximal, RightThumbIntermediate, RightThumbDistal,
	RightIndexProximal, RightIndexIntermediate, RightIndexDistal,
	RightMiddleProximal, RightMiddleIntermediate, RightMiddleDistal,
	RightRingProximal, RightRingIntermediate, RightRingDistal,
	RightLittleProximal, RightLittleIntermediate, RightLittleDistal,
}

// All returns every joint in stable topology order (parents before children).
// Callers must not mutate the returned slice.
func All() []Joint {
	return allJoints
}

// Known reports whether j names a joint in the taxonomy.
func Known(j Joint) bool {
	if j == Hips {
		return true
	}
	_, ok := parents[j]
	return ok
}

// Parent returns the parent joint. The root (hips) reports ok=false.
func Parent(j Joint) (Joint, bool) {
	p, ok := parents[j]
	return p, ok
}

// Side returns which half of the body the joint belongs to.
func (j Joint) Side() Side {
	s := string(j)
	switch {
	case strings.HasPrefix(s, "left"):
		return SideLeft
	case strings.HasPrefix(s, "right"):
		return SideRight
	default:
		return SideCenter
	}
}

var fingerNames = []string{"Thumb", "Index", "Middle", "Ring", "Little"}

// IsFinger reports whether the joint is a finger segment.
func (j Joint) IsFinger() bool {
	_, _, ok := j.fingerParts()
	return ok
}

// FingerIndex returns the finger ordinal (0=thumb .. 4=little) and the
// segment ordinal within the finger (0=proximal .. 2=distal).
func (j Joint) FingerIndex() (finger, segment int, ok bool) {
	return j.fingerParts()
}

func (j Joint) fingerParts() (finger, segment int, ok bool) {
	s := string(j)
	switch {
	case strings.HasPrefix(s, "left"):
		s = s[len("left"):]
	case strings.HasPrefix(s, "right"):
		s = s[len("right"):]
	default:
		return 0, 0, false
	}
	for fi, fn := range fingerNames {
		if !strings.HasPrefix(s, fn) {
			continue
		}
		switch s[len(fn):] {
		case "Proximal":
			return fi, 0, true
		case "Intermediate":
			return fi, 1, true
		case "Distal":
			return fi, 2, true
		}
	}
	return 0, 0, false
}

// IsLeg reports whether the joint belongs to a leg chain (hip rotation is not
// a leg joint; it is the root).
func (j Joint) IsLeg() bool {
	switch j {
	case LeftUpperLeg, LeftLowerLeg, LeftFoot, LeftToes,
		RightUpperLeg, RightLowerLeg, RightFoot, RightToes:
		return true
	}
	return false
}

// AbstractPath returns the hierarchical joint path from the root, joined with
// slashes (e.g. "hips/spine/chest"). This is the abstract naming convention
// clip tracks are recorded under before retargeting.
func AbstractPath(j Joint) string {
	segs := []string{string(j)}
	for cur := j; ; {
		p, ok := parents[cur]
		if !ok {
			break
		}
		segs = append([]string{string(p)}, segs...)
		cur = p
	}
	return strings.Join(segs, "/")
}

// NodeName returns the PascalCase node name the joint commonly carries on a
// concrete model instance ("leftUpperArm" -> "LeftUpperArm").
func NodeName(j Joint) string {
	s := string(j)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
