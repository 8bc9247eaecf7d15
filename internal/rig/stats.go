package rig

import (
	"strings"

	"github.com/banshee-data/motion.report/internal/rigmath"
)

// Axis names the local Euler axis a limit or motion predominantly acts on.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Range is a closed interval of degrees.
type Range struct {
	Min float64
	Max float64
}

func (r Range) clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// LimitProfile holds the measured range of motion for a joint-limit key, one
// interval per local Euler axis, plus a hint for which axis carries most of
// the joint's travel.
type LimitProfile struct {
	X, Y, Z  Range
	Dominant Axis
}

// Clamp folds an Euler rotation into the profile's ranges, axis by axis.
func (p LimitProfile) Clamp(e rigmath.EulerDeg) rigmath.EulerDeg {
	return rigmath.EulerDeg{
		X: p.X.clamp(e.X),
		Y: p.Y.clamp(e.Y),
		Z: p.Z.clamp(e.Z),
	}
}

// DynamicsProfile holds measured angular speeds in deg/s. These only scale
// synthesised noise amplitude; they never clamp velocity.
type DynamicsProfile struct {
	MaxSpeed float64
	AvgSpeed float64
}

// PropagationProfile holds the delays, in seconds, a kinematic signal takes
// to travel along the major chains. Per-joint lag is composed additively from
// these (see LagFor).
type PropagationProfile struct {
	HipsToChest    float64
	ChestToHead    float64
	ShoulderToHand float64
}

// CorrelationProfile couples one joint's motion to another's. Sign carries
// direction; magnitude scales the coupled amplitude.
type CorrelationProfile struct {
	// HipsLeg drives leg flexion from vertical hip displacement. Negative:
	// hips dropping flexes the legs.
	HipsLeg float64
	// FingerAdjacent bleeds one finger's curl into its neighbour.
	FingerAdjacent float64
	// SpineArm scales how much torso twist a large arm motion recruits.
	SpineArm float64
}

// CorrelationPair names a coupled joint pair for CorrelationFor lookups.
type CorrelationPair int

const (
	CorrHipsLeg CorrelationPair = iota
	CorrFingerAdjacent
	CorrSpineArm
)

// Stats is the read-only statistics table for the skeleton. Construct one
// with DefaultStats (or with custom tables in tests) and pass it by pointer
// into the pipelines that need it; there is no package-level instance.
type Stats struct {
	limits      map[string]LimitProfile
	dynamics    map[string]DynamicsProfile
	propagation PropagationProfile
	correlation CorrelationProfile
}

// LimitKey returns the canonical key statistics are indexed under. Mirrored
// joints share a key ("leftUpperArm" and "rightUpperArm" -> "upperArm");
// fingers collapse to segment class ("fingerProximal"), with the thumb kept
// separate because its range differs.
func LimitKey(j Joint) string {
	s := string(j)
	switch j.Side() {
	case SideLeft:
		s = s[len("left"):]
	case SideRight:
		s = s[len("right"):]
	default:
		return s
	}
	s = strings.ToLower(s[:1]) + s[1:]

	if finger, seg, ok := j.fingerParts(); ok {
		segName := [...]string{"Proximal", "Intermediate", "Distal"}[seg]
		if finger == 0 {
			return "thumb" + segName
		}
		return "finger" + segName
	}
	return s
}

// LimitsFor returns the limit profile for a joint, if one was measured.
func (s *Stats) LimitsFor(j Joint) (LimitProfile, bool) {
	p, ok := s.limits[LimitKey(j)]
	return p, ok
}

// DynamicsFor returns the speed statistics for a joint, if measured.
func (s *Stats) DynamicsFor(j Joint) (DynamicsProfile, bool) {
	p, ok := s.dynamics[LimitKey(j)]
	return p, ok
}

// Propagation returns the chain delay table.
func (s *Stats) Propagation() PropagationProfile {
	return s.propagation
}

// CorrelationFor returns the coupling coefficient for a joint pair.
// Unknown pairs return 1 (unit correlation: fully coupled, unscaled).
func (s *Stats) CorrelationFor(pair CorrelationPair) float64 {
	switch pair {
	case CorrHipsLeg:
		return s.correlation.HipsLeg
	case CorrFingerAdjacent:
		return s.correlation.FingerAdjacent
	case CorrSpineArm:
		return s.correlation.SpineArm
	default:
		return 1
	}
}

// LagFor returns the propagation lag for a joint in seconds, composed
// additively along the chain from the hips. Joints without a category (the
// root itself) report zero.
func (s *Stats) LagFor(j Joint) float64 {
	p := s.propagation

	if j.IsFinger() {
		return p.HipsToChest + p.ShoulderToHand*1.1
	}

	switch j {
	case Spine:
		return p.HipsToChest * 0.5
	case Chest:
		return p.HipsToChest * 0.75
	case UpperChest:
		return p.HipsToChest
	case Neck:
		return p.HipsToChest + p.ChestToHead*0.5
	case Head:
		return p.HipsToChest + p.ChestToHead
	case LeftShoulder, RightShoulder:
		return p.HipsToChest
	case LeftUpperArm, RightUpperArm:
		return p.HipsToChest + p.ShoulderToHand/3
	case LeftLowerArm, RightLowerArm:
		return p.HipsToChest + p.ShoulderToHand*2/3
	case LeftHand, RightHand:
		return p.HipsToChest + p.ShoulderToHand
	case LeftUpperLeg, RightUpperLeg:
		return p.HipsToChest * 0.25
	case LeftLowerLeg, RightLowerLeg:
		return p.HipsToChest * 0.5
	case LeftFoot, RightFoot, LeftToes, RightToes:
		return p.HipsToChest * 0.75
	}
	return 0
}

// DefaultStats returns the authored statistics tables. Limit ranges and
// speeds come from aggregated motion-capture measurements; propagation and
// correlation values were tuned against reference footage.
func DefaultStats() *Stats {
	return &Stats{
		limits: map[string]LimitProfile{
			"hips":       {X: Range{-30, 30}, Y: Range{-45, 45}, Z: Range{-30, 30}, Dominant: AxisY},
			"spine":      {X: Range{-35, 30}, Y: Range{-35, 35}, Z: Range{-25, 25}, Dominant: AxisX},
			"chest":      {X: Range{-25, 25}, Y: Range{-30, 30}, Z: Range{-20, 20}, Dominant: AxisX},
			"upperChest": {X: Range{-20, 20}, Y: Range{-25, 25}, Z: Range{-15, 15}, Dominant: AxisX},
			"neck":       {X: Range{-40, 40}, Y: Range{-50, 50}, Z: Range{-30, 30}, Dominant: AxisY},
			"head":       {X: Range{-45, 45}, Y: Range{-60, 60}, Z: Range{-35, 35}, Dominant: AxisY},

			"shoulder": {X: Range{-15, 15}, Y: Range{-30, 30}, Z: Range{-30, 30}, Dominant: AxisZ},
			"upperArm": {X: Range{-90, 120}, Y: Range{-95, 95}, Z: Range{-130, 130}, Dominant: AxisZ},
			"lowerArm": {X: Range{-25, 25}, Y: Range{-150, 150}, Z: Range{-25, 90}, Dominant: AxisY},
			"hand":     {X: Range{-45, 45}, Y: Range{-30, 30}, Z: Range{-65, 65}, Dominant: AxisZ},

			"upperLeg": {X: Range{-95, 45}, Y: Range{-45, 45}, Z: Range{-35, 35}, Dominant: AxisX},
			"lowerLeg": {X: Range{-5, 140}, Y: Range{-10, 10}, Z: Range{-8, 8}, Dominant: AxisX},
			"foot":     {X: Range{-45, 35}, Y: Range{-25, 25}, Z: Range{-18, 18}, Dominant: AxisX},
			"toes":     {X: Range{-30, 45}, Y: Range{-5, 5}, Z: Range{-5, 5}, Dominant: AxisX},

			"thumbProximal":      {X: Range{-20, 20}, Y: Range{-35, 35}, Z: Range{-45, 25}, Dominant: AxisZ},
			"thumbIntermediate":  {X: Range{-10, 10}, Y: Range{-15, 15}, Z: Range{-55, 10}, Dominant: AxisZ},
			"thumbDistal":        {X: Range{-10, 10}, Y: Range{-10, 10}, Z: Range{-80, 10}, Dominant: AxisZ},
			"fingerProximal":     {X: Range{-10, 10}, Y: Range{-20, 20}, Z: Range{-15, 95}, Dominant: AxisZ},
			"fingerIntermediate": {X: Range{-5, 5}, Y: Range{-5, 5}, Z: Range{-5, 110}, Dominant: AxisZ},
			"fingerDistal":       {X: Range{-5, 5}, Y: Range{-5, 5}, Z: Range{-5, 85}, Dominant: AxisZ},
		},
		dynamics: map[string]DynamicsProfile{
			"hips":       {MaxSpeed: 140, AvgSpeed: 28},
			"spine":      {MaxSpeed: 160, AvgSpeed: 32},
			"chest":      {MaxSpeed: 150, AvgSpeed: 30},
			"upperChest": {MaxSpeed: 140, AvgSpeed: 26},
			"neck":       {MaxSpeed: 280, AvgSpeed: 45},
			"head":       {MaxSpeed: 320, AvgSpeed: 52},

			"shoulder": {MaxSpeed: 200, AvgSpeed: 35},
			"upperArm": {MaxSpeed: 480, AvgSpeed: 85},
			"lowerArm": {MaxSpeed: 620, AvgSpeed: 110},
			"hand":     {MaxSpeed: 560, AvgSpeed: 95},

			"upperLeg": {MaxSpeed: 360, AvgSpeed: 60},
			"lowerLeg": {MaxSpeed: 520, AvgSpeed: 78},
			"foot":     {MaxSpeed: 420, AvgSpeed: 55},
			"toes":     {MaxSpeed: 300, AvgSpeed: 30},

			"thumbProximal":      {MaxSpeed: 700, AvgSpeed: 120},
			"thumbIntermediate":  {MaxSpeed: 750, AvgSpeed: 130},
			"thumbDistal":        {MaxSpeed: 800, AvgSpeed: 140},
			"fingerProximal":     {MaxSpeed: 820, AvgSpeed: 150},
			"fingerIntermediate": {MaxSpeed: 880, AvgSpeed: 160},
			"fingerDistal":       {MaxSpeed: 920, AvgSpeed: 170},
		},
		propagation: PropagationProfile{
			HipsToChest:    0.06,
			ChestToHead:    0.05,
			ShoulderToHand: 0.12,
		},
		correlation: CorrelationProfile{
			HipsLeg:        -0.62,
			FingerAdjacent: 0.35,
			SpineArm:       0.28,
		},
	}
}
