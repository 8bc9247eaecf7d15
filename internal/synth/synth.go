// Package synth generates loopable humanoid animation clips from a static
// base pose and a small set of physically-motivated parameters.
//
// The generator is fully deterministic: all "noise" is phase-offset
// trigonometry, so identical inputs produce byte-identical clips. Per-joint
// propagation lag, joint limits, speed statistics and cross-joint correlation
// all come from the rig statistics tables, which means the synthesiser and
// the live capture pipeline respect the same biomechanical envelope.
package synth

import (
	"fmt"
	"math"

	"github.com/banshee-data/motion.report/internal/clip"
	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/rigmath"
)

// Gesture selects the kinematic ruleset layered over the base oscillation.
type Gesture string

const (
	GestureWave   Gesture = "wave"
	GesturePoint  Gesture = "point"
	GestureBreath Gesture = "breath"
)

// Config carries the tunable synthesis parameters.
type Config struct {
	// Duration of the generated clip in seconds.
	Duration float64
	// FPS is the output sample rate.
	FPS float64
	// Frequency multiplies the base oscillation rate (1 = authored default).
	Frequency float64
	// Energy scales oscillation amplitude.
	Energy float64
	// NoiseScale scales the additive jitter layer.
	NoiseScale float64
	// CoreCoupling scales how much torso motion arm gestures recruit.
	CoreCoupling float64
}

// DefaultConfig returns the authored defaults for a two-second loop.
func DefaultConfig() Config {
	return Config{
		Duration:     2.0,
		FPS:          30,
		Frequency:    1.0,
		Energy:       1.0,
		NoiseScale:   1.0,
		CoreCoupling: 1.0,
	}
}

// bioExponent compresses the sine easing toward an organic, slightly
// flattened curve. Tuned against reference footage; see bioSin.
const bioExponent = 0.85

// bioSin is a sine curve with its magnitude raised to bioExponent, biasing
// the easing away from a perfect sinusoid while keeping zero crossings and
// periodicity intact.
func bioSin(x float64) float64 {
	s := math.Sin(x)
	if s >= 0 {
		return math.Pow(s, bioExponent)
	}
	return -math.Pow(-s, bioExponent)
}

// Per-category base oscillation amplitude in degrees at Energy=1. Gesture
// rules layer on top of this ambient motion.
func baseAmplitude(j rig.Joint) float64 {
	switch {
	case j.IsFinger():
		return 0
	case j.IsLeg():
		return 0.8
	}
	switch j {
	case rig.Spine, rig.Chest, rig.UpperChest:
		return 1.6
	case rig.Neck, rig.Head:
		return 2.2
	case rig.LeftShoulder, rig.RightShoulder:
		return 1.2
	case rig.LeftUpperArm, rig.RightUpperArm,
		rig.LeftLowerArm, rig.RightLowerArm,
		rig.LeftHand, rig.RightHand:
		return 1.8
	}
	return 0
}

// fingerJitterScale damps finger jitter: their measured angular speeds are an
// order of magnitude above the big joints and would overshoot visually.
const fingerJitterScale = 0.1

// jitter is the additive two-frequency noise layer. Each axis gets a distinct
// phase offset so the three components never move in lockstep.
func jitter(t, phaseOffset float64) float64 {
	return math.Sin(1.5*t+phaseOffset) + 0.5*math.Sin(3.2*t+phaseOffset*1.7)
}

// jitterAmplitude converts a joint's measured average speed into a jitter
// amplitude in degrees.
func jitterAmplitude(stats *rig.Stats, j rig.Joint, noiseScale float64) float64 {
	dyn, ok := stats.DynamicsFor(j)
	if !ok {
		// Missing statistics degrade to a small fixed amplitude.
		return 0.3 * noiseScale
	}
	amp := dyn.AvgSpeed * 0.012 * noiseScale
	if j.IsFinger() {
		amp *= fingerJitterScale
	}
	return amp
}

// jointPhase derives a stable per-joint, per-axis phase offset from the joint
// name so the noise field is decorrelated across the skeleton but fully
// deterministic.
func jointPhase(j rig.Joint, axis int) float64 {
	var h uint32 = 2166136261
	for i := 0; i < len(j); i++ {
		h ^= uint32(j[i])
		h *= 16777619
	}
	h ^= uint32(axis+1) * 0x9e3779b9
	return float64(h%6283) / 1000 // [0, 2pi)
}

// Generate produces a loopable clip for the gesture. It never fails; missing
// statistics only degrade fidelity (no clamp, default jitter amplitude).
func Generate(base rig.Pose, gesture Gesture, cfg Config, stats *rig.Stats) clip.Clip {
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 2
	}
	frameCount := int(math.Round(cfg.Duration * cfg.FPS))
	if frameCount < 1 {
		frameCount = 1
	}
	samples := frameCount + 1
	omega := 2 * math.Pi * cfg.Frequency

	out := clip.Clip{
		Name:     fmt.Sprintf("synth-%s", gesture),
		Duration: cfg.Duration,
	}

	times := make([]float64, samples)
	for i := 0; i < samples; i++ {
		times[i] = float64(i) / float64(frameCount) * cfg.Duration
	}

	// Root position track, built first: leg joints read the per-frame
	// vertical delta.
	rootValues := make([]float64, 0, samples*3)
	hipDelta := make([]float64, samples)
	for i, t := range times {
		sway, bob := rootMotion(gesture, cfg, omega, t)
		hipDelta[i] = bob
		rootValues = append(rootValues,
			base.RootPosition.X+sway,
			base.RootPosition.Y+bob,
			base.RootPosition.Z,
		)
	}

	hipsLegCorr := stats.CorrelationFor(rig.CorrHipsLeg)
	spineArmCorr := stats.CorrelationFor(rig.CorrSpineArm)

	for _, j := range rig.All() {
		values := make([]float64, 0, samples*4)
		lag := stats.LagFor(j)
		for i, t := range times {
			e := base.Rotation(j)
			phase := omega * (t - lag)

			// Ambient oscillation on the joint's dominant axis.
			if amp := baseAmplitude(j) * cfg.Energy; amp != 0 {
				osc := bioSin(phase) * amp
				e = addOnDominant(e, osc, stats, j)
			}

			// Category overrides.
			switch {
			case j.IsLeg():
				e = legCounterRotation(e, j, hipDelta[i], hipsLegCorr)
			case j.IsFinger():
				e = fingerCurl(e, j, gesture, cfg, omega, t, lag)
			}
			e = applyGesture(e, j, gesture, cfg, omega, t, lag, spineArmCorr)

			// Additive jitter, one distinct phase per axis.
			jAmp := jitterAmplitude(stats, j, cfg.NoiseScale)
			e.X += jitter(t, jointPhase(j, 0)) * jAmp
			e.Y += jitter(t, jointPhase(j, 1)) * jAmp
			e.Z += jitter(t, jointPhase(j, 2)) * jAmp

			// Clamp into the measured envelope when one exists.
			if lim, ok := stats.LimitsFor(j); ok {
				e = lim.Clamp(e)
			}

			q := rigmath.FromEuler(e)
			values = append(values, q.Imag, q.Jmag, q.Kmag, q.Real)
		}
		out.Tracks = append(out.Tracks, clip.Track{
			Name:   rig.AbstractPath(j) + ".quaternion",
			Kind:   clip.KindQuaternion,
			Times:  append([]float64(nil), times...),
			Values: values,
		})
	}

	out.Tracks = append(out.Tracks, clip.Track{
		Name:   rig.AbstractPath(rig.Hips) + ".position",
		Kind:   clip.KindVector3,
		Times:  append([]float64(nil), times...),
		Values: rootValues,
	})

	return out
}

// rootMotion returns the hips sway (X) and bob (Y) displacement in metres.
// Amplitudes sit in the 0.5-1.5 cm band at Energy=1.
func rootMotion(gesture Gesture, cfg Config, omega, t float64) (sway, bob float64) {
	switch gesture {
	case GestureWave:
		sway = 0.010 * cfg.Energy * math.Sin(omega*t)
		bob = 0.008 * cfg.Energy * math.Sin(2*omega*t)
	case GesturePoint:
		sway = 0.006 * cfg.Energy * math.Sin(omega*t)
		bob = 0.005 * cfg.Energy * math.Sin(2*omega*t)
	default: // breath
		sway = 0.004 * cfg.Energy * math.Sin(omega*t*0.5)
		bob = 0.006 * cfg.Energy * math.Sin(omega*t)
	}
	return sway, bob
}

// addOnDominant adds the oscillation to the joint's dominant limit axis
// (X when no limit profile exists).
func addOnDominant(e rigmath.EulerDeg, osc float64, stats *rig.Stats, j rig.Joint) rigmath.EulerDeg {
	axis := rig.AxisX
	if lim, ok := stats.LimitsFor(j); ok {
		axis = lim.Dominant
	}
	switch axis {
	case rig.AxisY:
		e.Y += osc
	case rig.AxisZ:
		e.Z += osc
	default:
		e.X += osc
	}
	return e
}

// legCounterRotation flexes the leg chain against vertical hip displacement.
// Upper leg and ankle rotate one way, the knee the opposite way, scaled by
// the magnitude of the hips-leg correlation coefficient.
func legCounterRotation(e rigmath.EulerDeg, j rig.Joint, hipDeltaY, corr float64) rigmath.EulerDeg {
	// metres -> degrees of flexion; 1 cm of drop is ~5 degrees at |corr|=0.62.
	flex := hipDeltaY * 800 * math.Abs(corr)
	switch j {
	case rig.LeftUpperLeg, rig.RightUpperLeg:
		e.X -= flex
	case rig.LeftLowerLeg, rig.RightLowerLeg:
		e.X += 2 * flex
	case rig.LeftFoot, rig.RightFoot:
		e.X -= flex
	}
	return e
}

// fingerPhaseStep staggers the curl wave across fingers.
const fingerPhaseStep = 0.25

// fingerCurl drives a phase-shifted curl per finger; the thumb opposes
// instead of curling with the rest.
func fingerCurl(e rigmath.EulerDeg, j rig.Joint, gesture Gesture, cfg Config, omega, t, lag float64) rigmath.EulerDeg {
	finger, segment, ok := j.FingerIndex()
	if !ok {
		return e
	}
	phase := omega*(t-lag) - float64(finger)*fingerPhaseStep
	curl := bioSin(phase) * 6 * cfg.Energy * (1 + 0.25*float64(segment))
	if finger == 0 {
		// Thumb: opposition, smaller travel.
		e.Z -= curl * 0.5
	} else {
		e.Z += curl
	}
	return e
}

// applyGesture layers the gesture-specific kinematics on top of the ambient
// oscillation for one joint at one instant.
func applyGesture(e rigmath.EulerDeg, j rig.Joint, gesture Gesture, cfg Config, omega, t, lag, spineArmCorr float64) rigmath.EulerDeg {
	phase := omega * (t - lag)
	switch gesture {
	case GestureWave:
		// The wave itself runs at double the base rate.
		wave := bioSin(2*omega*(t-lag)) * cfg.Energy
		twist := wave * 5 * spineArmCorr * cfg.CoreCoupling
		switch j {
		case rig.RightUpperArm:
			e.Z += -70 * cfg.Energy
			e.Y += wave * 8
		case rig.RightLowerArm:
			e.Y += wave * 35
			e.Z += -15 * cfg.Energy
		case rig.RightHand:
			e.Z += wave * 10
		case rig.LeftUpperArm:
			// Passive sympathetic motion on the off arm.
			e.Z += wave * 3
		case rig.LeftLowerArm:
			e.Y += wave * 2
		case rig.Spine:
			e.Y += twist * 0.6
		case rig.Chest:
			e.Y += twist
		case rig.UpperChest:
			e.Y += twist * 0.8
		case rig.Head:
			// Counter-rotate so the gaze stays roughly forward.
			e.Y -= twist * 0.5
		}
	case GesturePoint:
		sway := bioSin(phase) * cfg.Energy
		switch j {
		case rig.RightUpperArm:
			e.Z += -80 * cfg.Energy
			e.Y += -8 * cfg.Energy
		case rig.RightLowerArm:
			e.Y += -4 * cfg.Energy
		case rig.RightHand:
			e.Z += -5 * cfg.Energy
		case rig.RightIndexProximal, rig.RightIndexIntermediate, rig.RightIndexDistal:
			// Straighten the pointing finger against the ambient curl.
			e.Z = 2
		case rig.RightMiddleProximal, rig.RightRingProximal, rig.RightLittleProximal:
			e.Z += 55 * cfg.Energy
		case rig.RightMiddleIntermediate, rig.RightRingIntermediate, rig.RightLittleIntermediate:
			e.Z += 70 * cfg.Energy
		case rig.RightMiddleDistal, rig.RightRingDistal, rig.RightLittleDistal:
			e.Z += 40 * cfg.Energy
		case rig.LeftUpperArm:
			e.Z += sway * 2.5
		case rig.Chest:
			e.Y += sway * 2 * cfg.CoreCoupling
		}
	case GestureBreath:
		breath := bioSin(phase)
		switch j {
		case rig.Spine:
			e.X += breath * 1.8 * cfg.Energy
		case rig.Chest:
			e.X += breath * 1.2 * cfg.Energy
		case rig.LeftShoulder:
			e.Z += breath * 1.0 * cfg.Energy
		case rig.RightShoulder:
			e.Z -= breath * 1.0 * cfg.Energy
		case rig.Head:
			e.X -= breath * 0.8 * cfg.Energy
		}
	}
	return e
}
