package clip

import (
	"errors"
	"strings"
	"unicode"

	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/scene"
)

// ErrEmptyRetarget is returned when retargeting a non-empty clip resolves
// zero tracks. Such a clip is structurally empty and must not be handed to
// playback; the only visible symptom otherwise would be a completely static
// rig.
var ErrEmptyRetarget = errors.New("retarget produced no tracks")

// RetargetOptions controls Retarget.
type RetargetOptions struct {
	// StripRootPosition drops the root position track so a clip authored at
	// one origin cannot teleport a differently placed avatar.
	StripRootPosition bool
}

// RetargetReport counts what happened to each input track.
type RetargetReport struct {
	Resolved      int // renamed onto the target rig
	Dropped       int // joint unresolved or absent from the target rig
	PassedThrough int // name matched no known joint-path pattern; kept as-is
	RootStripped  int // root position tracks removed by StripRootPosition
}

// Property suffixes understood by the track-name grammar.
const (
	propQuaternion = "quaternion"
	propPosition   = "position"
	propScale      = "scale"
)

// aliases maps every naming convention seen in the wild onto the canonical
// joint identifier: the standard camelCase name, the PascalCase node name
// exporters emit directly, and the legacy snake_case with a side suffix
// ("upper_arm_L"). Built once at init from the joint taxonomy.
var aliases = buildAliases()

func buildAliases() map[string]rig.Joint {
	m := make(map[string]rig.Joint, len(rig.All())*3)
	for _, j := range rig.All() {
		m[string(j)] = j
		m[rig.NodeName(j)] = j
		m[legacyName(j)] = j
	}
	return m
}

// legacyName renders the historical snake_case convention: the side prefix
// becomes an "_L"/"_R" suffix ("leftUpperArm" -> "upper_arm_L").
func legacyName(j rig.Joint) string {
	s := string(j)
	suffix := ""
	switch j.Side() {
	case rig.SideLeft:
		s, suffix = s[len("left"):], "_L"
	case rig.SideRight:
		s, suffix = s[len("right"):], "_R"
	}
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String() + suffix
}

// ResolveJointName maps a track-name joint segment to a canonical joint.
func ResolveJointName(segment string) (rig.Joint, bool) {
	j, ok := aliases[segment]
	return j, ok
}

// splitTrackName separates "path/to/joint.property" into its trailing joint
// segment and property suffix. ok=false when the name does not follow the
// grammar (no dot, or an unknown property).
func splitTrackName(name string) (segment, property string, ok bool) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return "", "", false
	}
	property = name[dot+1:]
	switch property {
	case propQuaternion, propPosition, propScale:
	default:
		return "", "", false
	}
	path := name[:dot]
	if slash := strings.LastIndexByte(path, '/'); slash >= 0 {
		path = path[slash+1:]
	}
	return path, property, true
}

// Retarget translates a clip's track names onto a concrete rig instance's
// scene paths. Tracks whose joint cannot be resolved are dropped and counted;
// tracks whose names match no known pattern pass through unchanged, which
// keeps mixed-convention clips usable. A non-empty clip that resolves zero
// tracks returns ErrEmptyRetarget alongside the (empty) result.
func Retarget(c Clip, target scene.RigInstance, opts RetargetOptions) (Clip, RetargetReport, error) {
	out := Clip{Name: c.Name, Duration: c.Duration}
	var report RetargetReport

	for _, t := range c.Tracks {
		segment, property, ok := splitTrackName(t.Name)
		if !ok {
			report.PassedThrough++
			out.Tracks = append(out.Tracks, t)
			continue
		}
		joint, ok := ResolveJointName(segment)
		if !ok {
			report.Dropped++
			continue
		}
		if opts.StripRootPosition && joint == rig.Hips && property == propPosition {
			report.RootStripped++
			continue
		}
		path, ok := target.NodePath(joint)
		if !ok {
			report.Dropped++
			continue
		}
		renamed := t
		renamed.Name = path + "." + property
		out.Tracks = append(out.Tracks, renamed)
		report.Resolved++
	}

	if len(c.Tracks) > 0 && len(out.Tracks) == 0 {
		return out, report, ErrEmptyRetarget
	}
	return out, report, nil
}

// Abstract is the reverse direction used for persistence: tracks named with
// the target rig's concrete scene paths are renamed back to the abstract
// joint-path convention. Unrecognised names pass through unchanged.
func Abstract(c Clip, source scene.RigInstance) (Clip, RetargetReport, error) {
	// Build the concrete-path index for this rig instance.
	paths := make(map[string]rig.Joint, len(rig.All()))
	for _, j := range rig.All() {
		if p, ok := source.NodePath(j); ok {
			paths[p] = j
		}
	}

	out := Clip{Name: c.Name, Duration: c.Duration}
	var report RetargetReport

	for _, t := range c.Tracks {
		dot := strings.LastIndexByte(t.Name, '.')
		if dot <= 0 || dot == len(t.Name)-1 {
			report.PassedThrough++
			out.Tracks = append(out.Tracks, t)
			continue
		}
		joint, ok := paths[t.Name[:dot]]
		if !ok {
			report.PassedThrough++
			out.Tracks = append(out.Tracks, t)
			continue
		}
		renamed := t
		renamed.Name = rig.AbstractPath(joint) + t.Name[dot:]
		out.Tracks = append(out.Tracks, renamed)
		report.Resolved++
	}

	if len(c.Tracks) > 0 && len(out.Tracks) == 0 {
		return out, report, ErrEmptyRetarget
	}
	return out, report, nil
}
