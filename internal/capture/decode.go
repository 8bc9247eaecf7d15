package capture

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/motion.report/internal/rig"
)

// Category routes an estimate frame to its decoder.
type Category string

const (
	CategoryBody      Category = "body"
	CategoryFace      Category = "face"
	CategoryLeftHand  Category = "leftHand"
	CategoryRightHand Category = "rightHand"
)

// Landmark2D is a normalised 2-D landmark position from the estimator,
// passed through unchanged for auxiliary consumers.
type Landmark2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EstimateFrame is one push-delivered batch of per-joint rotation estimates
// from the external estimator. Rotations are local unit quaternions;
// RootPosition is only meaningful on body frames.
type EstimateFrame struct {
	Category     Category
	Rotations    map[rig.Joint]quat.Number
	RootPosition *r3.Vec
	Landmarks    []Landmark2D
}

// decoded is the per-category decoder output: the subset of raw rotations
// this category is allowed to drive, plus the root displacement for body
// frames.
type decoded struct {
	rotations map[rig.Joint]quat.Number
	rootPos   *r3.Vec
}

// categoryJoints lists which joints each estimate category may drive. A
// frame carrying rotations outside its category is partially ignored rather
// than rejected.
var categoryJoints = buildCategoryJoints()

func buildCategoryJoints() map[Category]map[rig.Joint]bool {
	m := map[Category]map[rig.Joint]bool{
		CategoryBody:      make(map[rig.Joint]bool),
		CategoryFace:      make(map[rig.Joint]bool),
		CategoryLeftHand:  make(map[rig.Joint]bool),
		CategoryRightHand: make(map[rig.Joint]bool),
	}
	for _, j := range rig.All() {
		if j.IsFinger() {
			if j.Side() == rig.SideLeft {
				m[CategoryLeftHand][j] = true
			} else {
				m[CategoryRightHand][j] = true
			}
			continue
		}
		switch j {
		case rig.Head, rig.Neck:
			m[CategoryFace][j] = true
			m[CategoryBody][j] = true
		case rig.LeftHand:
			m[CategoryLeftHand][j] = true
			m[CategoryBody][j] = true
		case rig.RightHand:
			m[CategoryRightHand][j] = true
			m[CategoryBody][j] = true
		default:
			m[CategoryBody][j] = true
		}
	}
	return m
}

// decodeFrame routes the frame through its category decoder. A frame with no
// usable joints decodes to an empty set; the caller treats that as "no new
// targets this frame" rather than an error.
func decodeFrame(f EstimateFrame) decoded {
	allowed := categoryJoints[f.Category]
	d := decoded{rotations: make(map[rig.Joint]quat.Number, len(f.Rotations))}
	for j, q := range f.Rotations {
		if allowed[j] {
			d.rotations[j] = q
		}
	}
	if f.Category == CategoryBody && f.RootPosition != nil {
		p := *f.RootPosition
		d.rootPos = &p
	}
	return d
}

// upperBodyAllowList is the set of joints a reduced ("face/upper-body only")
// session may write. Leg and hip writes are suppressed so an upper-body
// capture cannot rotate the character's stance.
var upperBodyAllowList = buildUpperBodyAllowList()

func buildUpperBodyAllowList() map[rig.Joint]bool {
	m := make(map[rig.Joint]bool)
	for _, j := range rig.All() {
		if j == rig.Hips || j.IsLeg() {
			continue
		}
		m[j] = true
	}
	return m
}
