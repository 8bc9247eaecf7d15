// Package clip defines the animation clip representation shared by the
// procedural synthesiser and the live capture recorder, its JSON
// serialisation, and retargeting between the abstract joint-path naming
// convention and a concrete rig instance's scene paths.
package clip

import (
	"encoding/json"
	"fmt"
	"io"
)

// TrackKind identifies the sample type carried by a track.
type TrackKind string

const (
	KindQuaternion TrackKind = "quaternion"
	KindVector3    TrackKind = "vector3"
	KindScalar     TrackKind = "scalar"
)

// Components returns the number of float components per sample.
func (k TrackKind) Components() int {
	switch k {
	case KindQuaternion:
		return 4
	case KindVector3:
		return 3
	case KindScalar:
		return 1
	}
	return 0
}

// Track is a named, typed time series. Values holds
// len(Times)*Kind.Components() floats; quaternion samples are stored
// x, y, z, w.
type Track struct {
	Name   string    `json:"name"`
	Kind   TrackKind `json:"kind"`
	Times  []float64 `json:"times"`
	Values []float64 `json:"values"`
}

// SampleCount returns the number of samples in the track.
func (t Track) SampleCount() int { return len(t.Times) }

// Validate checks the track invariants: known kind, strictly increasing
// times, and a value count matching times x components.
func (t Track) Validate() error {
	comps := t.Kind.Components()
	if comps == 0 {
		return fmt.Errorf("track %q: unknown kind %q", t.Name, t.Kind)
	}
	if len(t.Values) != len(t.Times)*comps {
		return fmt.Errorf("track %q: %d values for %d samples of %q",
			t.Name, len(t.Values), len(t.Times), t.Kind)
	}
	for i := 1; i < len(t.Times); i++ {
		if t.Times[i] <= t.Times[i-1] {
			return fmt.Errorf("track %q: times not strictly increasing at index %d", t.Name, i)
		}
	}
	return nil
}

// Clip is a named set of tracks with a common duration. It is a flat,
// versionless structure intended to round-trip through JSON with no binary
// dependencies.
type Clip struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
	Tracks   []Track `json:"tracks"`
}

// Validate checks every track and the duration invariant (no track sample
// lies past the clip duration).
func (c Clip) Validate() error {
	if c.Duration < 0 {
		return fmt.Errorf("clip %q: negative duration", c.Name)
	}
	for _, t := range c.Tracks {
		if err := t.Validate(); err != nil {
			return err
		}
		if n := len(t.Times); n > 0 && t.Times[n-1] > c.Duration+timeEpsilon {
			return fmt.Errorf("track %q: last time %.6f exceeds clip duration %.6f",
				t.Name, t.Times[n-1], c.Duration)
		}
	}
	return nil
}

// timeEpsilon absorbs float accumulation when the final sample lands on the
// clip boundary.
const timeEpsilon = 1e-9

// TrackByName returns the named track, or ok=false.
func (c Clip) TrackByName(name string) (Track, bool) {
	for _, t := range c.Tracks {
		if t.Name == name {
			return t, true
		}
	}
	return Track{}, false
}

// Encode writes the clip as JSON.
func Encode(w io.Writer, c Clip) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode clip %q: %w", c.Name, err)
	}
	return nil
}

// Decode reads a clip from JSON and validates it.
func Decode(r io.Reader) (Clip, error) {
	var c Clip
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Clip{}, fmt.Errorf("decode clip: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Clip{}, err
	}
	return c, nil
}
