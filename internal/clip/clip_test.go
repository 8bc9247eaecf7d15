package clip

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleClip() Clip {
	return Clip{
		Name:     "test",
		Duration: 1.0,
		Tracks: []Track{
			{
				Name:   "hips/spine.quaternion",
				Kind:   KindQuaternion,
				Times:  []float64{0, 0.5, 1.0},
				Values: []float64{0, 0, 0, 1, 0.1, 0, 0, 0.99, 0, 0, 0, 1},
			},
			{
				Name:   "hips.position",
				Kind:   KindVector3,
				Times:  []float64{0, 1.0},
				Values: []float64{0, 0.9, 0, 0, 0.95, 0},
			},
		},
	}
}

func TestClipJSONRoundTrip(t *testing.T) {
	c := sampleClip()

	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTrackValidate(t *testing.T) {
	tests := []struct {
		name    string
		track   Track
		wantErr string
	}{
		{
			name:  "valid",
			track: Track{Name: "a.quaternion", Kind: KindQuaternion, Times: []float64{0, 1}, Values: make([]float64, 8)},
		},
		{
			name:    "unknown kind",
			track:   Track{Name: "a", Kind: "matrix"},
			wantErr: "unknown kind",
		},
		{
			name:    "value count mismatch",
			track:   Track{Name: "a.quaternion", Kind: KindQuaternion, Times: []float64{0, 1}, Values: make([]float64, 7)},
			wantErr: "7 values",
		},
		{
			name:    "non-increasing times",
			track:   Track{Name: "a.scalar", Kind: KindScalar, Times: []float64{0, 0.5, 0.5}, Values: make([]float64, 3)},
			wantErr: "strictly increasing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.track.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, expected error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestClipValidateDurationBound(t *testing.T) {
	c := sampleClip()
	c.Duration = 0.75
	if err := c.Validate(); err == nil {
		t.Error("expected error for sample past duration")
	}

	// A final sample landing on the boundary within float noise is fine.
	c = sampleClip()
	c.Tracks[0].Times[2] = 1.0 + 1e-12
	if err := c.Validate(); err != nil {
		t.Errorf("boundary sample rejected: %v", err)
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	bad := `{"name":"x","duration":1,"tracks":[{"name":"a.quaternion","kind":"quaternion","times":[0],"values":[1,2]}]}`
	if _, err := Decode(strings.NewReader(bad)); err == nil {
		t.Error("expected validation error")
	}
}
