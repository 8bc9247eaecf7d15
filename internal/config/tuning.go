// Package config loads the tuning parameters for the motion pipelines.
// The schema matches the /api/session/params endpoint so the same JSON can
// be used for both startup configuration and runtime updates.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/banshee-data/motion.report/internal/capture"
	"github.com/banshee-data/motion.report/internal/filter"
	"github.com/banshee-data/motion.report/internal/synth"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the root tuning configuration. Every field is a pointer;
// nil means "keep the current/default value", which lets partial JSON
// documents patch a running configuration.
type TuningConfig struct {
	// Rotation filter params (live capture)
	RotationMinCutoff *float64 `json:"rotation_min_cutoff,omitempty"`
	RotationBeta      *float64 `json:"rotation_beta,omitempty"`

	// Root position filter params
	PositionMinCutoff *float64 `json:"position_min_cutoff,omitempty"`
	PositionBeta      *float64 `json:"position_beta,omitempty"`

	// Sympathetic follow weights (upper-body mode)
	FollowNeck       *float64 `json:"follow_neck,omitempty"`
	FollowUpperChest *float64 `json:"follow_upper_chest,omitempty"`
	FollowChest      *float64 `json:"follow_chest,omitempty"`
	FollowSpine      *float64 `json:"follow_spine,omitempty"`

	// Synthesiser defaults
	SynthDuration     *float64 `json:"synth_duration,omitempty"`
	SynthFPS          *float64 `json:"synth_fps,omitempty"`
	SynthFrequency    *float64 `json:"synth_frequency,omitempty"`
	SynthEnergy       *float64 `json:"synth_energy,omitempty"`
	SynthNoiseScale   *float64 `json:"synth_noise_scale,omitempty"`
	SynthCoreCoupling *float64 `json:"synth_core_coupling,omitempty"`
}

// LoadTuningConfig reads a tuning JSON file. A missing file is not an error;
// it returns an empty config (all defaults).
func LoadTuningConfig(path string) (*TuningConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &TuningConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tuning config %s: %w", path, err)
	}
	var tc TuningConfig
	if err := json.Unmarshal(data, &tc); err != nil {
		return nil, fmt.Errorf("parse tuning config %s: %w", path, err)
	}
	return &tc, nil
}

// Merge overlays non-nil fields of other onto a copy of tc.
func (tc *TuningConfig) Merge(other *TuningConfig) *TuningConfig {
	out := *tc
	patch := func(dst **float64, src *float64) {
		if src != nil {
			*dst = src
		}
	}
	patch(&out.RotationMinCutoff, other.RotationMinCutoff)
	patch(&out.RotationBeta, other.RotationBeta)
	patch(&out.PositionMinCutoff, other.PositionMinCutoff)
	patch(&out.PositionBeta, other.PositionBeta)
	patch(&out.FollowNeck, other.FollowNeck)
	patch(&out.FollowUpperChest, other.FollowUpperChest)
	patch(&out.FollowChest, other.FollowChest)
	patch(&out.FollowSpine, other.FollowSpine)
	patch(&out.SynthDuration, other.SynthDuration)
	patch(&out.SynthFPS, other.SynthFPS)
	patch(&out.SynthFrequency, other.SynthFrequency)
	patch(&out.SynthEnergy, other.SynthEnergy)
	patch(&out.SynthNoiseScale, other.SynthNoiseScale)
	patch(&out.SynthCoreCoupling, other.SynthCoreCoupling)
	return &out
}

// CaptureOptions renders the tuning into capture session options, starting
// from the package defaults.
func (tc *TuningConfig) CaptureOptions(mode capture.Mode) capture.Options {
	opts := capture.DefaultOptions()
	opts.Mode = mode
	applyFilter(&opts.RotationFilter, tc.RotationMinCutoff, tc.RotationBeta)
	applyFilter(&opts.PositionFilter, tc.PositionMinCutoff, tc.PositionBeta)
	if tc.FollowNeck != nil {
		opts.Follow.Neck = *tc.FollowNeck
	}
	if tc.FollowUpperChest != nil {
		opts.Follow.UpperChest = *tc.FollowUpperChest
	}
	if tc.FollowChest != nil {
		opts.Follow.Chest = *tc.FollowChest
	}
	if tc.FollowSpine != nil {
		opts.Follow.Spine = *tc.FollowSpine
	}
	return opts
}

func applyFilter(p *filter.Params, minCutoff, beta *float64) {
	if minCutoff != nil {
		p.MinCutoff = *minCutoff
	}
	if beta != nil {
		p.Beta = *beta
	}
}

// SynthConfig renders the tuning into synthesiser defaults.
func (tc *TuningConfig) SynthConfig() synth.Config {
	cfg := synth.DefaultConfig()
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&cfg.Duration, tc.SynthDuration)
	set(&cfg.FPS, tc.SynthFPS)
	set(&cfg.Frequency, tc.SynthFrequency)
	set(&cfg.Energy, tc.SynthEnergy)
	set(&cfg.NoiseScale, tc.SynthNoiseScale)
	set(&cfg.CoreCoupling, tc.SynthCoreCoupling)
	return cfg
}
