// Copyright © 2024 Galvanized Logic Inc.

package space

import (
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig describes one physics engine's spatial volume and
// sub-stepping behaviour (spec.md §6 "arena size and physics engines
// (id, type, optional volume boundary polygon)"; the XML scene
// front-end that produces this shape is out of scope, only the struct
// tree it would populate lives here — see SPEC_FULL.md §10.3).
type EngineConfig struct {
	ID       string  `yaml:"id"`
	Type     string  `yaml:"type"`
	MinX     float64 `yaml:"min_x"`
	MinY     float64 `yaml:"min_y"`
	MinZ     float64 `yaml:"min_z"`
	MaxX     float64 `yaml:"max_x"`
	MaxY     float64 `yaml:"max_y"`
	MaxZ     float64 `yaml:"max_z"`
	TickSecs float64 `yaml:"tick_seconds"`
}

// BalanceMode names one of the three strategies from spec.md §4.7.
type BalanceMode string

const (
	ScatterGather   BalanceMode = "scatter_gather"
	BalanceQuantity BalanceMode = "balance_quantity"
	BalanceLength   BalanceMode = "balance_length"
)

// SceneConfig is the top-level configuration a YAML file (or, when
// wired up, the out-of-scope XML scene parser) populates.
type SceneConfig struct {
	Workers int            `yaml:"workers"`
	Balance BalanceMode    `yaml:"balance"`
	Engines []EngineConfig `yaml:"engines"`

	// Sub-stepping thresholds (spec.md §4.7); zero values fall back to
	// the spec's defaults in DefaultSceneConfig.
	SubStepSpeedThreshold float64 `yaml:"sub_step_speed_threshold"`
	SubStepsLow           int     `yaml:"sub_steps_low"`
	SubStepsHigh          int     `yaml:"sub_steps_high"`
}

// DefaultSceneConfig returns the spec.md §4.7 defaults: v_th=5m/s,
// k_low=3, k_high=1, scatter-gather balancing, no workers (inline).
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Workers:               0,
		Balance:               ScatterGather,
		SubStepSpeedThreshold: 5.0,
		SubStepsLow:           3,
		SubStepsHigh:          1,
	}
}

// LoadSceneConfig reads and validates a YAML scene configuration file,
// filling in spec.md §4.7 defaults for any zero-valued field.
func LoadSceneConfig(path string) (SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneConfig{}, err
	}
	cfg := DefaultSceneConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SceneConfig{}, err
	}
	if cfg.SubStepsLow == 0 {
		cfg.SubStepsLow = 3
	}
	if cfg.SubStepsHigh == 0 {
		cfg.SubStepsHigh = 1
	}
	if cfg.SubStepSpeedThreshold == 0 {
		cfg.SubStepSpeedThreshold = 5.0
	}
	return cfg, nil
}
