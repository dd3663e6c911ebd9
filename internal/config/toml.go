// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"trackos/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Tracking TrackingConfig `toml:"tracking"`
	Units    UnitsConfig    `toml:"units"`
	Calories CaloriesConfig `toml:"calories"`
}

// TrackingConfig maps day/week bucketing and PR settings.
type TrackingConfig struct {
	DayBoundaryHour *int     `toml:"day-boundary-hour"`
	WeekStartsOn    *int     `toml:"week-starts-on"`
	PRThresholdPct  *float64 `toml:"pr-threshold"`
	PinnedExercises []string `toml:"pinned-exercises"`
}

// UnitsConfig maps display units.
type UnitsConfig struct {
	BodyWeight *string `toml:"body-weight"`
	Load       *string `toml:"load"`
}

// CaloriesConfig maps calorie logging settings.
type CaloriesConfig struct {
	Presets     []int    `toml:"presets"`
	DailyTarget *float64 `toml:"daily-target"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Settings merges the file config over the defaults.
func (c FileConfig) Settings() model.Settings {
	s := model.DefaultSettings()
	if c.Tracking.DayBoundaryHour != nil {
		s.DayBoundaryHour = *c.Tracking.DayBoundaryHour
	}
	if c.Tracking.WeekStartsOn != nil {
		s.WeekStartsOn = *c.Tracking.WeekStartsOn
	}
	if c.Tracking.PRThresholdPct != nil {
		s.PRThresholdPct = *c.Tracking.PRThresholdPct
	}
	if len(c.Tracking.PinnedExercises) > 0 {
		s.PinnedExercises = c.Tracking.PinnedExercises
	}
	if c.Units.BodyWeight != nil {
		s.BodyWeightUnit = *c.Units.BodyWeight
	}
	if c.Units.Load != nil {
		s.LoadUnit = *c.Units.Load
	}
	if len(c.Calories.Presets) > 0 {
		s.CaloriePresets = c.Calories.Presets
	}
	if c.Calories.DailyTarget != nil {
		s.CalorieTarget = *c.Calories.DailyTarget
	}
	return s
}

// ValidateSettings checks settings that the analytics engine assumes were
// validated by the caller.
func ValidateSettings(s model.Settings) error {
	if s.DayBoundaryHour < 0 || s.DayBoundaryHour > 23 {
		return fmt.Errorf("day-boundary-hour must be between 0 and 23")
	}
	if s.WeekStartsOn != 0 && s.WeekStartsOn != 1 {
		return fmt.Errorf("week-starts-on must be 0 (Sunday) or 1 (Monday)")
	}
	if s.PRThresholdPct <= 0 {
		return fmt.Errorf("pr-threshold must be > 0")
	}
	if s.BodyWeightUnit != "lb" && s.BodyWeightUnit != "kg" {
		return fmt.Errorf("body-weight unit must be lb or kg")
	}
	if s.LoadUnit != "lb" && s.LoadUnit != "kg" {
		return fmt.Errorf("load unit must be lb or kg")
	}
	if s.CalorieTarget <= 0 {
		return fmt.Errorf("daily-target must be > 0")
	}
	return nil
}
