package config

import (
	"os"
	"path/filepath"
	"testing"

	"trackos/internal/model"
)

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	s := cfg.Settings()
	defaults := model.DefaultSettings()
	if s.DayBoundaryHour != defaults.DayBoundaryHour || s.CalorieTarget != defaults.CalorieTarget {
		t.Fatalf("empty config should yield defaults, got %+v", s)
	}
}

func TestSettingsMergeOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[tracking]
day-boundary-hour = 0
week-starts-on = 0
pinned-exercises = ["ex1", "ex2"]

[units]
body-weight = "kg"

[calories]
daily-target = 2200
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	s := cfg.Settings()
	if s.DayBoundaryHour != 0 {
		t.Fatalf("day boundary = %d, want 0", s.DayBoundaryHour)
	}
	if s.WeekStartsOn != 0 {
		t.Fatalf("week starts on = %d, want 0", s.WeekStartsOn)
	}
	if s.BodyWeightUnit != "kg" {
		t.Fatalf("body weight unit = %q, want kg", s.BodyWeightUnit)
	}
	if s.CalorieTarget != 2200 {
		t.Fatalf("calorie target = %v, want 2200", s.CalorieTarget)
	}
	if len(s.PinnedExercises) != 2 || s.PinnedExercises[0] != "ex1" {
		t.Fatalf("pinned = %v", s.PinnedExercises)
	}
	// Untouched keys keep their defaults.
	if s.PRThresholdPct != model.DefaultSettings().PRThresholdPct {
		t.Fatalf("pr threshold = %v, want default", s.PRThresholdPct)
	}
	if s.LoadUnit != "lb" {
		t.Fatalf("load unit = %q, want lb", s.LoadUnit)
	}
}

func TestLoadConfigRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[tracking\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestValidateSettings(t *testing.T) {
	good := model.DefaultSettings()
	if err := ValidateSettings(good); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cases := []struct {
		name   string
		mutate func(*model.Settings)
	}{
		{"hour too high", func(s *model.Settings) { s.DayBoundaryHour = 24 }},
		{"hour negative", func(s *model.Settings) { s.DayBoundaryHour = -1 }},
		{"bad week start", func(s *model.Settings) { s.WeekStartsOn = 2 }},
		{"zero pr threshold", func(s *model.Settings) { s.PRThresholdPct = 0 }},
		{"bad weight unit", func(s *model.Settings) { s.BodyWeightUnit = "stone" }},
		{"bad load unit", func(s *model.Settings) { s.LoadUnit = "" }},
		{"zero calorie target", func(s *model.Settings) { s.CalorieTarget = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := model.DefaultSettings()
			tc.mutate(&s)
			if err := ValidateSettings(s); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
