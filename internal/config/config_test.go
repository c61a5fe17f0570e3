package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model.K != 10 {
		t.Errorf("expected K 10, got %g", cfg.Model.K)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("near-fold")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Model.C != 2.5 {
		t.Errorf("expected c 2.5, got %g", cfg.Model.C)
	}
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	cfg := GetPreset("ramp")
	cfg.Forcing.Points[0].Value = 99
	cfg.Model.C = 7

	again := GetPreset("ramp")
	if again.Forcing.Points[0].Value != 1 || again.Model.C != 1 {
		t.Error("preset mutated through returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	want := []string{"collapse", "near-fold", "ramp", "stable"}
	got := ListPresets()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero K", func(c *Config) { c.Model.K = 0 }},
		{"negative c", func(c *Config) { c.Model.C = -1 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"inverted noise", func(c *Config) { c.Noise.Min, c.Noise.Max = 1, -1 }},
		{"unknown noise", func(c *Config) { c.Noise.Kind = "pink" }},
		{"unknown policy", func(c *Config) { c.Forcing.Policy = "wrap" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ramp.yaml")
	if err := Save(path, GetPreset("ramp")); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EWS.Detrend != "gaussian" || cfg.EWS.Bandwidth != 20 {
		t.Errorf("ews section lost: %+v", cfg.EWS)
	}
	if len(cfg.Forcing.Points) != 2 || cfg.Forcing.Points[1].Value != 2.5 {
		t.Errorf("forcing lost: %+v", cfg.Forcing)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("model:\n  k: 10\n  c: 2.5\n  x0: 8\nseed: 9\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.C != 2.5 || cfg.Seed != 9 {
		t.Errorf("file values not applied: %+v", cfg.Model)
	}
	if cfg.Dt != DefaultDt || cfg.Integrator != "rk4" {
		t.Errorf("defaults not kept: dt=%g integrator=%s", cfg.Dt, cfg.Integrator)
	}
}

func TestSelectionEnd(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.SelectionEnd(); got != cfg.End() {
		t.Errorf("open selection should end at %g, got %g", cfg.End(), got)
	}
	cfg.Selection.To = 300
	if got := cfg.SelectionEnd(); got != 300 {
		t.Errorf("expected 300, got %g", got)
	}
}
