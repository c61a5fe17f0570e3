package config

import (
	"sort"

	"github.com/san-kum/resilience/internal/forcing"
)

// Presets are the canned exercises: the two constant-harvest regimes either
// side of the upper fold, a slow ramp towards it and a ramp through it.
var Presets = map[string]*Config{
	"stable": {
		Name:       "stable",
		Model:      ModelConfig{K: 10, C: 1, X0: 8},
		Integrator: "rk4", Dt: 0.01, Duration: 600, Seed: 1,
		Noise:     NoiseConfig{Kind: "uniform", Min: -1, Max: 1},
		Selection: SelectionConfig{From: 100, Thin: 100},
		EWS:       EWSConfig{WindowFraction: 0.5, Detrend: "none"},
	},
	"near-fold": {
		Name:       "near-fold",
		Model:      ModelConfig{K: 10, C: 2.5, X0: 8},
		Integrator: "rk4", Dt: 0.01, Duration: 600, Seed: 1,
		Noise:     NoiseConfig{Kind: "uniform", Min: -1, Max: 1},
		Selection: SelectionConfig{From: 100, Thin: 100},
		EWS:       EWSConfig{WindowFraction: 0.5, Detrend: "none"},
	},
	"ramp": {
		Name:       "ramp",
		Model:      ModelConfig{K: 10, C: 1, X0: 8},
		Integrator: "rk4", Dt: 0.01, Duration: 1000, Seed: 1,
		Noise:     NoiseConfig{Kind: "uniform", Min: -4, Max: 4},
		Forcing:   ForcingConfig{Points: []forcing.Point{{Time: 0, Value: 1}, {Time: 1000, Value: 2.5}}},
		Selection: SelectionConfig{From: 0, Thin: 100},
		EWS:       EWSConfig{Window: 200, Detrend: "gaussian", Bandwidth: 20},
	},
	"collapse": {
		Name:       "collapse",
		Model:      ModelConfig{K: 10, C: 1, X0: 8},
		Integrator: "rk4", Dt: 0.01, Duration: 1000, Seed: 1,
		Noise:     NoiseConfig{Kind: "uniform", Min: -1, Max: 1},
		Forcing:   ForcingConfig{Points: []forcing.Point{{Time: 0, Value: 1}, {Time: 1000, Value: 3}}},
		Selection: SelectionConfig{From: 0, Thin: 100},
		EWS:       EWSConfig{WindowFraction: 0.25, Detrend: "gaussian", Bandwidth: 20},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
