package experiment

import (
	"fmt"

	"github.com/san-kum/resilience/internal/config"
	"github.com/san-kum/resilience/internal/dynamo"
	"github.com/san-kum/resilience/internal/forcing"
	"github.com/san-kum/resilience/internal/integrators"
	"github.com/san-kum/resilience/internal/metrics"
	"github.com/san-kum/resilience/internal/noise"
	"github.com/san-kum/resilience/internal/physics"
)

// NewNoise builds the noise source described by cfg, seeded with seed.
func NewNoise(cfg config.NoiseConfig, seed uint64) (noise.Source, error) {
	switch cfg.Kind {
	case "", "none":
		return noise.None{}, nil
	case "uniform":
		return noise.NewUniform(cfg.Min, cfg.Max, seed)
	case "normal":
		return noise.NewNormal(cfg.Mean, cfg.StdDev, seed)
	}
	return nil, fmt.Errorf("unknown noise kind: %s", cfg.Kind)
}

// NewForcing returns nil when cfg has no points, meaning the constant
// harvest rate applies.
func NewForcing(cfg config.ForcingConfig) (forcing.Func, error) {
	if len(cfg.Points) == 0 {
		return nil, nil
	}
	policy, err := forcing.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	return forcing.NewTable(cfg.Points, policy)
}

// NewSystem assembles the fishery model for one run.
func NewSystem(cfg *config.Config, seed uint64) (*physics.Fishery, error) {
	f := physics.NewFishery(cfg.Model.K, cfg.Model.C)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	fn, err := NewForcing(cfg.Forcing)
	if err != nil {
		return nil, err
	}
	if fn != nil {
		f.Forcing = fn
	}
	src, err := NewNoise(cfg.Noise, seed)
	if err != nil {
		return nil, err
	}
	f.Noise = src
	return f, nil
}

// NewSimulator wires system, integrator, the default metrics and the
// fishery yield. The stability metric is centred on the upper stable
// equilibrium for the initial harvest rate when one exists.
func NewSimulator(cfg *config.Config, seed uint64) (*dynamo.Simulator, error) {
	f, err := NewSystem(cfg, seed)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	s := dynamo.New(f, integ)
	for _, m := range metrics.Defaults(upperEquilibrium(cfg)) {
		s.AddMetric(m)
	}
	s.AddMetric(metrics.NewYield(f.HarvestRate))
	return s, nil
}
