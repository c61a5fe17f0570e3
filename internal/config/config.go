package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/resilience/internal/forcing"
)

const (
	DefaultK        = 10.0
	DefaultC        = 1.0
	DefaultX0       = 8.0
	DefaultDt       = 0.01
	DefaultDuration = 600.0
	DefaultThin     = 100
	DefaultNoise    = 1.0
	DefaultWindow   = 0.5
)

var ErrInvalidConfig = errors.New("config: invalid exercise configuration")

// Config describes one exercise: the model, how it is integrated, which part
// of the trajectory is analysed and how.
type Config struct {
	Name       string          `yaml:"name,omitempty"`
	Model      ModelConfig     `yaml:"model"`
	Integrator string          `yaml:"integrator"`
	Dt         float64         `yaml:"dt"`
	Start      float64         `yaml:"start"`
	Duration   float64         `yaml:"duration"`
	Seed       uint64          `yaml:"seed"`
	Noise      NoiseConfig     `yaml:"noise"`
	Forcing    ForcingConfig   `yaml:"forcing,omitempty"`
	Selection  SelectionConfig `yaml:"selection"`
	EWS        EWSConfig       `yaml:"ews"`
}

type ModelConfig struct {
	K  float64 `yaml:"k"`
	C  float64 `yaml:"c"`
	X0 float64 `yaml:"x0"`
}

// NoiseConfig selects the process noise. Kind is "uniform", "normal" or
// "none".
type NoiseConfig struct {
	Kind   string  `yaml:"kind"`
	Min    float64 `yaml:"min,omitempty"`
	Max    float64 `yaml:"max,omitempty"`
	Mean   float64 `yaml:"mean,omitempty"`
	StdDev float64 `yaml:"stddev,omitempty"`
}

// ForcingConfig replaces the constant harvest rate when Points is non-empty.
type ForcingConfig struct {
	Policy string          `yaml:"policy,omitempty"`
	Points []forcing.Point `yaml:"points,omitempty"`
}

// SelectionConfig picks the analysed segment. To <= From selects up to the
// end of the run. Thin keeps every Thin-th point.
type SelectionConfig struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to,omitempty"`
	Thin int     `yaml:"thin"`
}

// EWSConfig sets the rolling analysis. Window, when positive, is in samples
// and wins over WindowFraction.
type EWSConfig struct {
	Window         int      `yaml:"window,omitempty"`
	WindowFraction float64  `yaml:"window_fraction,omitempty"`
	Detrend        string   `yaml:"detrend"`
	Bandwidth      float64  `yaml:"bandwidth,omitempty"`
	Indicators     []string `yaml:"indicators,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			K:  DefaultK,
			C:  DefaultC,
			X0: DefaultX0,
		},
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Seed:       1,
		Noise:      NoiseConfig{Kind: "uniform", Min: -DefaultNoise, Max: DefaultNoise},
		Selection:  SelectionConfig{From: 100, Thin: DefaultThin},
		EWS: EWSConfig{
			WindowFraction: DefaultWindow,
			Detrend:        "none",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// End is the last integration time.
func (c *Config) End() float64 { return c.Start + c.Duration }

// SelectionEnd resolves an open-ended selection to the end of the run.
func (c *Config) SelectionEnd() float64 {
	if c.Selection.To <= c.Selection.From {
		return c.End()
	}
	return c.Selection.To
}

// Validate reports the first structural problem. Numeric edge cases that the
// packages handle themselves (empty windows, out-of-range forcing) pass.
func (c *Config) Validate() error {
	switch {
	case c.Model.K <= 0:
		return fmt.Errorf("%w: model.k must be positive, got %g", ErrInvalidConfig, c.Model.K)
	case c.Model.C < 0:
		return fmt.Errorf("%w: model.c must not be negative, got %g", ErrInvalidConfig, c.Model.C)
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	case c.Selection.Thin < 0:
		return fmt.Errorf("%w: selection.thin must not be negative", ErrInvalidConfig)
	}
	switch c.Noise.Kind {
	case "", "none", "normal":
	case "uniform":
		if c.Noise.Max < c.Noise.Min {
			return fmt.Errorf("%w: noise.max below noise.min", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown noise kind %q", ErrInvalidConfig, c.Noise.Kind)
	}
	if _, err := forcing.ParsePolicy(c.Forcing.Policy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Forcing.Points = append([]forcing.Point(nil), c.Forcing.Points...)
	cp.EWS.Indicators = append([]string(nil), c.EWS.Indicators...)
	return &cp
}
