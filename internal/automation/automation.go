package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/resilience/internal/analysis"
	"github.com/san-kum/resilience/internal/config"
	"github.com/san-kum/resilience/internal/dynamo"
	"github.com/san-kum/resilience/internal/experiment"
	"github.com/san-kum/resilience/internal/optim"
	"github.com/san-kum/resilience/internal/physics"
	"github.com/san-kum/resilience/internal/storage"
)

var ErrEmptyStep = errors.New("automation: step names neither a preset nor a config file")

// Scenario is a scripted sequence of exercises, typically one lesson.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one exercise in a scenario. The base configuration comes from
// Preset or Config; Params (see optim.Params), Duration and Seed override it.
type Step struct {
	Preset   string             `yaml:"preset"`
	Config   string             `yaml:"config"`
	Params   map[string]float64 `yaml:"params"`
	Duration float64            `yaml:"duration"`
	Seed     uint64             `yaml:"seed"`
	// Runs > 1 repeats the step over consecutive seeds.
	Runs   int    `yaml:"runs"`
	SaveAs string `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("automation: parse %s: %w", path, err)
	}

	return &scenario, nil
}

// Resolve builds the configuration of one step.
func (s Step) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("automation: unknown preset %q", s.Preset)
		}
	default:
		return nil, ErrEmptyStep
	}

	for name, v := range s.Params {
		if err := optim.Apply(cfg, name, v); err != nil {
			return nil, err
		}
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, cfg.Validate()
}

// RunScenario executes the steps in order. Steps with SaveAs are written to
// store when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, logger *slog.Logger) ([]*experiment.Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]*experiment.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "exercise", cfg.Name)

		var stepResults []*experiment.Result
		if step.Runs > 1 {
			stepResults, err = experiment.RunEnsemble(ctx, cfg, step.Runs, 0, logger)
		} else {
			var res *experiment.Result
			res, err = experiment.Run(ctx, cfg, logger)
			stepResults = []*experiment.Result{res}
		}
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		if store != nil && step.SaveAs != "" {
			for _, res := range stepResults {
				meta := storage.RunMetadata{
					Name:       cfg.Name,
					Seed:       res.Seed,
					K:          cfg.Model.K,
					C:          cfg.Model.C,
					Dt:         cfg.Dt,
					Duration:   cfg.Duration,
					Integrator: cfg.Integrator,
				}
				runID, err := store.Save(meta, res.Trajectory, res.EWS)
				if err != nil {
					return results, fmt.Errorf("step %d save: %w", i+1, err)
				}
				logger.Debug("step saved", "id", runID)
			}
		}

		results = append(results, stepResults...)
	}

	return results, nil
}

// BasinResult is one Monte Carlo trial of a basin-stability estimate.
type BasinResult struct {
	Trial     int
	X0        float64
	Final     float64
	Recovered bool // ended on the upper branch
}

// Threshold is the largest unstable equilibrium of the noise-free fishery at
// harvest rate c: stocks above it return to the upper branch. It is zero
// below the lower fold, where the upper branch is the only attractor, and
// +Inf past the upper fold, where the upper branch no longer exists.
func Threshold(k, c float64) float64 {
	fish := physics.NewFishery(k, c)
	rhs := func(p, x float64) float64 { return fish.Growth(x, p) }

	// Raising c from zero, the lower branch appears at the lower fold
	// (stable count 1 to 2) and the upper one vanishes at the upper fold
	// (2 to 1).
	diagram := analysis.FoldDiagram(rhs, 0, c, 400, 1e-6, 1.5*k, 2000)
	for i := 1; i < len(diagram); i++ {
		if len(analysis.Stable(diagram[i].Equilibria)) < len(analysis.Stable(diagram[i-1].Equilibria)) {
			return math.Inf(1)
		}
	}

	th := 0.0
	for _, e := range diagram[len(diagram)-1].Equilibria {
		if !e.Stable && e.X > th {
			th = e.X
		}
	}
	return th
}

// RunBasin starts trials runs of cfg from x0 drawn uniformly in
// [X0-spread, X0+spread] (floored at zero) and reports, for each, whether
// the stock ended above the threshold between the two stable branches.
// Past the upper fold no trial can recover.
// Trial i uses noise seed cfg.Seed+i; the initial states come from a PCG
// stream seeded with cfg.Seed.
func RunBasin(ctx context.Context, cfg *config.Config, trials int, spread float64, limit int) ([]BasinResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if trials <= 0 {
		return nil, nil
	}
	grid, err := experiment.Grid(cfg)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, 0x6261736e))
	starts := make([]float64, trials)
	for i := range starts {
		starts[i] = math.Max(0, cfg.Model.X0+(rng.Float64()*2-1)*spread)
	}

	c := cfg.Model.C
	if len(cfg.Forcing.Points) > 0 {
		c = cfg.Forcing.Points[len(cfg.Forcing.Points)-1].Value
	}
	threshold := Threshold(cfg.Model.K, c)

	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]BasinResult, trials)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, x0 := range starts {
		g.Go(func() error {
			sim, err := experiment.NewSimulator(cfg, cfg.Seed+uint64(i))
			if err != nil {
				return err
			}
			traj, err := sim.Integrate(ctx, dynamo.State{x0}, grid)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			final := traj.Final()[0]
			results[i] = BasinResult{Trial: i, X0: x0, Final: final, Recovered: final > threshold}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BasinStability is the fraction of trials that recovered.
func BasinStability(results []BasinResult) float64 {
	if len(results) == 0 {
		return math.NaN()
	}
	recovered := 0
	for _, r := range results {
		if r.Recovered {
			recovered++
		}
	}
	return float64(recovered) / float64(len(results))
}
