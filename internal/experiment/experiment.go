package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/resilience/internal/analysis"
	"github.com/san-kum/resilience/internal/config"
	"github.com/san-kum/resilience/internal/dynamo"
	"github.com/san-kum/resilience/internal/ews"
	"github.com/san-kum/resilience/internal/physics"
	"github.com/san-kum/resilience/internal/series"
)

// Result is everything one exercise produces.
type Result struct {
	Name       string
	Seed       uint64
	Trajectory *dynamo.Trajectory
	// Selected is the analysed segment of the stock after thinning.
	Selected series.Series
	EWS      *ews.Result
}

type Experiment struct {
	cfg       *config.Config
	simulator *dynamo.Simulator
	logger    *slog.Logger
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

func (e *Experiment) WithLogger(l *slog.Logger) *Experiment {
	if l != nil {
		e.logger = l
	}
	return e
}

// Setup validates the configuration and builds the simulator.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	s, err := NewSimulator(e.cfg, e.cfg.Seed)
	if err != nil {
		return err
	}
	e.simulator = s.WithLogger(e.logger)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	grid, err := Grid(e.cfg)
	if err != nil {
		return nil, err
	}
	traj, err := e.simulator.Integrate(ctx, dynamo.State{e.cfg.Model.X0}, grid)
	if err != nil {
		return nil, err
	}

	selected, res, err := Analyze(e.cfg, traj)
	if err != nil {
		return nil, err
	}

	e.logger.Info("exercise finished",
		"name", e.cfg.Name,
		"seed", e.cfg.Seed,
		"points", traj.Len(),
		"analysed", selected.Len(),
		"windows", res.Len(),
		"clamped", traj.Clamped,
	)

	return &Result{
		Name:       e.cfg.Name,
		Seed:       e.cfg.Seed,
		Trajectory: traj,
		Selected:   selected,
		EWS:        res,
	}, nil
}

// GetSimulator returns the underlying simulator for adding metrics.
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}

// Run is New, Setup and Run in one call.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	e := New(cfg).WithLogger(logger)
	if err := e.Setup(); err != nil {
		return nil, err
	}
	return e.Run(ctx)
}

// Grid is the uniform integration grid of cfg.
func Grid(cfg *config.Config) (dynamo.TimeGrid, error) {
	return dynamo.UniformGrid(cfg.Start, cfg.End(), cfg.Dt)
}

// Select cuts the configured segment out of the stock trajectory and thins
// it.
func Select(cfg *config.Config, traj *dynamo.Trajectory) series.Series {
	return traj.Component(0).
		Between(cfg.Selection.From, cfg.SelectionEnd()).
		Thin(cfg.Selection.Thin)
}

// Options resolves the EWS options for a series of n points.
func Options(cfg *config.Config, n int) (ews.Options, error) {
	method, err := ews.ParseMethod(cfg.EWS.Detrend)
	if err != nil {
		return ews.Options{}, err
	}
	w := cfg.EWS.Window
	if w <= 0 {
		w = ews.WindowFromFraction(n, cfg.EWS.WindowFraction)
	}
	return ews.Options{
		Window:     w,
		Detrend:    method,
		Bandwidth:  cfg.EWS.Bandwidth,
		Indicators: cfg.EWS.Indicators,
	}, nil
}

// Analyze selects the analysed segment of traj and computes its EWS.
func Analyze(cfg *config.Config, traj *dynamo.Trajectory) (series.Series, *ews.Result, error) {
	selected := Select(cfg, traj)
	opts, err := Options(cfg, selected.Len())
	if err != nil {
		return series.Series{}, nil, err
	}
	res, err := ews.Compute(selected, opts)
	if err != nil {
		return series.Series{}, nil, err
	}
	return selected, res, nil
}

// RunEnsemble repeats cfg over runs consecutive seeds starting at cfg.Seed
// and analyses each member. Results are ordered by seed.
func RunEnsemble(ctx context.Context, cfg *config.Config, runs, limit int, logger *slog.Logger) ([]*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	grid, err := Grid(cfg)
	if err != nil {
		return nil, err
	}

	ens := dynamo.NewEnsemble(func(seed uint64) (*dynamo.Simulator, error) {
		s, err := NewSimulator(cfg, seed)
		if err != nil {
			return nil, err
		}
		return s.WithLogger(logger), nil
	}, runs, cfg.Seed)
	ens.SetLimit(limit)

	trajs, err := ens.Run(ctx, dynamo.State{cfg.Model.X0}, grid)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, len(trajs))
	for i, traj := range trajs {
		selected, res, err := Analyze(cfg, traj)
		if err != nil {
			return nil, fmt.Errorf("ensemble member %d: %w", i, err)
		}
		out[i] = &Result{
			Name:       cfg.Name,
			Seed:       cfg.Seed + uint64(i),
			Trajectory: traj,
			Selected:   selected,
			EWS:        res,
		}
	}
	logger.Info("ensemble finished", "name", cfg.Name, "runs", runs)
	return out, nil
}

// Compare runs several exercises side by side, in parallel, returning the
// results in input order.
func Compare(ctx context.Context, cfgs []*config.Config, logger *slog.Logger) ([]*Result, error) {
	out := make([]*Result, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, cfg := range cfgs {
		g.Go(func() error {
			res, err := Run(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("exercise %q: %w", cfg.Name, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// upperEquilibrium is the largest stable equilibrium of the noise-free model
// at the initial harvest rate, or K when none is found.
func upperEquilibrium(cfg *config.Config) float64 {
	k, c := cfg.Model.K, cfg.Model.C
	if len(cfg.Forcing.Points) > 0 {
		c = cfg.Forcing.Points[0].Value
	}
	fish := physics.NewFishery(k, c)
	f := func(x float64) float64 { return fish.Growth(x, c) }
	stable := analysis.Stable(analysis.Equilibria(f, 1e-6, 1.5*k, 2000))
	if len(stable) == 0 || math.IsNaN(stable[len(stable)-1].X) {
		return k
	}
	return stable[len(stable)-1].X
}
