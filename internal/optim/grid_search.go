package optim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/resilience/internal/config"
	"github.com/san-kum/resilience/internal/experiment"
)

var (
	ErrUnknownParam  = errors.New("optim: unknown parameter")
	ErrUnknownMetric = errors.New("optim: metric not reported by the run")
)

// Params lists the exercise settings a grid search can vary.
var Params = []string{"c", "k", "x0", "noise"}

// Evaluation is one grid point and the metric it produced.
type Evaluation struct {
	Params map[string]float64
	Value  float64
}

// GridSearch runs an exercise at every combination of the parameter values
// and ranks the runs by one metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	limit      int
	logger     *slog.Logger
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, logger: slog.Default()}
}

// SetLimit bounds the number of concurrent runs; n <= 0 means GOMAXPROCS.
func (g *GridSearch) SetLimit(n int) { g.limit = n }

func (g *GridSearch) WithLogger(l *slog.Logger) *GridSearch {
	if l != nil {
		g.logger = l
	}
	return g
}

// Search evaluates every grid point against base and returns the point with
// the highest (maximize) or lowest metric, plus all evaluations in grid
// order. Runs whose metric is NaN never win.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string, maximize bool) (Evaluation, []Evaluation, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Evaluation{}, nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for _, name := range g.paramNames {
		if err := Apply(base.Clone(), name, 0); err != nil {
			return Evaluation{}, nil, err
		}
	}

	var points []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &points)

	evals := make([]Evaluation, len(points))
	limit := g.limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, p := range points {
		eg.Go(func() error {
			cfg := base.Clone()
			for name, v := range p {
				if err := Apply(cfg, name, v); err != nil {
					return err
				}
			}
			res, err := experiment.Run(ctx, cfg, g.logger)
			if err != nil {
				return fmt.Errorf("optim: %v: %w", p, err)
			}
			val, ok := res.Trajectory.Metrics[metricName]
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownMetric, metricName)
			}
			evals[i] = Evaluation{Params: p, Value: val}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Evaluation{}, nil, err
	}

	best := Evaluation{Value: math.NaN()}
	for _, e := range evals {
		if math.IsNaN(e.Value) {
			continue
		}
		if math.IsNaN(best.Value) || (maximize && e.Value > best.Value) || (!maximize && e.Value < best.Value) {
			best = e
		}
	}
	g.logger.Debug("grid search finished", "points", len(evals), "metric", metricName, "best", best.Value)
	return best, evals, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(depth+1, newParams, out)
	}
}

// Apply sets one named parameter on cfg. "noise" is the half-width of
// uniform noise or the standard deviation of normal noise.
func Apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case "c":
		cfg.Model.C = v
	case "k":
		cfg.Model.K = v
	case "x0":
		cfg.Model.X0 = v
	case "noise":
		switch cfg.Noise.Kind {
		case "normal":
			cfg.Noise.StdDev = v
		default:
			cfg.Noise.Kind = "uniform"
			cfg.Noise.Min, cfg.Noise.Max = -v, v
		}
	default:
		return fmt.Errorf("%w: %q (have %v)", ErrUnknownParam, name, Params)
	}
	return nil
}

// Range returns n evenly spaced values from lo to hi inclusive.
func Range(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
