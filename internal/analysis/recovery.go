package analysis

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/resilience/internal/dynamo"
)

var ErrNoRecovery = errors.New("analysis: separation collapsed before a rate could be fitted")

// RecoveryRate estimates how fast the system returns to eq after a small
// push, using the trajectory separation method:
//
// 1. Run the unperturbed and perturbed trajectories
// 2. Measure their separation |δx(t)| over the grid
// 3. Fit ln(|δx(t)|/|δx(0)|) ≈ -r t by least squares
//
// The returned r is positive for a stable equilibrium and shrinks towards
// zero as a fold bifurcation is approached. The simulator's system should be
// noise-free.
func RecoveryRate(ctx context.Context, sim *dynamo.Simulator, eq dynamo.State, grid dynamo.TimeGrid, perturbation float64) (float64, error) {
	if len(eq) == 0 || perturbation == 0 {
		return 0, dynamo.ErrParameterBounds
	}

	base, err := sim.Integrate(ctx, eq, grid)
	if err != nil {
		return 0, err
	}
	pushed := eq.Clone()
	pushed[0] += perturbation
	moved, err := sim.Integrate(ctx, pushed, grid)
	if err != nil {
		return 0, err
	}

	d0 := moved.States[0].Sub(base.States[0]).Norm()
	ts := make([]float64, 0, len(base.Times))
	logs := make([]float64, 0, len(base.Times))
	for i := range base.Times {
		sep := moved.States[i].Sub(base.States[i]).Norm()
		// stop once the separation is at rounding level
		if sep <= 1e-9*d0 {
			break
		}
		ts = append(ts, base.Times[i])
		logs = append(logs, math.Log(sep/d0))
	}
	if len(ts) < 2 {
		return 0, ErrNoRecovery
	}

	_, slope := stat.LinearRegression(ts, logs, nil, false)
	return -slope, nil
}

// ReturnTime is the e-folding time 1/r of a recovery rate.
func ReturnTime(rate float64) float64 {
	if rate <= 0 {
		return math.Inf(1)
	}
	return 1 / rate
}
