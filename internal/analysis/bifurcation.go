package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/resilience/internal/dynamo"
)

// BifurcationPoint represents the settled states for a given parameter value
type BifurcationPoint struct {
	Param  float64
	Values []float64 // distinct settled values found
}

// SweepSystem is a system whose parameters can be changed between runs.
type SweepSystem interface {
	dynamo.System
	dynamo.Configurable
}

// BifurcationDiagram sweeps a parameter and records the states the system
// settles into from x0.
//
// Parameters:
// - dyn: system with Configurable interface
// - integ: integrator to use
// - paramName: name of parameter to sweep
// - paramMin, paramMax: range to sweep
// - paramSteps: number of parameter values to test
// - stateIndex: which state variable to record
// - dt, transient, record: timing parameters
//
// The parameter is restored to its original value afterwards.
func BifurcationDiagram(
	ctx context.Context,
	dyn SweepSystem,
	integ dynamo.Integrator,
	paramName string,
	paramMin, paramMax float64,
	paramSteps int,
	stateIndex int,
	x0 dynamo.State,
	dt, transient, record float64,
) (results []BifurcationPoint, err error) {
	original, ok := dyn.GetParams()[paramName]
	if !ok {
		return nil, fmt.Errorf("analysis: unknown parameter %q", paramName)
	}
	defer func() {
		if rerr := dyn.SetParam(paramName, original); rerr != nil && err == nil {
			results, err = nil, fmt.Errorf("analysis: restore %s=%g: %w", paramName, original, rerr)
		}
	}()

	if paramSteps <= 1 {
		paramSteps = 2 // Prevent division by zero
	}
	paramStep := (paramMax - paramMin) / float64(paramSteps-1)

	grid, err := dynamo.UniformGrid(0, transient+record, dt)
	if err != nil {
		return nil, err
	}
	sim := dynamo.New(dyn, integ)

	results = make([]BifurcationPoint, 0, paramSteps)
	for i := 0; i < paramSteps; i++ {
		param := paramMin + float64(i)*paramStep
		if err := dyn.SetParam(paramName, param); err != nil {
			return nil, err
		}

		traj, err := sim.Integrate(ctx, x0, grid)
		if err != nil {
			return nil, fmt.Errorf("analysis: %s=%g: %w", paramName, param, err)
		}

		// Record settled values, quantized to find distinct ones
		values := make([]float64, 0, 4)
		seen := make(map[int64]bool)
		for k, t := range traj.Times {
			if t < transient || stateIndex >= len(traj.States[k]) {
				continue
			}
			val := traj.States[k][stateIndex]
			key := int64(math.Round(val * 1000))
			if !seen[key] {
				seen[key] = true
				values = append(values, val)
			}
		}

		results = append(results, BifurcationPoint{
			Param:  param,
			Values: values,
		})
	}

	return results, nil
}

// BranchPoint holds the equilibria found at one parameter value.
type BranchPoint struct {
	Param      float64
	Equilibria []Equilibrium
}

// ParamRHS is a right-hand side parameterized by a scalar.
type ParamRHS func(param, x float64) float64

// FoldDiagram computes the equilibrium branches of rhs for each parameter
// value by root finding on [xLo, xHi].
func FoldDiagram(rhs ParamRHS, paramMin, paramMax float64, paramSteps int, xLo, xHi float64, samples int) []BranchPoint {
	if paramSteps <= 1 {
		paramSteps = 2
	}
	step := (paramMax - paramMin) / float64(paramSteps-1)
	out := make([]BranchPoint, 0, paramSteps)
	for i := 0; i < paramSteps; i++ {
		p := paramMin + float64(i)*step
		f := func(x float64) float64 { return rhs(p, x) }
		out = append(out, BranchPoint{Param: p, Equilibria: Equilibria(f, xLo, xHi, samples)})
	}
	return out
}

// FoldPoints returns the parameter values at which the number of stable
// equilibria changes between consecutive sweep points (midpoint of the pair).
func FoldPoints(diagram []BranchPoint) []float64 {
	var out []float64
	for i := 1; i < len(diagram); i++ {
		if len(Stable(diagram[i].Equilibria)) != len(Stable(diagram[i-1].Equilibria)) {
			out = append(out, 0.5*(diagram[i].Param+diagram[i-1].Param))
		}
	}
	return out
}

// ToBifurcationPoints keeps the stable equilibria of a fold diagram so it can
// be drawn with BifurcationToASCII.
func ToBifurcationPoints(diagram []BranchPoint) []BifurcationPoint {
	out := make([]BifurcationPoint, len(diagram))
	for i, bp := range diagram {
		vals := make([]float64, 0, len(bp.Equilibria))
		for _, e := range Stable(bp.Equilibria) {
			vals = append(vals, e.X)
		}
		out[i] = BifurcationPoint{Param: bp.Param, Values: vals}
	}
	return out
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	// Find value range - need at least one valid value
	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
			} else {
				minVal = math.Min(minVal, v)
				maxVal = math.Max(maxVal, v)
			}
		}
	}
	if !foundFirst {
		return ""
	}

	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}

		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
