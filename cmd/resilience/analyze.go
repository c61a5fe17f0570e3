package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/san-kum/resilience/internal/analysis"
	"github.com/san-kum/resilience/internal/config"
	"github.com/san-kum/resilience/internal/dynamo"
	"github.com/san-kum/resilience/internal/integrators"
	"github.com/san-kum/resilience/internal/physics"
	"github.com/san-kum/resilience/internal/viz"
)

var (
	cMin, cMax   float64
	cSteps       int
	brute        bool
	potentialAt  float64
	harvestRates []float64
	push         float64
	horizon      float64

	diagramWidth, diagramHeight int
)

func bifurcationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&k, "k", config.DefaultK, "carrying capacity K")
	f.Float64Var(&cMin, "c-min", 0.5, "lowest harvest rate")
	f.Float64Var(&cMax, "c-max", 3.5, "highest harvest rate")
	f.IntVar(&cSteps, "steps", 301, "harvest rates in the sweep")
	f.BoolVar(&brute, "brute", false, "also integrate from x0 at each c (slow)")
	f.Float64Var(&potentialAt, "potential", 0, "draw the potential at this harvest rate")
	f.IntVar(&diagramWidth, "width", 80, "chart width")
	f.IntVar(&diagramHeight, "height", 16, "chart height")
}

func recoveryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&k, "k", config.DefaultK, "carrying capacity K")
	f.Float64SliceVar(&harvestRates, "c", []float64{1, 1.5, 2, 2.3, 2.5, 2.55}, "harvest rates")
	f.Float64Var(&push, "push", 0.05, "size of the perturbation")
	f.Float64Var(&horizon, "horizon", 40, "observation time after the push")
	f.Float64Var(&dt, "dt", config.DefaultDt, "integration step")
}

func fisheryRHS(f *physics.Fishery) analysis.ParamRHS {
	return func(c, x float64) float64 { return f.Growth(x, c) }
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	fish := physics.NewFishery(k, cMin)
	if err := fish.Validate(); err != nil {
		return err
	}
	if cMax <= cMin {
		return fmt.Errorf("%w: c-max must exceed c-min", config.ErrInvalidConfig)
	}

	diagram := analysis.FoldDiagram(fisheryRHS(fish), cMin, cMax, cSteps, 1e-6, 1.5*k, 2000)
	folds := analysis.FoldPoints(diagram)

	var cs, xs []float64
	for _, bp := range diagram {
		for _, e := range analysis.Stable(bp.Equilibria) {
			cs = append(cs, bp.Param)
			xs = append(xs, e.X)
		}
	}

	fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("stable equilibria, c in [%g, %g], K=%g", cMin, cMax, k)))
	fmt.Println(viz.Scatter(cs, xs, diagramWidth, diagramHeight).String())
	if len(folds) == 0 {
		fmt.Println("no fold in range")
	}
	for _, p := range folds {
		fmt.Printf("fold near c=%.3f\n", p)
	}

	if brute {
		integ, err := integrators.Get("rk4")
		if err != nil {
			return err
		}
		logger.Info("brute-force sweep", "steps", cSteps)
		points, err := analysis.BifurcationDiagram(cmd.Context(), fish, integ, "c", cMin, cMax, cSteps, 0,
			dynamo.State{fish.K * 0.8}, 0.05, 200, 20)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(viz.HeaderStyle.Render("settled stock from x0=0.8K"))
		fmt.Println(analysis.BifurcationToASCII(points, diagramWidth, diagramHeight))
	}

	if potentialAt > 0 {
		pot := analysis.Potential(func(x float64) float64 { return fish.Growth(x, potentialAt) }, 0, 1.2*k, 4*diagramWidth)
		fmt.Println()
		fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("potential V(x) at c=%g", potentialAt)))
		fmt.Println(analysis.CurveToASCII(pot, diagramWidth, diagramHeight))
	}
	return nil
}

func runRecovery(cmd *cobra.Command, args []string) error {
	integ, err := integrators.Get("rk4")
	if err != nil {
		return err
	}
	grid, err := dynamo.UniformGrid(0, horizon, dt)
	if err != nil {
		return err
	}

	fmt.Printf("%-8s %-10s %-10s %s\n", "c", "x*", "rate", "return time")
	for _, hc := range harvestRates {
		fish := physics.NewFishery(k, hc)
		if err := fish.Validate(); err != nil {
			return err
		}
		stable := analysis.Stable(analysis.Equilibria(func(x float64) float64 { return fish.Growth(x, hc) }, 1e-6, 1.5*k, 2000))
		if len(stable) == 0 {
			logger.Warn("no stable equilibrium", "c", hc)
			continue
		}
		eq := stable[len(stable)-1].X

		sim := dynamo.New(fish, integ).WithLogger(logger)
		rate, err := analysis.RecoveryRate(cmd.Context(), sim, dynamo.State{eq}, grid, push)
		if err != nil {
			return fmt.Errorf("c=%g: %w", hc, err)
		}
		rt := analysis.ReturnTime(rate)
		rtText := "∞"
		if !math.IsInf(rt, 1) {
			rtText = fmt.Sprintf("%.2f", rt)
		}
		fmt.Printf("%-8g %-10.4f %-10.4f %s\n", hc, eq, rate, rtText)
	}
	return nil
}
