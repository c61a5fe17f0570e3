package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/resilience/internal/automation"
	"github.com/san-kum/resilience/internal/storage"
	"github.com/san-kum/resilience/internal/viz"
)

var (
	trials int
	spread float64
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunScenario(cmd.Context(), sc, st, logger)
	if err != nil {
		return err
	}
	if sc.Description != "" {
		fmt.Println(viz.Subtle.Render(sc.Description))
	}
	for _, res := range results {
		fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("%s (seed %d)", res.Name, res.Seed)))
		fmt.Println(viz.Summary(res.EWS, 24))
		fmt.Println()
	}
	return nil
}

func basinFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&trials, "trials", 100, "Monte Carlo trials")
	f.Float64Var(&spread, "spread", 3, "initial stock drawn from x0 ± spread")
	f.IntVar(&limit, "parallel", 0, "concurrent trials (0 = GOMAXPROCS)")
}

func runBasin(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	results, err := automation.RunBasin(cmd.Context(), cfg, trials, spread, limit)
	if err != nil {
		return err
	}

	xs := make([]float64, len(results))
	finals := make([]float64, len(results))
	for i, r := range results {
		xs[i], finals[i] = r.X0, r.Final
	}
	fmt.Println(viz.HeaderStyle.Render("final stock against initial stock"))
	fmt.Println(viz.Scatter(xs, finals, width, height).String())
	fmt.Printf("threshold x=%.4f  basin stability %.3f (%d trials)\n",
		automation.Threshold(cfg.Model.K, cfg.Model.C), automation.BasinStability(results), len(results))
	return nil
}
