package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/resilience/internal/config"
	"github.com/san-kum/resilience/internal/experiment"
	"github.com/san-kum/resilience/internal/export"
	"github.com/san-kum/resilience/internal/forcing"
	"github.com/san-kum/resilience/internal/storage"
	"github.com/san-kum/resilience/internal/viz"
)

// buildConfig layers preset, config file and explicitly set flags, in that
// order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("k") {
		cfg.Model.K = k
	}
	if flags.Changed("c") {
		cfg.Model.C = c
	}
	if flags.Changed("x0") {
		cfg.Model.X0 = x0
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("noise") || flags.Changed("noise-amp") {
		cfg.Noise = config.NoiseConfig{Kind: noiseKind}
		switch noiseKind {
		case "uniform":
			cfg.Noise.Min, cfg.Noise.Max = -noiseAmp, noiseAmp
		case "normal":
			cfg.Noise.StdDev = noiseAmp
		}
	}
	if flags.Changed("ramp-to") {
		cfg.Forcing.Points = []forcing.Point{
			{Time: cfg.Start, Value: cfg.Model.C},
			{Time: cfg.End(), Value: rampTo},
		}
	}
	if flags.Changed("strict") {
		cfg.Forcing.Policy = forcing.Clamp.String()
		if strict {
			cfg.Forcing.Policy = forcing.Strict.String()
		}
	}
	if flags.Changed("from") {
		cfg.Selection.From = from
	}
	if flags.Changed("to") {
		cfg.Selection.To = to
	}
	if flags.Changed("thin") {
		cfg.Selection.Thin = thin
	}
	if flags.Changed("window-frac") {
		cfg.EWS.Window = 0
		cfg.EWS.WindowFraction = windowFrac
	}
	// --window wins over --window-frac
	if flags.Changed("window") {
		cfg.EWS.Window = window
	}
	if flags.Changed("detrend") {
		cfg.EWS.Detrend = detrend
	}
	if flags.Changed("bandwidth") {
		cfg.EWS.Bandwidth = bandwidth
	}
	if flags.Changed("indicators") {
		cfg.EWS.Indicators = indicators
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadExercise resolves a preset name or a yaml path.
func loadExercise(arg string) (*config.Config, error) {
	if p := config.GetPreset(arg); p != nil {
		return p, nil
	}
	if strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml") {
		cfg, err := config.Load(arg)
		if err != nil {
			return nil, err
		}
		if cfg.Name == "" {
			cfg.Name = arg
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("unknown exercise %q: not a preset (%v) or yaml file", arg, config.ListPresets())
}

func loadExercises(args []string, defaults ...string) ([]*config.Config, error) {
	if len(args) == 0 {
		args = defaults
	}
	cfgs := make([]*config.Config, 0, len(args))
	for _, arg := range args {
		cfg, err := loadExercise(arg)
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func metadataFor(cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Name:       cfg.Name,
		Seed:       cfg.Seed,
		K:          cfg.Model.K,
		C:          cfg.Model.C,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
	}
}

// finish handles the output flags shared by simulate and ews.
func finish(cfg *config.Config, res *experiment.Result) error {
	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(metadataFor(cfg), res.Trajectory, res.EWS)
		if err != nil {
			return err
		}
		logger.Info("run saved", "id", runID, "dir", dataDir)
	}
	if svgPath != "" {
		doc := export.EWSSVG(res.Selected, res.EWS, 720, 140)
		if err := os.WriteFile(svgPath, []byte(doc), 0644); err != nil {
			return err
		}
		logger.Info("svg written", "path", svgPath)
	}
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := experiment.Run(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := storage.ExportJSON(os.Stdout, metadataFor(cfg), res.Trajectory, res.EWS); err != nil {
			return err
		}
		return finish(cfg, res)
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("points: %d  clamped: %d\n", res.Trajectory.Len(), res.Trajectory.Clamped)
	fmt.Println(viz.PlotSeries(res.Trajectory.Component(0).Thin(max(cfg.Selection.Thin, 1)), "stock x(t)", width, height))
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(res.Trajectory.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, res.Trajectory.Metrics[name])
	}
	return finish(cfg, res)
}

func runEWS(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if runs > 1 {
		return runEnsemble(cmd.Context(), cfg)
	}

	res, err := experiment.Run(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := storage.ExportJSON(os.Stdout, metadataFor(cfg), res.Trajectory, res.EWS); err != nil {
			return err
		}
		return finish(cfg, res)
	}

	fmt.Println(viz.PlotSeries(res.Selected, "analysed segment", width, height))
	fmt.Println()
	fmt.Println(viz.PlotEWS(res.EWS, width, height/2+2))
	fmt.Println()
	fmt.Println(viz.Summary(res.EWS, 24))
	return finish(cfg, res)
}

// runEnsemble prints the distribution of Kendall τ over the members.
func runEnsemble(ctx context.Context, cfg *config.Config) error {
	results, err := experiment.RunEnsemble(ctx, cfg, runs, 0, logger)
	if err != nil {
		return err
	}

	fmt.Printf("ensemble of %d runs, seeds %d..%d\n", runs, cfg.Seed, cfg.Seed+uint64(runs)-1)
	order := results[0].EWS.Order
	for _, name := range order {
		taus := make([]float64, 0, len(results))
		for _, r := range results {
			if tau := r.EWS.Trends[name]; !math.IsNaN(tau) {
				taus = append(taus, tau)
			}
		}
		fmt.Printf("  %-10s %s\n", name, describe(taus))
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfgs, err := loadExercises(args, "stable", "near-fold")
	if err != nil {
		return err
	}
	results, err := experiment.Compare(cmd.Context(), cfgs, logger)
	if err != nil {
		return err
	}
	for _, res := range results {
		fmt.Println(viz.HeaderStyle.Render(res.Name))
		fmt.Println(viz.Summary(res.EWS, sparkWidth))
		fmt.Println()
	}
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfgs, err := loadExercises(args, config.ListPresets()...)
	if err != nil {
		return err
	}
	results, err := experiment.Compare(cmd.Context(), cfgs, logger)
	if err != nil {
		return err
	}
	entries := make([]viz.Entry, len(results))
	for i, res := range results {
		entries[i] = viz.Entry{Title: res.Name, Stock: res.Selected, EWS: res.EWS}
	}
	return viz.Browse(entries)
}
