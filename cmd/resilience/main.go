package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/resilience/internal/config"
	"github.com/san-kum/resilience/internal/logging"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
	logger    *slog.Logger

	// exercise flags
	configFile string
	preset     string
	k, c, x0   float64
	dt         float64
	duration   float64
	seed       uint64
	integrator string
	noiseKind  string
	noiseAmp   float64
	rampTo     float64
	strict     bool
	from, to   float64
	thin       int
	window     int
	windowFrac float64
	detrend    string
	bandwidth  float64
	indicators []string

	// output flags
	width, height int
	sparkWidth    int
	limit         int
	save          bool
	svgPath       string
	jsonOut       bool
	runs          int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "resilience",
		Short:         "fold-bifurcation fishery simulator and early-warning signals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(os.Stderr, logLevel, logFormat)
			if err != nil {
				return err
			}
			logger = l
			slog.SetDefault(logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".resilience", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text|json)")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "integrate the fishery model and plot the stock",
		RunE:  runSimulate,
	}
	exerciseFlags(simulateCmd)
	outputFlags(simulateCmd)

	ewsCmd := &cobra.Command{
		Use:   "ews",
		Short: "simulate and compute early-warning indicators",
		RunE:  runEWS,
	}
	exerciseFlags(ewsCmd)
	outputFlags(ewsCmd)
	ewsCmd.Flags().IntVar(&runs, "runs", 1, "ensemble size (consecutive seeds)")

	compareCmd := &cobra.Command{
		Use:   "compare [preset|config.yaml]...",
		Short: "run several exercises and compare their indicators",
		RunE:  runCompare,
	}
	compareCmd.Flags().IntVar(&sparkWidth, "spark", 24, "sparkline width")

	browseCmd := &cobra.Command{
		Use:   "browse [preset|config.yaml]...",
		Short: "browse indicator facets interactively",
		RunE:  runBrowse,
	}

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "equilibrium branches and fold points over the harvest rate",
		RunE:  runBifurcation,
	}
	bifurcationFlags(bifurcationCmd)

	recoveryCmd := &cobra.Command{
		Use:   "recovery",
		Short: "recovery rate after a small push, across harvest rates",
		RunE:  runRecovery,
	}
	recoveryFlags(recoveryCmd)

	datasetCmd := &cobra.Command{
		Use:   "dataset [matrix.csv]",
		Short: "early-warning indicators of one longitude column",
		Args:  cobra.ExactArgs(1),
		RunE:  runDataset,
	}
	datasetFlags(datasetCmd)
	outputFlags(datasetCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [matrix.csv]",
		Short: "indicator trends for every longitude column",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	datasetFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&limit, "parallel", 0, "concurrent columns (0 = GOMAXPROCS)")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search exercise parameters for the best metric (default: highest yield)",
		RunE:  runSearch,
	}
	exerciseFlags(searchCmd)
	searchFlags(searchCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [scenario.yaml]",
		Short: "run a scripted sequence of exercises",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	basinCmd := &cobra.Command{
		Use:   "basin",
		Short: "Monte Carlo basin stability from perturbed initial stocks",
		RunE:  runBasin,
	}
	exerciseFlags(basinCmd)
	basinFlags(basinCmd)
	basinCmd.Flags().IntVar(&width, "width", 80, "chart width")
	basinCmd.Flags().IntVar(&height, "height", 10, "chart height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available exercise presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				forced := "constant"
				if len(p.Forcing.Points) > 0 {
					forced = fmt.Sprintf("ramp to %g", p.Forcing.Points[len(p.Forcing.Points)-1].Value)
				}
				fmt.Printf("  %-10s c=%-4g %-12s T=%g\n", name, p.Model.C, forced, p.Duration)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&width, "width", 80, "chart width")
	plotCmd.Flags().IntVar(&height, "height", 10, "chart height")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write a faceted SVG to this path")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(simulateCmd, ewsCmd, compareCmd, browseCmd, bifurcationCmd, recoveryCmd,
		datasetCmd, sweepCmd, searchCmd, scenarioCmd, basinCmd, presetsCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func exerciseFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "exercise config file (yaml)")
	f.StringVar(&preset, "preset", "", "start from a preset (see presets)")
	f.Float64Var(&k, "k", config.DefaultK, "carrying capacity K")
	f.Float64Var(&c, "c", config.DefaultC, "harvest rate c")
	f.Float64Var(&x0, "x0", config.DefaultX0, "initial stock")
	f.Float64Var(&dt, "dt", config.DefaultDt, "integration step")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.Uint64Var(&seed, "seed", 1, "noise seed")
	f.StringVar(&integrator, "integrator", "rk4", "integrator (rk4|euler)")
	f.StringVar(&noiseKind, "noise", "uniform", "noise kind (uniform|normal|none)")
	f.Float64Var(&noiseAmp, "noise-amp", config.DefaultNoise, "noise half-width (uniform) or sd (normal)")
	f.Float64Var(&rampTo, "ramp-to", 0, "ramp c linearly to this value over the run")
	f.BoolVar(&strict, "strict", false, "fail when the forcing table is queried outside its range")
	f.Float64Var(&from, "from", 100, "start of the analysed segment")
	f.Float64Var(&to, "to", 0, "end of the analysed segment (0 = end of run)")
	f.IntVar(&thin, "thin", config.DefaultThin, "keep every n-th point of the segment")
	f.IntVar(&window, "window", 0, "rolling window in samples (overrides --window-frac)")
	f.Float64Var(&windowFrac, "window-frac", config.DefaultWindow, "rolling window as a fraction of the segment")
	f.StringVar(&detrend, "detrend", "none", "detrending (none|linear|gaussian|first-diff)")
	f.Float64Var(&bandwidth, "bandwidth", 0, "gaussian kernel sd in samples")
	f.StringSliceVar(&indicators, "indicators", nil, "indicators to compute (default all)")
}

func outputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&width, "width", 80, "chart width")
	f.IntVar(&height, "height", 10, "chart height")
	f.BoolVar(&save, "save", false, "save the run under --data")
	f.StringVar(&svgPath, "svg", "", "write a faceted SVG to this path")
	f.BoolVar(&jsonOut, "json", false, "print the run as JSON instead of charts")
}
