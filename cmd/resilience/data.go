package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/resilience/internal/config"
	"github.com/san-kum/resilience/internal/dataset"
	"github.com/san-kum/resilience/internal/dynamo"
	"github.com/san-kum/resilience/internal/ews"
	"github.com/san-kum/resilience/internal/export"
	"github.com/san-kum/resilience/internal/series"
	"github.com/san-kum/resilience/internal/storage"
	"github.com/san-kum/resilience/internal/viz"
)

var (
	coordsFile string
	column     int
	lon        float64
)

func datasetFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&coordsFile, "coords", "", "coordinates side table (yaml: lat, lon, time)")
	f.IntVar(&column, "column", 0, "column index")
	f.Float64Var(&lon, "lon", 0, "pick the column nearest this longitude (needs --coords)")
	f.IntVar(&window, "window", 0, "rolling window in samples (overrides --window-frac)")
	f.Float64Var(&windowFrac, "window-frac", config.DefaultWindow, "rolling window as a fraction of the series")
	f.StringVar(&detrend, "detrend", "none", "detrending (none|linear|gaussian|first-diff)")
	f.Float64Var(&bandwidth, "bandwidth", 0, "gaussian kernel sd in samples")
	f.StringSliceVar(&indicators, "indicators", nil, "indicators to compute (default all)")
}

// datasetOptions resolves the window against a series of n points.
func datasetOptions(cmd *cobra.Command, n int) (ews.Options, error) {
	method, err := ews.ParseMethod(detrend)
	if err != nil {
		return ews.Options{}, err
	}
	w := window
	if !cmd.Flags().Changed("window") || w <= 0 {
		w = ews.WindowFromFraction(n, windowFrac)
	}
	return ews.Options{Window: w, Detrend: method, Bandwidth: bandwidth, Indicators: indicators}, nil
}

func trajectoryOf(s series.Series) *dynamo.Trajectory {
	traj := &dynamo.Trajectory{Times: s.Labels(), States: make([]dynamo.State, s.Len())}
	for i, v := range s.Values {
		traj.States[i] = dynamo.State{v}
	}
	return traj
}

func runDataset(cmd *cobra.Command, args []string) error {
	d, err := dataset.Open(args[0], coordsFile)
	if err != nil {
		return err
	}

	j := column
	if cmd.Flags().Changed("lon") {
		if j, err = d.Nearest(lon); err != nil {
			return err
		}
	}
	s, err := d.Column(j)
	if err != nil {
		return err
	}
	missing := s.Len()
	s = s.DropNaN()
	missing -= s.Len()

	opts, err := datasetOptions(cmd, s.Len())
	if err != nil {
		return err
	}
	res, err := ews.Compute(s, opts)
	if err != nil {
		return err
	}
	logger.Info("column analysed", "column", j, "lon", d.Lon(j), "points", s.Len(), "missing", missing, "window", opts.Window)

	name := fmt.Sprintf("column-%d", j)
	meta := storage.RunMetadata{Name: name}

	if jsonOut {
		return storage.ExportJSON(os.Stdout, meta, trajectoryOf(s), res)
	}

	caption := name
	if l := d.Lon(j); !math.IsNaN(l) {
		caption = fmt.Sprintf("%s (lon %g)", name, l)
	}
	fmt.Println(viz.PlotSeries(s, caption, width, height))
	fmt.Println()
	fmt.Println(viz.PlotEWS(res, width, height/2+2))
	fmt.Println()
	fmt.Println(viz.Summary(res, 24))

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(meta, trajectoryOf(s), res)
		if err != nil {
			return err
		}
		logger.Info("run saved", "id", runID, "dir", dataDir)
	}
	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.EWSSVG(s, res, 720, 140)), 0644); err != nil {
			return err
		}
		logger.Info("svg written", "path", svgPath)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	d, err := dataset.Open(args[0], coordsFile)
	if err != nil {
		return err
	}

	// the window is resolved against the full column length so every
	// column uses the same width
	opts, err := datasetOptions(cmd, d.Rows())
	if err != nil {
		return err
	}
	results, err := dataset.Sweep(cmd.Context(), d, nil, opts, limit, logger)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}

	order := results[0].EWS.Order
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-6s %-9s %-6s", "col", "lon", "n")
	for _, name := range order {
		fmt.Fprintf(&sb, " %-10s", name)
	}
	fmt.Println(viz.HeaderStyle.Render(sb.String()))

	for _, r := range results {
		sb.Reset()
		fmt.Fprintf(&sb, "%-6d %-9.3g %-6d", r.Column, r.Lon, r.Points)
		for _, name := range order {
			sb.WriteString(" ")
			sb.WriteString(viz.TrendBadge(r.EWS.Trends[name]))
		}
		fmt.Println(sb.String())
	}
	return nil
}
