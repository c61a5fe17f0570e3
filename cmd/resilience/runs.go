package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/resilience/internal/ews"
	"github.com/san-kum/resilience/internal/export"
	"github.com/san-kum/resilience/internal/storage"
	"github.com/san-kum/resilience/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	saved, err := st.List()
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		fmt.Println("no saved runs")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tC\tSEED\tCLAMPED\tAR1 τ\tTIME")
	for _, r := range saved {
		tau := "-"
		if v, ok := r.Trends["ar1"]; ok {
			tau = fmt.Sprintf("%+.2f", v)
		}
		fmt.Fprintf(tw, "%s\t%g\t%d\t%d\t%s\t%s\n", r.ID, r.C, r.Seed, r.Clamped, tau, r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	stock := traj.Component(0)
	fmt.Println(viz.PlotSeries(stock, fmt.Sprintf("%s (c=%g, seed %d)", meta.Name, meta.C, meta.Seed), width, height))

	res, err := st.LoadEWS(args[0])
	if errors.Is(err, storage.ErrNoEWS) {
		return nil
	}
	if err != nil {
		return err
	}
	res.Method = ews.Method(meta.Detrend)
	res.Window = meta.Window
	fmt.Println()
	fmt.Println(viz.PlotEWS(res, width, height/2+2))

	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.EWSSVG(stock, res, 720, 140)), 0644); err != nil {
			return err
		}
		logger.Info("svg written", "path", svgPath)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	res, err := st.LoadEWS(args[0])
	if err != nil && !errors.Is(err, storage.ErrNoEWS) {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, traj, res)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// describe summarises a sample of τ values.
func describe(v []float64) string {
	if len(v) == 0 {
		return "no finite trend"
	}
	mean, sd := stat.MeanStdDev(v, nil)
	if math.IsNaN(sd) {
		sd = 0
	}
	positive := 0
	for _, x := range v {
		if x > 0 {
			positive++
		}
	}
	return fmt.Sprintf("mean τ=%+.2f  sd=%.2f  positive %d/%d", mean, sd, positive, len(v))
}
