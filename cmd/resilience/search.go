package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/resilience/internal/optim"
	"github.com/san-kum/resilience/internal/viz"
)

var (
	searchParams []string
	searchMetric string
	minimize     bool
)

func searchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVar(&searchParams, "param", nil, "parameter grid, name=lo:hi:n or name=v1,v2,... (repeatable)")
	f.StringVar(&searchMetric, "metric", "yield", "metric to rank runs by")
	f.BoolVar(&minimize, "minimize", false, "pick the lowest metric instead of the highest")
	f.IntVar(&limit, "parallel", 0, "concurrent runs (0 = GOMAXPROCS)")
}

// parseParam reads "c=1:3:9" as 9 values from 1 to 3, or "c=1,2.5" as a
// list.
func parseParam(arg string) (string, []float64, error) {
	name, values, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("bad --param %q: want name=lo:hi:n or name=v1,v2", arg)
	}
	if parts := strings.Split(values, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return "", nil, fmt.Errorf("bad --param range %q", arg)
		}
		return name, optim.Range(lo, hi, n), nil
	}
	var out []float64
	for _, s := range strings.Split(values, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad --param value in %q: %w", arg, err)
		}
		out = append(out, v)
	}
	return name, out, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if len(searchParams) == 0 {
		searchParams = []string{"c=1:3:9"}
	}

	names := make([]string, 0, len(searchParams))
	ranges := make([][]float64, 0, len(searchParams))
	for _, arg := range searchParams {
		name, values, err := parseParam(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	g := optim.NewGridSearch(names, ranges).WithLogger(logger)
	g.SetLimit(limit)
	best, evals, err := g.Search(cmd.Context(), base, searchMetric, !minimize)
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "%-8s", name)
	}
	fmt.Fprintf(&sb, "%s", searchMetric)
	fmt.Println(viz.HeaderStyle.Render(sb.String()))
	for _, e := range evals {
		sb.Reset()
		for _, name := range names {
			fmt.Fprintf(&sb, "%-8.4g", e.Params[name])
		}
		fmt.Fprintf(&sb, "%.4f", e.Value)
		fmt.Println(sb.String())
	}

	fmt.Println()
	fmt.Println(viz.MetricLabel.Render("best ") + viz.MetricValue.Render(fmt.Sprintf("%s=%.4f at %v", searchMetric, best.Value, best.Params)))
	return nil
}
