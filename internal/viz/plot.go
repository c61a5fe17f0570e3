package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/resilience/internal/ews"
	"github.com/san-kum/resilience/internal/series"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 10
)

func formatTau(tau float64) string { return fmt.Sprintf("τ=%+.2f", tau) }

// PlotSeries draws s as a line chart. Missing values are skipped; a series
// with fewer than two finite points renders a placeholder.
func PlotSeries(s series.Series, caption string, width, height int) string {
	values := dropNaN(s.Values)
	if len(values) < 2 {
		return Subtle.Render(fmt.Sprintf("%s: not enough points to plot", caption))
	}
	if s.Len() > 0 {
		caption = fmt.Sprintf("%s  [%g … %g]", caption, s.Label(0), s.Label(s.Len()-1))
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotEWS draws one facet per indicator in output order, each headed by the
// indicator name and its Kendall τ.
func PlotEWS(res *ews.Result, width, height int) string {
	if res.Len() == 0 {
		return Subtle.Render("no complete window: series shorter than the window")
	}
	facets := make([]string, 0, len(res.Order))
	for _, name := range res.Order {
		facets = append(facets, Facet(res, name, width, height))
	}
	return strings.Join(facets, "\n\n")
}

// Facet renders the chart of one indicator.
func Facet(res *ews.Result, name string, width, height int) string {
	s, ok := res.Get(name)
	if !ok {
		return Subtle.Render(fmt.Sprintf("%s: not computed", name))
	}
	title := lipgloss.JoinHorizontal(lipgloss.Top,
		HeaderStyle.Render(name), "  ", TrendBadge(res.Trends[name]))
	return title + "\n" + PlotSeries(s, name, width, height)
}

// Summary is a compact table of every indicator: last value, τ and a
// sparkline.
func Summary(res *ews.Result, sparkWidth int) string {
	var rows []string
	for _, name := range res.Order {
		vals := res.Indicators[name]
		last := math.NaN()
		if len(vals) > 0 {
			last = vals[len(vals)-1]
		}
		rows = append(rows, fmt.Sprintf("%s %s  %s  %s",
			MetricLabel.Render(fmt.Sprintf("%-10s", name)),
			MetricValue.Render(fmt.Sprintf("%10.4g", last)),
			TrendBadge(res.Trends[name]),
			SparklineChart(vals, sparkWidth),
		))
	}
	header := HeaderStyle.Render(fmt.Sprintf("detrend=%s window=%d windows=%d", res.Method, res.Window, res.Len()))
	return GlassPanel.Render(header + "\n" + strings.Join(rows, "\n"))
}
