package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	GlassPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	// trend colours: rising indicators are the warning sign
	TrendUp   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)
	TrendFlat = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	TrendDown = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
)

// TrendBadge formats a Kendall τ with a colour for its sign.
func TrendBadge(tau float64) string {
	switch {
	case math.IsNaN(tau):
		return Subtle.Render("τ n/a")
	case tau > 0.3:
		return TrendUp.Render(formatTau(tau))
	case tau < -0.3:
		return TrendDown.Render(formatTau(tau))
	}
	return TrendFlat.Render(formatTau(tau))
}

// SparklineChart renders a one-line sparkline of values, skipping NaN.
func SparklineChart(values []float64, width int) string {
	finite := dropNaN(values)
	if len(finite) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := finite[0], finite[0]
	for _, v := range finite {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(finite) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(finite); i++ {
		norm := (finite[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)
		result.WriteRune(chars[idx])
	}
	return result.String()
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return Subtle.Render(left + " ◆ " + right)
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
