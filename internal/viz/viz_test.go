package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/resilience/internal/ews"
	"github.com/san-kum/resilience/internal/series"
)

func sampleResult(t *testing.T) *ews.Result {
	t.Helper()
	values := make([]float64, 60)
	for i := range values {
		values[i] = math.Sin(float64(i)/3) * (1 + float64(i)/20)
	}
	res, err := ews.Compute(series.Series{Values: values}, ews.Options{
		Window:     20,
		Indicators: []string{ews.AR1, ews.Variance, ews.Skewness},
	})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestPlotSeries(t *testing.T) {
	s := series.Series{Values: []float64{1, 2, math.NaN(), 4, 3}, Times: []float64{0, 1, 2, 3, 4}}
	out := PlotSeries(s, "stock", 40, 5)
	if !strings.Contains(out, "stock") {
		t.Errorf("caption missing:\n%s", out)
	}
	if strings.Count(out, "\n") < 5 {
		t.Errorf("expected at least 5 lines, got:\n%s", out)
	}

	short := PlotSeries(series.Series{Values: []float64{1}}, "lonely", 40, 5)
	if !strings.Contains(short, "not enough points") {
		t.Errorf("expected placeholder, got %q", short)
	}
}

func TestPlotEWS_OneFacetPerIndicator(t *testing.T) {
	res := sampleResult(t)
	out := PlotEWS(res, 40, 4)
	for _, name := range res.Order {
		if !strings.Contains(out, name) {
			t.Errorf("facet %s missing", name)
		}
	}
	if !strings.Contains(out, "τ=") {
		t.Error("trend badge missing")
	}

	empty, _ := ews.Compute(series.Series{Values: []float64{1, 2}}, ews.Options{Window: 5})
	if !strings.Contains(PlotEWS(empty, 40, 4), "no complete window") {
		t.Error("expected empty-result message")
	}
}

func TestSummary(t *testing.T) {
	res := sampleResult(t)
	out := Summary(res, 10)
	for _, name := range res.Order {
		if !strings.Contains(out, name) {
			t.Errorf("row %s missing", name)
		}
	}
}

func TestSparklineChart(t *testing.T) {
	out := SparklineChart([]float64{0, math.NaN(), 1, 2, 3}, 4)
	if got := []rune(out); len(got) != 4 || got[0] != '▁' || got[3] != '█' {
		t.Errorf("unexpected sparkline %q", out)
	}
	if SparklineChart(nil, 3) != "───" {
		t.Error("expected flat line for empty input")
	}
}

func TestScatter(t *testing.T) {
	c := Scatter([]float64{0, 1, math.NaN()}, []float64{0, 1, 5}, 10, 5)
	if !c.IsSet(0, 19) {
		t.Error("expected bottom-left point set")
	}
	if !c.IsSet(19, 0) {
		t.Error("expected top-right point set")
	}
	if c.IsSet(10, 10) {
		t.Error("unexpected point in the middle")
	}
	if lines := strings.Count(c.String(), "\n"); lines != 5 {
		t.Errorf("expected 5 rows, got %d", lines)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowserNavigation(t *testing.T) {
	res := sampleResult(t)
	b := NewBrowser([]Entry{
		{Title: "stable", EWS: res},
		{Title: "near-fold", EWS: res},
	})

	step := func(m tea.Model, k string) Browser {
		next, _ := m.Update(key(k))
		return next.(Browser)
	}

	b = step(b, "right")
	if _, name := b.Current(); name != ews.Variance {
		t.Errorf("expected variance, got %s", name)
	}
	b = step(b, "left")
	b = step(b, "left")
	if _, name := b.Current(); name != ews.Skewness {
		t.Errorf("expected wrap to skewness, got %s", name)
	}
	b = step(b, "down")
	if entry, _ := b.Current(); entry != 1 {
		t.Errorf("expected entry 1, got %d", entry)
	}
	b = step(b, "s")
	if !strings.Contains(b.View(), "near-fold") {
		t.Error("view should show the selected title")
	}

	_, cmd := b.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
