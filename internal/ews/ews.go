package ews

import (
	"math"

	"github.com/san-kum/resilience/internal/series"
)

// Options configures Compute.
type Options struct {
	// Window is the rolling window width in samples. Values <= 0 or larger
	// than the residual produce an empty result.
	Window int
	// Detrend selects the detrending method; empty means None.
	Detrend Method
	// Bandwidth is the Gaussian kernel standard deviation in samples.
	Bandwidth float64
	// Indicators restricts the output; nil means DefaultIndicators.
	Indicators []string
}

// Result maps each indicator to one value per valid window position.
// Every slice in Indicators has the length of TimeIndex.
type Result struct {
	TimeIndex  []float64
	Indicators map[string][]float64
	// Order lists the indicator names in output order.
	Order []string
	// Trends holds Kendall's τ of each indicator against TimeIndex.
	Trends map[string]float64

	Method    Method
	Window    int
	Detrended Detrended
}

// Len is the number of window positions.
func (r *Result) Len() int { return len(r.TimeIndex) }

// Get returns the values of one indicator as a series labelled by
// TimeIndex.
func (r *Result) Get(name string) (series.Series, bool) {
	v, ok := r.Indicators[name]
	if !ok {
		return series.Series{}, false
	}
	return series.Series{Values: v, Times: r.TimeIndex}, true
}

// WindowFromFraction converts a window expressed as a fraction of the series
// length into samples.
func WindowFromFraction(n int, fraction float64) int {
	if fraction <= 0 {
		return 0
	}
	return int(math.Floor(float64(n) * fraction))
}

// Compute detrends s and evaluates the requested indicators over every
// rolling window of the residual. Output j corresponds to the window ending
// at residual position j+w-1 and is labelled with the timestamp (or
// original index) of that position.
func Compute(s series.Series, opts Options) (*Result, error) {
	names, err := lookupIndicators(opts.Indicators)
	if err != nil {
		return nil, err
	}
	method := opts.Detrend
	if method == "" {
		method = None
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}

	if s.Times != nil && len(s.Times) != len(s.Values) {
		return nil, series.ErrLengthMismatch
	}

	d, err := Detrend(s, method, opts.Bandwidth)
	if err != nil {
		return nil, err
	}

	w := opts.Window
	n := len(d.Residual)
	positions := 0
	if w > 0 && n >= w {
		positions = n - w + 1
	}

	res := &Result{
		TimeIndex:  make([]float64, positions),
		Indicators: make(map[string][]float64, len(names)),
		Order:      names,
		Trends:     make(map[string]float64, len(names)),
		Method:     method,
		Window:     w,
		Detrended:  d,
	}
	for _, name := range names {
		res.Indicators[name] = make([]float64, positions)
	}

	for j := 0; j < positions; j++ {
		end := j + w // exclusive, in residual coordinates
		orig := d.Offset + end - 1
		res.TimeIndex[j] = s.Label(orig)

		win := newWindow(d.Residual[j:end], s.Values[d.Offset+j:d.Offset+end])
		for _, name := range names {
			res.Indicators[name][j] = indicatorFuncs[name](win)
		}
	}

	for _, name := range names {
		res.Trends[name] = KendallTau(res.TimeIndex, res.Indicators[name])
	}

	return res, nil
}
