package ews

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrUnknownIndicator = errors.New("ews: unknown indicator")

// Indicator names.
const (
	Variance   = "variance"
	SD         = "sd"
	AR1        = "ar1"
	Skewness   = "skewness"
	Kurtosis   = "kurtosis"
	CV         = "cv"
	ReturnRate = "returnrate"
	DensRatio  = "densratio"
)

// DefaultIndicators is the full indicator set in output order.
var DefaultIndicators = []string{AR1, SD, Variance, Skewness, Kurtosis, CV, ReturnRate, DensRatio}

// window holds the summary moments of one window. The residual slice feeds
// every indicator except cv, which reads the raw observations.
type window struct {
	resid, raw []float64

	mean, variance float64
	m2, m3, m4     float64
	constant       bool
}

func newWindow(resid, raw []float64) *window {
	w := &window{resid: resid, raw: raw}
	w.mean, w.variance = stat.MeanVariance(resid, nil)
	if len(resid) < 2 {
		w.variance = math.NaN()
	}
	w.m2 = stat.Moment(2, resid, nil)
	w.m3 = stat.Moment(3, resid, nil)
	w.m4 = stat.Moment(4, resid, nil)
	w.constant = len(resid) > 0 && floats.Max(resid) == floats.Min(resid)
	if len(resid) >= 2 && w.degenerate() {
		w.variance = 0
	}
	return w
}

// degenerate reports a constant window, where standardized moments are 0/0.
// Only exact constancy counts: a tiny spread around a large mean is still a
// spread.
func (w *window) degenerate() bool {
	return w.constant
}

type indicatorFunc func(w *window) float64

var indicatorFuncs = map[string]indicatorFunc{
	Variance:   variance,
	SD:         sd,
	AR1:        ar1,
	Skewness:   skewness,
	Kurtosis:   kurtosis,
	CV:         cv,
	ReturnRate: returnRate,
	DensRatio:  densRatio,
}

func lookupIndicators(names []string) ([]string, error) {
	if len(names) == 0 {
		return append([]string(nil), DefaultIndicators...), nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := indicatorFuncs[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, name)
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

// variance is the sample (n-1) variance.
func variance(w *window) float64 { return w.variance }

func sd(w *window) float64 { return math.Sqrt(w.variance) }

// ar1 is the Pearson correlation between the window and itself shifted by
// one position, over the n-1 overlapping pairs.
func ar1(w *window) float64 {
	n := len(w.resid)
	if n < 3 || w.degenerate() {
		return math.NaN()
	}
	lead, lag := w.resid[1:], w.resid[:n-1]
	_, vLead := stat.MeanVariance(lead, nil)
	_, vLag := stat.MeanVariance(lag, nil)
	if vLead == 0 || vLag == 0 {
		return math.NaN()
	}
	return stat.Correlation(lag, lead, nil)
}

// skewness is the third standardized central moment m3/m2^1.5.
func skewness(w *window) float64 {
	if w.degenerate() {
		return math.NaN()
	}
	return w.m3 / math.Pow(w.m2, 1.5)
}

// kurtosis is the fourth standardized central moment m4/m2² (3 for a
// normal distribution).
func kurtosis(w *window) float64 {
	if w.degenerate() {
		return math.NaN()
	}
	return w.m4 / (w.m2 * w.m2)
}

// cv is the standard deviation of the residual over the mean of the raw
// observations in the same window.
func cv(w *window) float64 {
	mean := stat.Mean(w.raw, nil)
	if mean == 0 {
		return math.NaN()
	}
	return math.Sqrt(w.variance) / mean
}

// returnRate is 1-ar1, the fraction of a deviation that decays per step.
func returnRate(w *window) float64 { return 1 - ar1(w) }

// densRatio is the mean periodogram power of the lowest fifth of the
// non-zero frequencies over that of the highest fifth. Reddening of the
// spectrum near a transition raises it.
func densRatio(w *window) float64 {
	n := len(w.resid)
	if n < 10 || w.degenerate() {
		return math.NaN()
	}
	centered := make([]float64, n)
	for i, v := range w.resid {
		centered[i] = v - w.mean
	}
	spectrum := fft.FFTReal(centered)

	nf := n / 2 // frequencies 1..n/2
	band := max(1, nf/5)
	low, high := 0.0, 0.0
	for k := 1; k <= band; k++ {
		low += power(spectrum[k])
		high += power(spectrum[nf-band+k])
	}
	if high == 0 {
		return math.NaN()
	}
	return low / high
}

func power(c complex128) float64 {
	a := cmplx.Abs(c)
	return a * a
}
