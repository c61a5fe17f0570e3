package ews

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/resilience/internal/series"
)

var (
	ErrUnknownMethod    = errors.New("ews: unknown detrending method")
	ErrInvalidBandwidth = errors.New("ews: gaussian bandwidth must be positive")
)

// Method selects how the slow trend is removed before rolling statistics.
type Method string

const (
	None      Method = "none"
	Linear    Method = "linear"
	Gaussian  Method = "gaussian"
	FirstDiff Method = "first-diff"
)

// Methods lists the supported detrending methods.
func Methods() []Method { return []Method{None, Linear, Gaussian, FirstDiff} }

// ParseMethod maps a name to a Method. "no" is accepted for none.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case None, "no", "":
		return None, nil
	case Linear, Gaussian, FirstDiff:
		return Method(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Detrended is the outcome of detrending a series. Residual[k] and Trend[k]
// belong to original position Offset+k.
type Detrended struct {
	Residual []float64
	Trend    []float64
	Offset   int
}

// Detrend removes the trend selected by method from s. bandwidth is the
// Gaussian kernel standard deviation in samples and is only read by
// Gaussian.
func Detrend(s series.Series, method Method, bandwidth float64) (Detrended, error) {
	y := s.Values
	n := len(y)

	switch method {
	case None:
		resid := make([]float64, n)
		copy(resid, y)
		return Detrended{Residual: resid, Trend: make([]float64, n)}, nil

	case Linear:
		trend := linearTrend(s.Labels(), y)
		return Detrended{Residual: subtract(y, trend), Trend: trend}, nil

	case Gaussian:
		if !(bandwidth > 0) || math.IsInf(bandwidth, 0) {
			return Detrended{}, fmt.Errorf("%w: got %g", ErrInvalidBandwidth, bandwidth)
		}
		trend := gaussianSmooth(y, bandwidth)
		return Detrended{Residual: subtract(y, trend), Trend: trend}, nil

	case FirstDiff:
		if n < 2 {
			return Detrended{Residual: []float64{}, Trend: []float64{}, Offset: 1}, nil
		}
		resid := make([]float64, n-1)
		trend := make([]float64, n-1)
		for i := 1; i < n; i++ {
			resid[i-1] = y[i] - y[i-1]
			trend[i-1] = y[i-1]
		}
		return Detrended{Residual: resid, Trend: trend, Offset: 1}, nil
	}

	return Detrended{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// linearTrend is the ordinary least squares line through (x, y).
func linearTrend(x, y []float64) []float64 {
	n := len(y)
	trend := make([]float64, n)
	if n < 2 {
		copy(trend, y)
		return trend
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	for i := range trend {
		trend[i] = alpha + beta*x[i]
	}
	return trend
}

// gaussianSmooth is a Nadaraya-Watson kernel smoother on the sample index
// with a normal kernel of standard deviation sigma, truncated at 4 sigma.
func gaussianSmooth(y []float64, sigma float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	// a kernel wider than the series is the series mean
	reach := int(math.Max(0, math.Min(math.Ceil(4*sigma), float64(n-1))))

	weights := make([]float64, reach+1)
	for d := range weights {
		z := float64(d) / sigma
		weights[d] = math.Exp(-0.5 * z * z)
	}

	for i := 0; i < n; i++ {
		lo := max(0, i-reach)
		hi := min(n-1, i+reach)
		num, den := 0.0, 0.0
		for j := lo; j <= hi; j++ {
			d := j - i
			if d < 0 {
				d = -d
			}
			w := weights[d]
			num += w * y[j]
			den += w
		}
		out[i] = num / den
	}
	return out
}

func subtract(y, trend []float64) []float64 {
	out := make([]float64, len(y))
	for i := range y {
		out[i] = y[i] - trend[i]
	}
	return out
}
