// Package series holds the scalar time series passed between the simulator,
// the dataset loader and the early-warning engine.
package series

import (
	"errors"
	"fmt"
	"math"
)

var ErrLengthMismatch = errors.New("series: values and times differ in length")

// Series is an ordered sequence of observations with optional timestamps.
// When Times is nil the position in Values is the label.
type Series struct {
	Values []float64
	Times  []float64
}

// New copies values and, when non-nil, times.
func New(values, times []float64) (Series, error) {
	if times != nil && len(times) != len(values) {
		return Series{}, fmt.Errorf("%w: %d values, %d times", ErrLengthMismatch, len(values), len(times))
	}
	s := Series{Values: append([]float64(nil), values...)}
	if times != nil {
		s.Times = append([]float64(nil), times...)
	}
	return s, nil
}

func (s Series) Len() int { return len(s.Values) }

// Label returns the timestamp of position i, or i itself when the series
// has no timestamps.
func (s Series) Label(i int) float64 {
	if s.Times != nil {
		return s.Times[i]
	}
	return float64(i)
}

// Labels returns Label(i) for every position.
func (s Series) Labels() []float64 {
	out := make([]float64, len(s.Values))
	for i := range out {
		out[i] = s.Label(i)
	}
	return out
}

// Between selects the points whose label lies in [t0, t1].
func (s Series) Between(t0, t1 float64) Series {
	out := Series{Values: make([]float64, 0)}
	if s.Times != nil {
		out.Times = make([]float64, 0)
	}
	for i, v := range s.Values {
		l := s.Label(i)
		if l < t0 || l > t1 {
			continue
		}
		out.Values = append(out.Values, v)
		if s.Times != nil {
			out.Times = append(out.Times, l)
		}
	}
	return out
}

// Thin keeps every k-th point starting at the first one.
func (s Series) Thin(k int) Series {
	if k <= 1 {
		cp, _ := New(s.Values, s.Times)
		return cp
	}
	out := Series{Values: make([]float64, 0, len(s.Values)/k+1)}
	if s.Times != nil {
		out.Times = make([]float64, 0, len(s.Values)/k+1)
	}
	for i := 0; i < len(s.Values); i += k {
		out.Values = append(out.Values, s.Values[i])
		if s.Times != nil {
			out.Times = append(out.Times, s.Times[i])
		}
	}
	return out
}

// DropNaN removes missing observations, keeping timestamps aligned.
func (s Series) DropNaN() Series {
	out := Series{Values: make([]float64, 0, len(s.Values))}
	if s.Times != nil {
		out.Times = make([]float64, 0, len(s.Values))
	}
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		out.Values = append(out.Values, v)
		if s.Times != nil {
			out.Times = append(out.Times, s.Times[i])
		}
	}
	return out
}
