// Package forcing implements time-varying model parameters built by
// piecewise-linear interpolation over a table of (time, value) pairs.
package forcing

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrOutOfRange is returned by a strict table queried outside its span.
	ErrOutOfRange = errors.New("forcing: time outside table range")

	// ErrInvalidTable indicates too few points or non-increasing times.
	ErrInvalidTable = errors.New("forcing: invalid table")
)

// Policy decides what happens when a table is queried outside its span.
type Policy int

const (
	// Clamp returns the nearest boundary value.
	Clamp Policy = iota
	// Strict fails with ErrOutOfRange.
	Strict
)

func (p Policy) String() string {
	switch p {
	case Clamp:
		return "clamp"
	case Strict:
		return "strict"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts "clamp" (or "") and "strict".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "clamp":
		return Clamp, nil
	case "strict":
		return Strict, nil
	}
	return Clamp, fmt.Errorf("forcing: unknown policy %q", s)
}

// Func is anything that yields a parameter value at time t.
type Func interface {
	At(t float64) (float64, error)
}

// Point is one row of a forcing table.
type Point struct {
	Time  float64 `yaml:"time" json:"time"`
	Value float64 `yaml:"value" json:"value"`
}

// Table is an immutable piecewise-linear forcing function.
type Table struct {
	times  []float64
	values []float64
	policy Policy
}

// NewTable copies points; times must be strictly increasing. A single point
// is allowed and acts as a constant inside its (zero-width) span.
func NewTable(points []Point, policy Policy) (*Table, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points", ErrInvalidTable)
	}
	t := &Table{
		times:  make([]float64, len(points)),
		values: make([]float64, len(points)),
		policy: policy,
	}
	for i, p := range points {
		if math.IsNaN(p.Time) || math.IsNaN(p.Value) {
			return nil, fmt.Errorf("%w: NaN at row %d", ErrInvalidTable, i)
		}
		if i > 0 && p.Time <= points[i-1].Time {
			return nil, fmt.Errorf("%w: time %g at row %d not after %g", ErrInvalidTable, p.Time, i, points[i-1].Time)
		}
		t.times[i] = p.Time
		t.values[i] = p.Value
	}
	return t, nil
}

// Ramp builds a two-point table from (t0, v0) to (t1, v1).
func Ramp(t0, v0, t1, v1 float64, policy Policy) (*Table, error) {
	return NewTable([]Point{{t0, v0}, {t1, v1}}, policy)
}

func (t *Table) Policy() Policy { return t.policy }

// Span returns the first and last table times.
func (t *Table) Span() (float64, float64) {
	return t.times[0], t.times[len(t.times)-1]
}

// Covers reports whether [t0, t1] lies inside the table span.
func (t *Table) Covers(t0, t1 float64) bool {
	lo, hi := t.Span()
	return t0 >= lo && t1 <= hi
}

// At interpolates linearly between the bracketing rows.
func (t *Table) At(x float64) (float64, error) {
	n := len(t.times)
	lo, hi := t.times[0], t.times[n-1]
	if x < lo || x > hi {
		if t.policy == Strict {
			return 0, fmt.Errorf("%w: t=%g, table spans [%g, %g]", ErrOutOfRange, x, lo, hi)
		}
		if x < lo {
			return t.values[0], nil
		}
		return t.values[n-1], nil
	}

	// first index with times[i] >= x
	i := sort.SearchFloat64s(t.times, x)
	if t.times[i] == x {
		return t.values[i], nil
	}
	t0, t1 := t.times[i-1], t.times[i]
	v0, v1 := t.values[i-1], t.values[i]
	return v0 + (x-t0)*(v1-v0)/(t1-t0), nil
}

// Points returns a copy of the table rows.
func (t *Table) Points() []Point {
	out := make([]Point, len(t.times))
	for i := range t.times {
		out[i] = Point{Time: t.times[i], Value: t.values[i]}
	}
	return out
}
