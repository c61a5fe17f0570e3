package dynamo

import (
	"fmt"
	"math"
)

// TimeGrid is an immutable, strictly increasing sequence of sample times.
type TimeGrid struct {
	points []float64
}

// NewTimeGrid validates and copies points.
func NewTimeGrid(points []float64) (TimeGrid, error) {
	if len(points) < 2 {
		return TimeGrid{}, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidGrid, len(points))
	}
	for i, t := range points {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return TimeGrid{}, fmt.Errorf("%w: non-finite time at index %d", ErrInvalidGrid, i)
		}
		if i > 0 && t <= points[i-1] {
			return TimeGrid{}, fmt.Errorf("%w: t[%d]=%g not greater than t[%d]=%g", ErrInvalidGrid, i, t, i-1, points[i-1])
		}
	}
	cp := make([]float64, len(points))
	copy(cp, points)
	return TimeGrid{points: cp}, nil
}

// UniformGrid builds t0, t0+dt, ... up to and including t1 (within half a
// step). Points are computed as t0+i*dt so rounding does not accumulate.
func UniformGrid(t0, t1, dt float64) (TimeGrid, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return TimeGrid{}, fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidGrid, dt)
	}
	if t1 <= t0 {
		return TimeGrid{}, fmt.Errorf("%w: end %g not after start %g", ErrInvalidGrid, t1, t0)
	}
	steps := int(math.Round((t1 - t0) / dt))
	points := make([]float64, steps+1)
	for i := range points {
		points[i] = t0 + float64(i)*dt
	}
	return NewTimeGrid(points)
}

func (g TimeGrid) Len() int { return len(g.points) }

func (g TimeGrid) At(i int) float64 { return g.points[i] }

// Step returns the spacing between point i and i+1.
func (g TimeGrid) Step(i int) float64 { return g.points[i+1] - g.points[i] }

func (g TimeGrid) Start() float64 { return g.points[0] }

func (g TimeGrid) End() float64 { return g.points[len(g.points)-1] }

// Points returns a copy of the grid times.
func (g TimeGrid) Points() []float64 {
	cp := make([]float64, len(g.points))
	copy(cp, g.points)
	return cp
}

// Validate reports whether g was built through a constructor.
func (g TimeGrid) Validate() error {
	if len(g.points) < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidGrid, len(g.points))
	}
	return nil
}
