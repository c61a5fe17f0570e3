package dynamo

import (
	"math"

	"github.com/san-kum/resilience/internal/series"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// ClampNonNegative sets every negative component to zero in place and
// reports how many components were changed.
func (s State) ClampNonNegative() int {
	n := 0
	for i, v := range s {
		if v < 0 {
			s[i] = 0
			n++
		}
	}
	return n
}

// System is the right-hand side of an ODE. Derive may fail when an
// exogenous input (a forcing table in strict mode) cannot be evaluated at t.
type System interface {
	Derive(x State, t float64) (State, error)
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t, dt float64) (State, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Trajectory is the output of one integration: one state per grid point.
type Trajectory struct {
	Times      []float64
	States     []State
	Metrics    map[string]float64
	Clamped    int
	StepsTaken int
}

// Len returns the number of recorded points.
func (tr *Trajectory) Len() int { return len(tr.Times) }

// Component extracts state component i as a timestamped series.
func (tr *Trajectory) Component(i int) series.Series {
	values := make([]float64, len(tr.States))
	for k, x := range tr.States {
		if i < len(x) {
			values[k] = x[i]
		}
	}
	times := make([]float64, len(tr.Times))
	copy(times, tr.Times)
	return series.Series{Values: values, Times: times}
}

// Final returns the last recorded state, or nil for an empty trajectory.
func (tr *Trajectory) Final() State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1].Clone()
}
