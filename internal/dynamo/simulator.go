package dynamo

import (
	"context"
	"fmt"
	"log/slog"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	metrics    []Metric
	logger     *slog.Logger
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		logger:     slog.Default(),
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// WithLogger replaces the logger used for run summaries.
func (s *Simulator) WithLogger(l *slog.Logger) *Simulator {
	if l != nil {
		s.logger = l
	}
	return s
}

// Integrate advances x0 across every point of grid. After each step any
// negative component is clamped to zero before the next step is computed,
// so every recorded state is non-negative. The step size is the spacing of
// the grid at that point.
func (s *Simulator) Integrate(ctx context.Context, x0 State, grid TimeGrid) (*Trajectory, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if dim := s.dyn.StateDim(); len(x0) != dim {
		return nil, fmt.Errorf("%w: x0 has %d components, system expects %d", ErrDimensionMismatch, len(x0), dim)
	}
	if !x0.IsValid() {
		return nil, ErrInvalidState
	}

	n := grid.Len()
	result := &Trajectory{
		Times:   make([]float64, 0, n),
		States:  make([]State, 0, n),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	result.Clamped += x.ClampNonNegative()
	s.record(result, x, grid.At(0))

	for i := 0; i < n-1; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t := grid.At(i)
		newX, err := s.integrator.Step(s.dyn, x, t, grid.Step(i))
		if err != nil {
			return nil, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
		}
		if !newX.IsValid() {
			return nil, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
		}

		result.Clamped += newX.ClampNonNegative()
		x = newX
		result.StepsTaken++
		s.record(result, x, grid.At(i+1))
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("integration finished",
		"steps", result.StepsTaken,
		"t_end", grid.End(),
		"clamped", result.Clamped,
	)

	return result, nil
}

func (s *Simulator) record(result *Trajectory, x State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
}
