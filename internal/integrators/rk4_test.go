package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/resilience/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	return dynamo.State{x[1], -x[0]}, nil
}

func (s *simpleDynamics) StateDim() int { return 2 }

// logistic growth has the closed form x(t) = K / (1 + (K/x0 - 1) e^{-rt}).
type logistic struct{ r, k float64 }

func (l *logistic) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	return dynamo.State{l.r * x[0] * (1 - x[0]/l.k)}, nil
}

func (l *logistic) StateDim() int { return 1 }

type stageRecorder struct{ times []float64 }

func (s *stageRecorder) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	s.times = append(s.times, t)
	return dynamo.State{0}, nil
}

func (s *stageRecorder) StateDim() int { return 1 }

type failing struct{ after int }

var errBoom = errors.New("boom")

func (f *failing) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	if f.after == 0 {
		return nil, errBoom
	}
	f.after--
	return dynamo.State{1}, nil
}

func (f *failing) StateDim() int { return 1 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x0 := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		var err error
		x, err = integ.Step(dyn, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4_LogisticClosedForm(t *testing.T) {
	dyn := &logistic{r: 1, k: 10}
	integ := NewRK4()

	x := dynamo.State{1}
	dt := 0.01
	for i := 0; i < 500; i++ {
		x, _ = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	want := 10 / (1 + 9*math.Exp(-5))
	if math.Abs(x[0]-want) > 1e-6 {
		t.Errorf("logistic at t=5: got %.10f, want %.10f", x[0], want)
	}
}

func TestRK4_BeatsEuler(t *testing.T) {
	dyn := &logistic{r: 1, k: 10}
	rk4, euler := NewRK4(), NewEuler()

	xr, xe := dynamo.State{1}, dynamo.State{1}
	dt := 0.1
	for i := 0; i < 50; i++ {
		xr, _ = rk4.Step(dyn, xr, float64(i)*dt, dt)
		xe, _ = euler.Step(dyn, xe, float64(i)*dt, dt)
	}

	want := 10 / (1 + 9*math.Exp(-5))
	if math.Abs(xr[0]-want) >= math.Abs(xe[0]-want) {
		t.Errorf("rk4 error %.3e not below euler error %.3e", math.Abs(xr[0]-want), math.Abs(xe[0]-want))
	}
}

func TestRK4_StageTimes(t *testing.T) {
	rec := &stageRecorder{}
	if _, err := NewRK4().Step(rec, dynamo.State{0}, 2, 0.5); err != nil {
		t.Fatal(err)
	}

	want := []float64{2, 2.25, 2.25, 2.5}
	if len(rec.times) != len(want) {
		t.Fatalf("expected %d evaluations, got %d", len(want), len(rec.times))
	}
	for i := range want {
		if rec.times[i] != want[i] {
			t.Errorf("stage %d at t=%v, want %v", i, rec.times[i], want[i])
		}
	}
}

func TestRK4_PropagatesDeriveError(t *testing.T) {
	for after := 0; after < 4; after++ {
		_, err := NewRK4().Step(&failing{after: after}, dynamo.State{0}, 0, 0.1)
		if !errors.Is(err, errBoom) {
			t.Errorf("failure at stage %d: got %v", after+1, err)
		}
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		if _, err := Get(name); err != nil {
			t.Errorf("Get(%q): %v", name, err)
		}
	}
	if _, err := Get("verlet"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
