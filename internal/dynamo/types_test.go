package dynamo

import (
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_ClampNonNegative(t *testing.T) {
	s := State{-1, 0, 2, -0.5}
	if n := s.ClampNonNegative(); n != 2 {
		t.Errorf("expected 2 clamped, got %d", n)
	}
	for i, v := range s {
		if v < 0 {
			t.Errorf("component %d still negative: %g", i, v)
		}
	}
}

func TestTimeGrid(t *testing.T) {
	tests := []struct {
		name   string
		points []float64
		ok     bool
	}{
		{"valid", []float64{0, 1, 2.5}, true},
		{"single point", []float64{0}, false},
		{"empty", nil, false},
		{"repeated", []float64{0, 1, 1}, false},
		{"decreasing", []float64{0, 2, 1}, false},
		{"NaN", []float64{0, math.NaN()}, false},
		{"Inf", []float64{0, math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimeGrid(tt.points)
			if (err == nil) != tt.ok {
				t.Errorf("NewTimeGrid(%v) err = %v", tt.points, err)
			}
		})
	}
}

func TestTimeGrid_Immutable(t *testing.T) {
	src := []float64{0, 1, 2}
	g, err := NewTimeGrid(src)
	if err != nil {
		t.Fatal(err)
	}
	src[1] = 99
	pts := g.Points()
	pts[2] = -1
	if g.At(1) != 1 || g.At(2) != 2 {
		t.Error("grid changed through caller slices")
	}
}

func TestUniformGrid(t *testing.T) {
	g, err := UniformGrid(0, 600, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 60001 {
		t.Errorf("expected 60001 points, got %d", g.Len())
	}
	if g.End() != 600 {
		t.Errorf("expected end 600, got %.17g", g.End())
	}

	for _, bad := range [][3]float64{{0, 1, 0}, {0, 1, -0.1}, {1, 1, 0.1}, {2, 1, 0.1}} {
		if _, err := UniformGrid(bad[0], bad[1], bad[2]); err == nil {
			t.Errorf("UniformGrid%v: expected error", bad)
		}
	}
}

func TestTrajectory_Component(t *testing.T) {
	tr := &Trajectory{
		Times:  []float64{0, 1, 2},
		States: []State{{1, 10}, {2, 20}, {3, 30}},
	}
	s := tr.Component(1)
	if s.Len() != 3 || s.Values[2] != 30 || s.Times[1] != 1 {
		t.Errorf("unexpected component series %+v", s)
	}
	s.Times[0] = 7
	if tr.Times[0] != 0 {
		t.Error("component shares the trajectory's time slice")
	}
}
