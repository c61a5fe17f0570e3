package integrators

import (
	"testing"

	"github.com/san-kum/resilience/internal/dynamo"
)

type benchDynamics struct{}

func (b *benchDynamics) StateDim() int { return 1 }
func (b *benchDynamics) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	v := x[0]
	return dynamo.State{v*(1-v/10) - v*v/(v*v+1)}, nil
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	dyn := &benchDynamics{}
	x := dynamo.State{8.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &benchDynamics{}
	x := dynamo.State{8.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integrator.Step(dyn, x, 0, 0.01)
	}
}
