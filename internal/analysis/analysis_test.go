package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/resilience/internal/dynamo"
	"github.com/san-kum/resilience/internal/integrators"
	"github.com/san-kum/resilience/internal/physics"
)

func fisheryRHS(k float64) ParamRHS {
	f := physics.NewFishery(k, 0)
	return func(c, x float64) float64 { return f.Growth(x, c) }
}

func TestEquilibria_Fishery(t *testing.T) {
	rhs := fisheryRHS(10)

	tests := []struct {
		name   string
		c      float64
		stable []float64
	}{
		{"low harvest", 1, []float64{8.889}},
		{"bistable", 2.5, []float64{0.463, 5.843}},
		{"collapsed", 2.7, []float64{0.417}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := func(x float64) float64 { return rhs(tt.c, x) }
			eqs := Equilibria(f, 0, 12, 2001)
			require.NotEmpty(t, eqs)

			// x=0 is always an equilibrium and is unstable
			assert.Equal(t, 0.0, eqs[0].X)
			assert.False(t, eqs[0].Stable)

			stable := Stable(eqs)
			require.Len(t, stable, len(tt.stable))
			for i, want := range tt.stable {
				assert.InDelta(t, want, stable[i].X, 0.01)
				assert.Less(t, stable[i].Slope, 0.0)
				assert.InDelta(t, 0, f(stable[i].X), 1e-9)
			}
		})
	}
}

func TestFoldPoints(t *testing.T) {
	diagram := FoldDiagram(fisheryRHS(10), 0.5, 3.0, 251, 0, 12, 2001)
	folds := FoldPoints(diagram)

	// lower fold near c=1.787, upper fold near c=2.604
	require.Len(t, folds, 2)
	assert.InDelta(t, 1.787, folds[0], 0.02)
	assert.InDelta(t, 2.604, folds[1], 0.02)
}

func TestBifurcationDiagram_SettlesOnBranch(t *testing.T) {
	f := physics.NewFishery(10, 1)
	points, err := BifurcationDiagram(context.Background(), f, integrators.NewRK4(),
		"c", 1.0, 2.7, 3, 0, dynamo.State{8}, 0.05, 200, 5)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// c=1 -> high branch, c=1.85 -> still high branch, c=2.7 -> collapsed
	assert.InDelta(t, 8.889, points[0].Values[0], 0.01)
	assert.Greater(t, points[1].Values[0], 5.0)
	assert.InDelta(t, 0.417, points[2].Values[0], 0.01)

	// parameter restored
	assert.Equal(t, 1.0, f.C)
}

func TestBifurcationDiagram_UnknownParam(t *testing.T) {
	_, err := BifurcationDiagram(context.Background(), physics.NewFishery(10, 1), integrators.NewRK4(),
		"r", 0, 1, 2, 0, dynamo.State{8}, 0.1, 1, 1)
	assert.Error(t, err)
}

// lockedDecay is dx/dt = -a x whose parameter cannot be set back to a
// negative value once changed.
type lockedDecay struct{ a float64 }

func (l *lockedDecay) StateDim() int { return 1 }

func (l *lockedDecay) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	return dynamo.State{-l.a * x[0]}, nil
}

func (l *lockedDecay) GetParams() map[string]float64 { return map[string]float64{"a": l.a} }

func (l *lockedDecay) SetParam(name string, v float64) error {
	if v < 0 {
		return errors.New("a must not be negative")
	}
	l.a = v
	return nil
}

func TestBifurcationDiagram_RestoreFailure(t *testing.T) {
	sys := &lockedDecay{a: -1}
	points, err := BifurcationDiagram(context.Background(), sys, integrators.NewRK4(),
		"a", 0.5, 1, 2, 0, dynamo.State{1}, 0.1, 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restore a=-1")
	assert.Nil(t, points)
}

func TestRecoveryRate_SlowsTowardsFold(t *testing.T) {
	grid, err := dynamo.UniformGrid(0, 20, 0.01)
	require.NoError(t, err)

	rate := func(c, eq float64) float64 {
		sim := dynamo.New(physics.NewFishery(10, c), integrators.NewRK4())
		r, err := RecoveryRate(context.Background(), sim, dynamo.State{eq}, grid, 1e-3)
		require.NoError(t, err)
		return r
	}

	far := rate(1, 8.8891)
	near := rate(2.5, 5.8433)

	// linearization: -f'(x*) is about 0.78 at c=1 and 0.19 at c=2.5
	assert.InDelta(t, 0.78, far, 0.03)
	assert.InDelta(t, 0.19, near, 0.03)
	assert.Greater(t, far, near)
	assert.True(t, math.IsInf(ReturnTime(0), 1))
}

func TestPotential_WellsAtStableEquilibria(t *testing.T) {
	f := physics.NewFishery(10, 2.5)
	curve := Potential(func(x float64) float64 { return f.Growth(x, 2.5) }, 0, 10, 1001)
	require.Len(t, curve, 1001)

	// local minima of V sit on the stable equilibria
	var minima []float64
	for i := 1; i < len(curve)-1; i++ {
		if curve[i].Y < curve[i-1].Y && curve[i].Y < curve[i+1].Y {
			minima = append(minima, curve[i].X)
		}
	}
	require.Len(t, minima, 2)
	assert.InDelta(t, 0.463, minima[0], 0.02)
	assert.InDelta(t, 5.843, minima[1], 0.02)
}

func TestASCIIRenderers(t *testing.T) {
	diagram := ToBifurcationPoints(FoldDiagram(fisheryRHS(10), 1, 3, 20, 0, 12, 500))
	art := BifurcationToASCII(diagram, 40, 10)
	assert.Equal(t, 10, strings.Count(art, "\n"))
	assert.Contains(t, art, "•")

	assert.Empty(t, BifurcationToASCII(nil, 10, 10))
	assert.Empty(t, CurveToASCII(nil, 10, 10))

	curve := CurveToASCII([]Point{{0, -1}, {1, 1}}, 10, 5)
	assert.Contains(t, curve, "─")
}
