package physics

import (
	"fmt"

	"github.com/san-kum/resilience/internal/dynamo"
	"github.com/san-kum/resilience/internal/forcing"
	"github.com/san-kum/resilience/internal/noise"
)

// Fishery is logistic growth with a sigmoidal (type III) harvest:
//
//	dx/dt = x(1 - x/K) - c x²/(x²+1) + ξ
//
// The harvest rate c is the constant C unless Forcing is set, in which case
// it is read from the forcing function at the evaluation time. ξ is one draw
// from Noise per evaluation, or zero when Noise is nil.
type Fishery struct {
	K, C    float64
	Forcing forcing.Func
	Noise   noise.Source
}

func NewFishery(k, c float64) *Fishery {
	return &Fishery{K: k, C: c}
}

func (f *Fishery) StateDim() int { return 1 }

// Validate checks the carrying capacity.
func (f *Fishery) Validate() error {
	if f.K <= 0 {
		return fmt.Errorf("%w: carrying capacity K must be positive, got %g", dynamo.ErrParameterBounds, f.K)
	}
	return nil
}

func (f *Fishery) Derive(s dynamo.State, t float64) (dynamo.State, error) {
	if len(s) < 1 {
		return nil, dynamo.ErrDimensionMismatch
	}
	c, err := f.HarvestRate(t)
	if err != nil {
		return nil, err
	}
	xi := 0.0
	if f.Noise != nil {
		xi = f.Noise.Sample()
	}
	return dynamo.State{f.Growth(s[0], c) + xi}, nil
}

// HarvestRate returns c at time t.
func (f *Fishery) HarvestRate(t float64) (float64, error) {
	if f.Forcing == nil {
		return f.C, nil
	}
	return f.Forcing.At(t)
}

// Growth is the deterministic right-hand side for a given harvest rate.
func (f *Fishery) Growth(x, c float64) float64 {
	x2 := x * x
	return x*(1-x/f.K) - c*x2/(x2+1)
}

// Slope is d(Growth)/dx; negative at a stable equilibrium.
func (f *Fishery) Slope(x, c float64) float64 {
	d := x*x + 1
	return 1 - 2*x/f.K - c*2*x/(d*d)
}

func (f *Fishery) DefaultState() dynamo.State { return dynamo.State{8} }

func (f *Fishery) GetParams() map[string]float64 {
	return map[string]float64{"K": f.K, "c": f.C}
}

func (f *Fishery) SetParam(n string, v float64) error {
	switch n {
	case "K":
		if v <= 0 {
			return fmt.Errorf("%w: K=%g", dynamo.ErrParameterBounds, v)
		}
		f.K = v
	case "c":
		if v < 0 {
			return fmt.Errorf("%w: c=%g", dynamo.ErrParameterBounds, v)
		}
		f.C = v
	default:
		return fmt.Errorf("fishery: unknown parameter %q", n)
	}
	return nil
}
