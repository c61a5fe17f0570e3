// Package noise provides the process-noise sources injected into the model's
// right-hand side. Every source owns its generator, so two sources built from
// the same seed produce the same draws.
package noise

import (
	"fmt"
	"math/rand/v2"
)

// Source yields one draw per call. The fishery model calls Sample once per
// right-hand-side evaluation.
type Source interface {
	Sample() float64
}

// Uniform draws from [Min, Max). A literal without a generator draws from
// seed 0.
type Uniform struct {
	Min, Max float64
	rng      *rand.Rand
}

// NewUniform returns a uniform source seeded with seed.
func NewUniform(min, max float64, seed uint64) (*Uniform, error) {
	if max < min {
		return nil, fmt.Errorf("noise: max %g below min %g", max, min)
	}
	return &Uniform{Min: min, Max: max, rng: newRand(seed)}, nil
}

func (u *Uniform) Sample() float64 {
	if u.rng == nil {
		u.rng = newRand(0)
	}
	return u.Min + (u.Max-u.Min)*u.rng.Float64()
}

// Normal draws from N(Mean, StdDev²). A literal without a generator draws
// from seed 0.
type Normal struct {
	Mean, StdDev float64
	rng          *rand.Rand
}

func NewNormal(mean, stddev float64, seed uint64) (*Normal, error) {
	if stddev < 0 {
		return nil, fmt.Errorf("noise: negative stddev %g", stddev)
	}
	return &Normal{Mean: mean, StdDev: stddev, rng: newRand(seed)}, nil
}

func (n *Normal) Sample() float64 {
	if n.rng == nil {
		n.rng = newRand(0)
	}
	return n.Mean + n.StdDev*n.rng.NormFloat64()
}

// None is the zero source.
type None struct{}

func (None) Sample() float64 { return 0 }

// RandomSeed returns a seed from the runtime's entropy-seeded generator, for
// runs that do not need to be reproduced.
func RandomSeed() uint64 { return rand.Uint64() }

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
