package metrics

import (
	"math"

	"github.com/san-kum/resilience/internal/dynamo"
)

// Stability is the fraction of recorded points whose stock stays within
// band of target. A run that leaves the basin of the target equilibrium
// scores well below one.
type Stability struct {
	name       string
	target     float64
	band       float64
	violations int
	samples    int
}

func NewStability(target, band float64) *Stability {
	return &Stability{
		name:   "stability",
		target: target,
		band:   band,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	s.samples++
	if math.Abs(x[0]-s.target) > s.band {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
