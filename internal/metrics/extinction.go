package metrics

import (
	"math"

	"github.com/san-kum/resilience/internal/dynamo"
)

// Extinction reports the fraction of recorded points with the stock at or
// below threshold. With threshold 0 it counts points pinned by the
// non-negativity clamp.
type Extinction struct {
	name      string
	threshold float64
	below     int
	samples   int
	first     float64
}

func NewExtinction(threshold float64) *Extinction {
	return &Extinction{
		name:      "extinct_fraction",
		threshold: threshold,
		first:     math.NaN(),
	}
}

func (e *Extinction) Name() string { return e.name }

func (e *Extinction) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	e.samples++
	if x[0] <= e.threshold {
		e.below++
		if math.IsNaN(e.first) {
			e.first = t
		}
	}
}

func (e *Extinction) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return float64(e.below) / float64(e.samples)
}

// FirstCrossing is the time the stock first fell to the threshold, or NaN.
func (e *Extinction) FirstCrossing() float64 { return e.first }

func (e *Extinction) Reset() {
	e.below = 0
	e.samples = 0
	e.first = math.NaN()
}

// Defaults returns the metric set attached to every exercise run.
func Defaults(target float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewMeanStock(),
		NewMinStock(),
		NewExtinction(1e-3),
		NewStability(target, 1.0),
	}
}
