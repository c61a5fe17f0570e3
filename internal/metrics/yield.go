package metrics

import "github.com/san-kum/resilience/internal/dynamo"

// RateFunc returns the harvest rate in force at time t.
type RateFunc func(t float64) (float64, error)

// Yield is the mean catch c x²/(x²+1) over the recorded points. Points where
// the rate cannot be evaluated are skipped.
type Yield struct {
	name    string
	rate    RateFunc
	sum     float64
	samples int
}

func NewYield(rate RateFunc) *Yield {
	return &Yield{name: "yield", rate: rate}
}

func (y *Yield) Name() string { return y.name }

func (y *Yield) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	c, err := y.rate(t)
	if err != nil {
		return
	}
	x2 := x[0] * x[0]
	y.sum += c * x2 / (x2 + 1)
	y.samples++
}

func (y *Yield) Value() float64 {
	if y.samples == 0 {
		return 0
	}
	return y.sum / float64(y.samples)
}

func (y *Yield) Reset() {
	y.sum = 0
	y.samples = 0
}
