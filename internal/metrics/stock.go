package metrics

import (
	"math"

	"github.com/san-kum/resilience/internal/dynamo"
)

// MeanStock is the average population over the recorded points.
type MeanStock struct {
	name    string
	sum     float64
	samples int
}

func NewMeanStock() *MeanStock {
	return &MeanStock{name: "mean_stock"}
}

func (m *MeanStock) Name() string { return m.name }

func (m *MeanStock) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	m.sum += x[0]
	m.samples++
}

func (m *MeanStock) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanStock) Reset() {
	m.sum = 0
	m.samples = 0
}

// MinStock tracks the lowest population reached.
type MinStock struct {
	name string
	min  float64
	seen bool
}

func NewMinStock() *MinStock {
	return &MinStock{name: "min_stock"}
}

func (m *MinStock) Name() string { return m.name }

func (m *MinStock) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	if !m.seen || x[0] < m.min {
		m.min = x[0]
		m.seen = true
	}
}

func (m *MinStock) Value() float64 {
	if !m.seen {
		return math.NaN()
	}
	return m.min
}

func (m *MinStock) Reset() {
	m.min = 0
	m.seen = false
}
