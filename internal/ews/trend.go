package ews

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// KendallTau is the rank correlation between t and v over the pairs where v
// is a number. Fewer than two such pairs give NaN.
func KendallTau(t, v []float64) float64 {
	xs := make([]float64, 0, len(v))
	ys := make([]float64, 0, len(v))
	for i, y := range v {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		xs = append(xs, t[i])
		ys = append(ys, y)
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Kendall(xs, ys, nil)
}
