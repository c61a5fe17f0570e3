package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Equilibrium is a root of the right-hand side.
type Equilibrium struct {
	X      float64
	Slope  float64
	Stable bool
}

// Equilibria scans [lo, hi] on samples points, brackets sign changes of f and
// refines each with bisection. Stability is the sign of the central-difference
// slope at the root. Exact zeros at sample points are reported once.
func Equilibria(f func(float64) float64, lo, hi float64, samples int) []Equilibrium {
	if samples < 2 || hi <= lo {
		return nil
	}
	xs := floats.Span(make([]float64, samples), lo, hi)

	var out []Equilibrium
	prev := f(xs[0])
	if prev == 0 {
		out = append(out, classify(f, xs[0], hi-lo))
	}
	for i := 1; i < len(xs); i++ {
		cur := f(xs[i])
		switch {
		case cur == 0:
			out = append(out, classify(f, xs[i], hi-lo))
		case prev != 0 && math.Signbit(prev) != math.Signbit(cur):
			out = append(out, classify(f, bisect(f, xs[i-1], xs[i]), hi-lo))
		}
		prev = cur
	}
	return out
}

func bisect(f func(float64) float64, a, b float64) float64 {
	fa := f(a)
	for i := 0; i < 200 && b-a > 1e-13*math.Max(1, math.Abs(a)); i++ {
		m := 0.5 * (a + b)
		fm := f(m)
		if fm == 0 {
			return m
		}
		if math.Signbit(fm) == math.Signbit(fa) {
			a, fa = m, fm
		} else {
			b = m
		}
	}
	return 0.5 * (a + b)
}

func classify(f func(float64) float64, x, span float64) Equilibrium {
	h := 1e-6 * math.Max(span, 1)
	slope := (f(x+h) - f(x-h)) / (2 * h)
	return Equilibrium{X: x, Slope: slope, Stable: slope < 0}
}

// Stable filters the stable equilibria.
func Stable(eqs []Equilibrium) []Equilibrium {
	out := make([]Equilibrium, 0, len(eqs))
	for _, e := range eqs {
		if e.Stable {
			out = append(out, e)
		}
	}
	return out
}
