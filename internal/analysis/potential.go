package analysis

import (
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Point is one sample of a curve.
type Point struct{ X, Y float64 }

// Potential integrates V(x) = -∫ f(s) ds from lo with the trapezoid rule on
// n evenly spaced points. Minima of V are the stable equilibria of f; the
// width of a well is the basin of attraction.
func Potential(f func(float64) float64, lo, hi float64, n int) []Point {
	if n < 2 || hi <= lo {
		return nil
	}
	xs := floats.Span(make([]float64, n), lo, hi)
	out := make([]Point, n)
	out[0] = Point{X: xs[0]}
	prevF := f(xs[0])
	v := 0.0
	for i := 1; i < n; i++ {
		curF := f(xs[i])
		v -= 0.5 * (prevF + curF) * (xs[i] - xs[i-1])
		out[i] = Point{X: xs[i], Y: v}
		prevF = curF
	}
	return out
}

// CurveToASCII renders a curve as a scatter of dots
func CurveToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	// Find bounds
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	// Draw the zero line if it crosses the visible area
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			canvas[row][col] = '─'
		}
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
