package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/resilience/internal/ews"
	"github.com/san-kum/resilience/internal/series"
)

const (
	background = "#0a0a0a"
	axisColor  = "#444466"
	textColor  = "#cccccc"
	lineColor  = "#00ccff"
)

type bounds struct {
	minX, maxX, minY, maxY float64
}

// seriesBounds returns the finite extent of s padded by 10% in y. ok is false
// when fewer than two finite points exist.
func seriesBounds(s series.Series) (b bounds, ok bool) {
	b = bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	n := 0
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		x := s.Label(i)
		b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
		b.minY, b.maxY = math.Min(b.minY, v), math.Max(b.maxY, v)
		n++
	}
	if n < 2 {
		return b, false
	}
	if b.maxX == b.minX {
		b.maxX = b.minX + 1
	}
	rangeY := b.maxY - b.minY
	if rangeY == 0 {
		rangeY = 1
	}
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b, true
}

// path writes the polyline of s inside the box (x0, y0, w, h). NaN values
// break the line into separate segments.
func path(sb *strings.Builder, s series.Series, b bounds, x0, y0, w, h float64, stroke string) {
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke))
	pen := false
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			pen = false
			continue
		}
		x := x0 + (s.Label(i)-b.minX)/(b.maxX-b.minX)*w
		y := y0 + h - (v-b.minY)/(b.maxY-b.minY)*h
		if pen {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" M%.1f,%.1f", x, y))
			pen = true
		}
	}
	sb.WriteString("\"/>\n")
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// panel draws one titled facet with its axes and y-range labels.
func panel(sb *strings.Builder, s series.Series, title string, x0, y0, w, h float64) {
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="12">%s</text>
`, x0, y0-6, textColor, html.EscapeString(title)))
	sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="%s"/>
`, x0, y0, w, h, axisColor))

	b, ok := seriesBounds(s)
	if !ok {
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="11">no data</text>
`, x0+w/2-24, y0+h/2, axisColor))
		return
	}
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="10" text-anchor="end">%.3g</text>
<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="10" text-anchor="end">%.3g</text>
`, x0-4, y0+10, textColor, b.maxY, x0-4, y0+h, textColor, b.minY))
	path(sb, s, b, x0, y0, w, h, lineColor)
}

// SeriesSVG renders s as a single line chart labelled with title.
func SeriesSVG(s series.Series, title string, width, height int) string {
	var sb strings.Builder
	header(&sb, width, height)
	const margin = 50.0
	panel(&sb, s, title, margin, 24, float64(width)-margin-10, float64(height)-44)
	sb.WriteString("</svg>")
	return sb.String()
}

// EWSSVG renders one facet per indicator, stacked vertically in output
// order. The stock series, when non-empty, is drawn as the first facet.
func EWSSVG(stock series.Series, res *ews.Result, width, facetHeight int) string {
	type facet struct {
		title string
		s     series.Series
	}
	var facets []facet
	if stock.Len() > 0 {
		facets = append(facets, facet{"stock", stock})
	}
	for _, name := range res.Order {
		s, _ := res.Get(name)
		title := name
		if tau, ok := res.Trends[name]; ok && !math.IsNaN(tau) {
			title = fmt.Sprintf("%s (Kendall τ=%+.2f)", name, tau)
		}
		facets = append(facets, facet{title, s})
	}

	const margin, gap = 50.0, 30.0
	height := int(float64(len(facets))*(float64(facetHeight)+gap) + gap)

	var sb strings.Builder
	header(&sb, width, height)
	for i, f := range facets {
		y0 := gap + float64(i)*(float64(facetHeight)+gap)
		panel(&sb, f.s, f.title, margin, y0, float64(width)-margin-10, float64(facetHeight))
	}
	sb.WriteString("</svg>")
	return sb.String()
}
