// Package viz renders simulation and early-warning results in the terminal.
//
//   - [PlotSeries] and [PlotEWS]: asciigraph line charts, one facet per
//     indicator, titled with lipgloss styles
//   - [Canvas] and [Scatter]: Braille scatter plots for bifurcation diagrams
//   - [Browse]: a Bubble Tea browser for stepping through indicator facets
//
// # Key Bindings (Browse)
//
//	←/→ h/l - Previous/next indicator
//	↑/↓ k/j - Previous/next result
//	s       - Toggle the stock series facet
//	q       - Quit
package viz
