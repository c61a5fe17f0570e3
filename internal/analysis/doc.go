// Package analysis provides stability and resilience analysis tools.
//
// The package includes tools for characterizing one-dimensional systems:
//
//   - [Equilibria]: roots of the right-hand side with their stability
//   - [BifurcationDiagram]: parameter sweep recording settled states
//   - [FoldDiagram]: analytic equilibrium branches over a parameter range
//   - [RecoveryRate]: return rate after a small perturbation
//   - [Potential]: ball-in-cup landscape V(x) = -∫f(x)dx
//
// # Critical Slowing Down
//
// Near a fold bifurcation the recovery rate tends to zero:
//
//	rate := analysis.RecoveryRate(ctx, sim, x0, grid, 0.1)
//	if rate < 0.2 {
//	    // basin of attraction is shallow
//	}
package analysis
