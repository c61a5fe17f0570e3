// Package physics provides the harvested fish population model.
//
// [Fishery] implements [dynamo.System] for the one-dimensional equation
//
//	dx/dt = x(1 - x/K) - c x²/(x²+1)
//
// which has a fold bifurcation: as the harvest rate c rises past a threshold
// (about 2.6 for K=10) the high-stock equilibrium collides with the
// unstable one and the population collapses to the low branch.
//
// The model also implements [dynamo.Configurable] for parameter sweeps:
//
//	f := physics.NewFishery(10, 1)
//	_ = f.SetParam("c", 2.5)
package physics
