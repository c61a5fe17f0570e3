// Package dynamo provides the simulation primitives for the fishery model.
//
// The package defines the types shared by the integrators, the model and the
// early-warning pipeline:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE right-hand sides (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [TimeGrid]: strictly increasing sample times
//   - [Simulator]: integrates a system over a grid, clamping the state to be
//     non-negative after every step
//
// # Example
//
//	dyn := physics.NewFishery(10, 1)
//	grid, _ := dynamo.UniformGrid(0, 100, 0.01)
//	sim := dynamo.New(dyn, integrators.NewRK4())
//	traj, _ := sim.Integrate(ctx, dynamo.State{8}, grid)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel runs over many
// noise seeds use [Ensemble], which builds a fresh simulator per run.
package dynamo
