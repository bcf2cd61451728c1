// Package nbody provides the gravitational N-body engine.
//
// The package defines the types that make up a run:
//
//   - [Vector]: D-component numeric vector
//   - [Particle]: point mass with position, velocity and force state
//   - [Grid]: ordered particle collection and the pairwise force law
//   - [Simulation]: velocity-Verlet time loop over a Grid
//
// # Example
//
//	grid, _ := nbody.NewGrid(particles)
//	s, _ := nbody.New(grid, 0.01, 10)
//	result, _ := s.Simulate(ctx)
//
// # Step Ordering
//
// Each step stores the current forces, advances positions, recomputes
// forces at the new positions and then advances velocities with the mean
// of the old and new force. Forces must reflect the initial positions
// before the first step; [Simulation.Prime] does that once.
//
// # Thread Safety
//
// A Simulation and its Grid are owned by one goroutine. [WithWorkers]
// parallelizes the force accumulation internally without changing the
// floating-point summation order.
package nbody
