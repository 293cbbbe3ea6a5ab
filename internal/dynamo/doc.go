// Package dynamo provides the shared primitives of the planner and its
// simulators.
//
//   - [SimulationState]: position, velocity, acceleration and timestamp
//   - [Limits]: velocity, acceleration and jerk bounds
//   - [Vector], [System], [Integrator]: the flat ODE contract used by the
//     trajectory simulator's steppers
//
// # Thread Safety
//
// All types here are values. Integrators may carry scratch buffers and must
// not be shared between goroutines.
package dynamo
