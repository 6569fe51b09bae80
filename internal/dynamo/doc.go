// Package dynamo provides the primitives shared by the plant models and the
// control loop.
//
//   - [State]: vector representing a plant state
//   - [System]: interface for plant dynamics (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface
//   - [Configurable]: parameters that can be tuned while running
//   - [Sample], [Metric], [Observer]: per-cycle axis observations
//
// # Example
//
//	motor := physics.NewMotor()
//	rig := sim.NewRig(motor, integrators.NewRK4(), dt)
//	x := integ.Step(motor, x, dynamo.Control{0.5}, t, dt)
//
// # Thread Safety
//
// Plants and integrators are NOT thread-safe; each belongs to the goroutine
// that drives the control loop. [ParallelFor] hands out disjoint index ranges.
package dynamo
