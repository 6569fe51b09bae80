// Package physics provides small plant models used to exercise the
// control stack without hardware.
//
// Each model implements [dynamo.System]:
//
//   - [Motor]: a positional joint driven by a power command, with an
//     optional gravity load that varies with the joint angle
//   - [Flywheel]: a velocity-controlled wheel with viscous drag
//   - [Projectile]: a point mass in flight under gravity and optional drag
//
// Motor and Flywheel also implement [dynamo.Configurable] so their
// constants can be adjusted while a bench is running.
//
// Plants are stepped by an integrator from package integrators:
//
//	m := physics.NewMotor()
//	x := dynamo.State{0, 0}
//	x = integrators.NewRK4().Step(m, x, dynamo.Control{0.4}, 0, 0.01)
package physics
