// Package control provides the closed-loop single-axis controllers that drive
// every mechanism on the robot.
//
// All controllers implement [Algorithm]:
//
//   - [PID]: proportional-integral-derivative with an additive feedforward
//   - [DirectionalPID]: separate gain sets for positive and negative error
//   - [GravityPID]: directional PID plus a gravity compensation term
//   - [VelocityPID]: velocity loop whose feedforward scales with the target
//
// # Usage
//
//	gains := control.NewGains(0.01, 0, 0, 0.02)
//	pid := control.NewPID(gains, 1.0)
//	for {
//		out := pid.Calc(target, sensor.Position())
//		motor.Apply(out)
//	}
//
// Outside tolerance the output is p + integral + d + kF. Inside tolerance
// the controller holds with kF scaled by how much of the tolerance band is
// used, and reports itself idle. Output is not clamped and the integral has
// no anti-windup; callers that need either must apply it to the result.
//
// Gains are read on every Calc through a [Gains] handle, so a config watcher
// can retune a running loop. Each busy-to-idle transition fires the
// controller's [async.Notifier] exactly once.
//
// Calc must be called from a single goroutine (the tick loop).
package control
