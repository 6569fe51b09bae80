// Package firecontrol aims a turret, a hood and a flywheel launcher at a
// 3D goal from a moving platform.
//
// The [Solver] is a bounded grid search over turret offset, launch angle
// and launch speed against a vacuum trajectory. The projectile inherits a
// configurable fraction of the platform velocity. Among the combinations
// that land within tolerance it keeps the slowest one, earliest in scan
// order. A [System] turns solutions into axis setpoints and decides when
// the current, measured settings would hit the goal.
//
// All lengths are inches, speeds inches per second and angles degrees.
package firecontrol
