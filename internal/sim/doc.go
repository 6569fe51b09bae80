// Package sim runs control components against simulated plants.
//
// A [Rig] implements axis.Mechanism on top of a [dynamo.System] and an
// integrator. A [Bench] drives components at a fixed period: each cycle it
// ticks them, records a [dynamo.Sample] from a source, steps the plants and
// advances a fake clock, so controllers that read time see exactly the
// simulated period.
package sim
