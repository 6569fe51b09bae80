// Package storage runs the three-slot rotating indexer that holds game
// pieces between collection and launch.
//
// The [Controller] tracks what each physical slot holds and turns queued
// requests (load a green, load a purple, make room, bump) into indexer
// rotations and feeder triggers. Logical positions are always derived from
// the physical slots and the indexer's current index:
//
//	front = slots[idx]        (under the colour sensor, collection side)
//	left  = slots[(idx+1)%3]  (over the feeder)
//	right = slots[(idx+2)%3]
//
// A clockwise step increments idx. Slot contents are only refreshed from the
// [Classifier] while the indexer is stationary and aligned with its target
// index, so readings taken mid-rotation are never attributed to a slot.
//
// Tick, like every other component tick, belongs to the control loop
// goroutine. The command methods (LoadGreen, BumpClockwise, ...) may be
// called from anywhere.
package storage
