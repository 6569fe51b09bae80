package storage

import (
	"math"

	"github.com/san-kum/botcore/internal/axis"
)

// DegreesPerSlot is the indexer rotation between adjacent slots.
const DegreesPerSlot = 120.0

// SlotCount is the number of physical slots.
const SlotCount = 3

// Indexer addresses the rotating carousel by slot index instead of degrees.
type Indexer struct {
	axis *axis.Axis
}

func NewIndexer(a *axis.Axis) *Indexer {
	return &Indexer{axis: a}
}

func (i *Indexer) Axis() *axis.Axis { return i.axis }
func (i *Indexer) Tick()            { i.axis.Tick() }
func (i *Indexer) IsBusy() bool     { return i.axis.IsBusy() }

func (i *Indexer) CurrentIndex() int64 {
	return degreesToIndex(i.axis.Position())
}

func (i *Indexer) TargetIndex() int64 {
	return degreesToIndex(i.axis.Target())
}

// NormalizedIndex is the current index folded into [0, SlotCount).
func (i *Indexer) NormalizedIndex() int {
	return floorMod(i.CurrentIndex(), SlotCount)
}

func (i *Indexer) SetTargetIndex(idx int64) {
	i.axis.SetTarget(float64(idx) * DegreesPerSlot)
}

func (i *Indexer) AdvanceClockwise(n int) {
	i.SetTargetIndex(i.TargetIndex() + int64(n))
}

func (i *Indexer) AdvanceCounterclockwise(n int) {
	i.SetTargetIndex(i.TargetIndex() - int64(n))
}

// degreesToIndex rounds half up, so -60° maps to slot 0 rather than -1.
func degreesToIndex(deg float64) int64 {
	return int64(math.Floor(deg/DegreesPerSlot + 0.5))
}

func floorMod(a int64, n int) int {
	m := int(a % int64(n))
	if m < 0 {
		m += n
	}
	return m
}
