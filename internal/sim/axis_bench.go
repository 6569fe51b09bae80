package sim

import (
	testingclock "k8s.io/utils/clock/testing"

	"github.com/san-kum/botcore/internal/axis"
	"github.com/san-kum/botcore/internal/control"
)

// NewAxisBench wires an axis around rig and returns a bench that ticks the
// axis, samples it and steps the rig. ctrl should read the same clock. The
// axis has no scheduler, so its async moves fail with
// [async.ErrSchedulerClosed]; drive it with SetTarget or GoToBlocking.
func NewAxisBench(name string, ctrl control.Algorithm, rig *Rig, clk *testingclock.FakeClock, opts ...axis.Option) (*Bench, *axis.Axis) {
	opts = append([]axis.Option{axis.WithClock(clk)}, opts...)
	ax := axis.New(name, ctrl, rig, nil, opts...)

	b := New(clk, ax)
	b.AddTicker(ax)
	b.AddPlant(rig)
	return b, ax
}
