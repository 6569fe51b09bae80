package storage

import (
	"context"
	"sync"

	"github.com/go-logr/logr"

	"github.com/san-kum/botcore/internal/async"
	"github.com/san-kum/botcore/internal/axis"
	"github.com/san-kum/botcore/internal/control"
)

// carousel reaches whatever the indexer commands in a single tick unless it
// is frozen.
type carousel struct {
	mu     sync.Mutex
	pos    float64
	frozen bool
}

func (c *carousel) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *carousel) Apply(out float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.frozen {
		c.pos += out
	}
}

// servo turns by rate degrees per unit of power each tick.
type servo struct {
	pos  float64
	rate float64
}

func (s *servo) Position() float64 { return s.pos }
func (s *servo) Apply(p float64)   { s.pos += p * s.rate }

type rig struct {
	ctrl     *Controller
	carousel *carousel
	servo    *servo
	reading  Color
	triggers int
	targets  []int64
}

func newRig(logger logr.Logger) *rig {
	r := &rig{carousel: &carousel{}, servo: &servo{rate: 60}}
	pid := control.NewPID(control.NewGains(1, 0, 0, 0), 1)
	indexer := NewIndexer(axis.New("indexer", pid, r.carousel, nil, axis.WithLogger(logger)))
	feeder := NewFeeder(r.servo, DefaultFeederConfig(), logger)
	r.ctrl = NewController(indexer, feeder, ClassifierFunc(func() Color { return r.reading }), logger)
	return r
}

// tick runs one cycle and records feeder triggers and new indexer targets.
func (r *rig) tick() {
	wasResting := r.ctrl.Feeder().State() == FeederResting
	before := r.ctrl.Indexer().TargetIndex()
	r.ctrl.Tick()
	if wasResting && r.ctrl.Feeder().State() == FeederTriggered {
		r.triggers++
	}
	if after := r.ctrl.Indexer().TargetIndex(); after != before {
		r.targets = append(r.targets, after)
	}
}

func (r *rig) tickN(n int) {
	for i := 0; i < n; i++ {
		r.tick()
	}
}

// tickUntilDone ticks until f completes or max ticks pass.
func (r *rig) tickUntilDone(f *async.Future[TaskResult], max int) (TaskResult, bool) {
	for i := 0; i < max; i++ {
		if f.IsDone() {
			break
		}
		r.tick()
	}
	if !f.IsDone() {
		return 0, false
	}
	v, _ := f.Get(context.Background())
	return v, true
}
