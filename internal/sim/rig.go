package sim

import (
	"fmt"
	"sync"

	"github.com/san-kum/botcore/internal/dynamo"
)

// Rig stands in for a motor and its encoder. It integrates a plant one
// fixed step at a time with the last applied command held constant, and
// reports the first state component as the position.
type Rig struct {
	mu     sync.Mutex
	plant  dynamo.System
	integ  dynamo.Integrator
	dt     float64
	x      dynamo.State
	u      dynamo.Control
	t      float64
	offset float64

	hasStop bool
	stop    float64
}

type RigOption func(*Rig)

// WithEndStop puts a hard stop at the given raw plant position. The rig
// cannot move below it and reports Pressed while resting on it.
func WithEndStop(at float64) RigOption {
	return func(r *Rig) {
		r.hasStop = true
		r.stop = at
	}
}

func NewRig(plant dynamo.System, integ dynamo.Integrator, dt float64, x0 dynamo.State, opts ...RigOption) *Rig {
	x := make(dynamo.State, plant.StateDim())
	copy(x, x0)
	r := &Rig{
		plant: plant,
		integ: integ,
		dt:    dt,
		x:     x,
		u:     make(dynamo.Control, max(plant.ControlDim(), 1)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Rig) Position() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.x[0] - r.offset
}

func (r *Rig) Apply(output float64) {
	r.mu.Lock()
	r.u[0] = output
	r.mu.Unlock()
}

// Zero makes the current raw position read as zero.
func (r *Rig) Zero() {
	r.mu.Lock()
	r.offset = r.x[0]
	r.mu.Unlock()
}

func (r *Rig) Pressed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasStop && r.x[0] <= r.stop
}

// Step advances the plant by one dt.
func (r *Rig) Step() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.integ.Step(r.plant, r.x, r.u, r.t, r.dt)
	if !next.IsValid() {
		return fmt.Errorf("rig at t=%.4f: %w", r.t, dynamo.ErrInvalidState)
	}
	if r.hasStop && next[0] < r.stop {
		next[0] = r.stop
		if len(next) > 1 && next[1] < 0 {
			next[1] = 0
		}
	}
	r.x = next
	r.t += r.dt
	return nil
}

// State returns a copy of the raw plant state.
func (r *Rig) State() dynamo.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.x.Clone()
}

func (r *Rig) Command() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u[0]
}

func (r *Rig) Time() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t
}
