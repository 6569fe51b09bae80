package axis

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/san-kum/botcore/internal/async"
	"github.com/san-kum/botcore/internal/control"
	"github.com/san-kum/botcore/internal/dynamo"
	"github.com/san-kum/botcore/internal/metrics"
)

// Mechanism is the hardware side of an axis: a position source and an
// actuation sink in the same units the controller works in.
type Mechanism interface {
	Position() float64
	Apply(output float64)
}

// Zeroer is implemented by mechanisms whose position can be re-zeroed.
type Zeroer interface {
	Zero()
}

// LimitSwitch reports a physical end stop at position zero.
type LimitSwitch interface {
	Pressed() bool
}

const defaultPollInterval = 20 * time.Millisecond

type Axis struct {
	name  string
	ctrl  control.Algorithm
	mech  Mechanism
	sched *async.Scheduler

	mu     sync.Mutex
	target float64
	gen    uint64

	wasBusy bool
	start   time.Time

	pump      func()
	poll      time.Duration
	limit     LimitSwitch
	observers []dynamo.Observer
	clock     clock.Clock
	logger    logr.Logger
}

type Option func(*Axis)

// WithPump sets the callback run between ticks of a blocking move. In a
// simulation it advances the plant, on hardware it waits for the next cycle.
func WithPump(fn func()) Option {
	return func(a *Axis) { a.pump = fn }
}

func WithLogger(l logr.Logger) Option {
	return func(a *Axis) { a.logger = l }
}

// WithLimit re-zeroes the mechanism whenever the switch reads pressed and
// keeps the target from going below zero.
func WithLimit(l LimitSwitch) Option {
	return func(a *Axis) { a.limit = l }
}

func WithObserver(o dynamo.Observer) Option {
	return func(a *Axis) { a.observers = append(a.observers, o) }
}

// WithClock sets the time source for move timeouts and sample stamps.
func WithClock(c clock.Clock) Option {
	return func(a *Axis) { a.clock = c }
}

// WithPollInterval bounds how long an async waiter sleeps between
// re-checking whether the axis already arrived.
func WithPollInterval(d time.Duration) Option {
	return func(a *Axis) { a.poll = d }
}

func New(name string, ctrl control.Algorithm, mech Mechanism, sched *async.Scheduler, opts ...Option) *Axis {
	a := &Axis{
		name:    name,
		ctrl:    ctrl,
		mech:    mech,
		sched:   sched,
		wasBusy: ctrl.Busy(),
		poll:    defaultPollInterval,
		clock:   clock.RealClock{},
		logger:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithName("axis").WithValues("axis", name)
	a.start = a.clock.Now()
	a.target = mech.Position()
	return a
}

func (a *Axis) Name() string                  { return a.name }
func (a *Axis) Controller() control.Algorithm { return a.ctrl }
func (a *Axis) Position() float64             { return a.mech.Position() }

// Output is the last value applied to the mechanism.
func (a *Axis) Output() float64 { return a.ctrl.Result() }

func (a *Axis) Target() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.target
}

func (a *Axis) SetTarget(p float64) {
	a.mu.Lock()
	a.target = a.clampTarget(p)
	a.mu.Unlock()
}

// must hold a.mu
func (a *Axis) clampTarget(p float64) float64 {
	if a.limit != nil && p < 0 {
		return 0
	}
	return p
}

// IsBusy reports whether the mechanism is at least a tolerance away from
// the target.
func (a *Axis) IsBusy() bool {
	return math.Abs(a.Target()-a.Position()) >= a.ctrl.Tolerance()
}

// Tick runs one control cycle. It must only be called from the tick
// goroutine.
func (a *Axis) Tick() {
	if a.limit != nil && a.limit.Pressed() {
		if z, ok := a.mech.(Zeroer); ok {
			z.Zero()
		}
		a.mu.Lock()
		a.target = a.clampTarget(a.target)
		a.mu.Unlock()
	}

	target := a.Target()
	pos := a.mech.Position()
	out := a.ctrl.Calc(target, pos)
	a.mech.Apply(out)

	busy := a.ctrl.Busy()
	if a.wasBusy && !busy {
		metrics.RecordAxisSettled(a.name)
		a.logger.V(1).Info("Axis settled", "target", target, "position", pos)
	}
	a.wasBusy = busy

	if len(a.observers) > 0 {
		s := dynamo.Sample{
			Time:     a.clock.Since(a.start).Seconds(),
			Target:   target,
			Position: pos,
			Output:   out,
		}
		for _, o := range a.observers {
			o.OnStep(s)
		}
	}
}

// supersede invalidates every outstanding request and returns the new
// generation.
func (a *Axis) supersede() uint64 {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.mu.Unlock()
	a.ctrl.Notifier().Interrupt()
	return gen
}

// claim sets the target on behalf of request gen, unless a newer request
// has already been made.
func (a *Axis) claim(gen uint64, p float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return false
	}
	a.target = a.clampTarget(p)
	return true
}

func (a *Axis) current(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return gen == a.gen
}

// GoToBlocking drives the axis to p on the calling goroutine, ticking and
// pumping until it arrives or ctx is done.
func (a *Axis) GoToBlocking(ctx context.Context, p float64) Outcome {
	return a.GoToBlockingTimeout(ctx, p, 0)
}

// GoToBlockingTimeout is GoToBlocking bounded by d. A non-positive d means
// no bound.
func (a *Axis) GoToBlockingTimeout(ctx context.Context, p float64, d time.Duration) Outcome {
	gen := a.supersede()
	a.claim(gen, p)
	start := a.clock.Now()

	for a.IsBusy() {
		if ctx.Err() != nil {
			return Canceled
		}
		if d > 0 && a.clock.Since(start) >= d {
			a.logger.V(1).Info("Blocking move timed out", "target", p, "position", a.Position())
			return TimedOut
		}
		a.Tick()
		if a.pump != nil {
			a.pump()
		}
	}
	return Arrived
}

// GoToAsync sets the target from a scheduler worker and returns a future
// that completes when the axis next goes idle. Earlier async requests on
// this axis complete with Superseded.
func (a *Axis) GoToAsync(p float64) *async.Future[Outcome] {
	return a.GoToAsyncTimeout(p, 0)
}

// GoToAsyncTimeout is GoToAsync whose wait is bounded by d. A non-positive
// d means no bound.
func (a *Axis) GoToAsyncTimeout(p float64, d time.Duration) *async.Future[Outcome] {
	gen := a.supersede()
	a.logger.V(2).Info("Async move requested", "target", p, "generation", gen)

	return async.Submit(a.sched, func(ctx context.Context) (Outcome, error) {
		if !a.claim(gen, p) {
			return Superseded, nil
		}
		return a.await(ctx, gen, d), nil
	})
}

func (a *Axis) await(ctx context.Context, gen uint64, d time.Duration) Outcome {
	var deadline time.Time
	if d > 0 {
		deadline = a.clock.Now().Add(d)
	}
	n := a.ctrl.Notifier()

	for a.IsBusy() {
		if !a.current(gen) {
			return Superseded
		}
		wait := a.poll
		if !deadline.IsZero() {
			left := deadline.Sub(a.clock.Now())
			if left <= 0 {
				return TimedOut
			}
			wait = min(wait, left)
		}

		err := n.AwaitTimeout(ctx, wait)
		switch {
		case err == nil, errors.Is(err, async.ErrTimeout):
		case errors.Is(err, async.ErrInterrupted):
			if !a.current(gen) {
				return Superseded
			}
		default:
			return Canceled
		}
	}
	if !a.current(gen) {
		return Superseded
	}
	return Arrived
}
