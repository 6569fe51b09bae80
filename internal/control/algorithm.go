package control

import (
	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/san-kum/botcore/internal/async"
)

type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Terms are the individual contributions of the last Calc. G is the gravity
// compensation and stays zero for controllers without it.
type Terms struct {
	P, I, D, F, G float64
}

// Algorithm is a closed-loop controller for one axis.
type Algorithm interface {
	// Calc computes and stores a new output for target and actual.
	Calc(target, actual float64) float64
	// Result returns the output of the last Calc.
	Result() float64
	Terms() Terms

	SetTolerance(tolerance float64)
	Tolerance() float64
	SetDirection(d Direction)
	Direction() Direction

	// Busy reports whether the last Calc was outside tolerance.
	Busy() bool
	// Notifier fires on every busy-to-idle transition.
	Notifier() *async.Notifier
}

type options struct {
	clock     clock.PassiveClock
	direction Direction
	logger    logr.Logger
	notifier  *async.Notifier
}

type Option func(*options)

// WithClock sets the time source used for the integral term.
func WithClock(c clock.PassiveClock) Option {
	return func(o *options) { o.clock = c }
}

func WithDirection(d Direction) Option {
	return func(o *options) { o.direction = d }
}

func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNotifier shares an existing notifier instead of allocating one.
func WithNotifier(n *async.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func buildOptions(opts []Option) options {
	o := options{
		clock:  clock.RealClock{},
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = async.NewNotifier()
	}
	return o
}
