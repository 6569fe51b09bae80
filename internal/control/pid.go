package control

import (
	"math"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/san-kum/botcore/internal/async"
)

// loop holds the runtime state shared by every PID variant.
type loop struct {
	tolerance float64
	direction Direction

	integral  float64
	lastError float64
	result    float64
	terms     Terms
	busy      bool
	lastTime  time.Time

	clock    clock.PassiveClock
	notifier *async.Notifier
	logger   logr.Logger
}

func newLoop(tolerance float64, opts []Option) loop {
	o := buildOptions(opts)
	return loop{
		tolerance: tolerance,
		direction: o.direction,
		busy:      true,
		lastTime:  o.clock.Now(),
		clock:     o.clock,
		notifier:  o.notifier,
		logger:    o.logger,
	}
}

// step runs one control cycle on error e. ff is the additive feedforward
// used outside tolerance and hold is the output inside tolerance.
func (l *loop) step(e float64, g GainSet, ff, hold float64) float64 {
	wasBusy := l.busy

	if math.Abs(e) > l.tolerance {
		now := l.clock.Now()
		dt := float64(now.Sub(l.lastTime)) / float64(time.Millisecond)
		l.lastTime = now

		p := g.P * e
		l.integral += g.I * e * dt
		d := g.D * (e - l.lastError)
		l.lastError = e

		out := p + l.integral + d + ff
		if l.direction == Reverse {
			out = -out
		}
		l.result = out
		l.terms = Terms{P: p, I: l.integral, D: d, F: ff}
		l.busy = true
	} else {
		l.result = hold
		l.terms = Terms{F: hold}
		l.busy = false
	}

	if wasBusy && !l.busy {
		l.logger.V(1).Info("Controller settled", "error", e, "output", l.result)
		l.notifier.Notify()
	}
	return l.result
}

// holdRatio is how much of the tolerance band e uses.
func (l *loop) holdRatio(e float64) float64 {
	if l.tolerance <= 0 {
		return 0
	}
	return math.Abs(e) / l.tolerance
}

func (l *loop) Result() float64           { return l.result }
func (l *loop) Terms() Terms              { return l.terms }
func (l *loop) SetTolerance(t float64)    { l.tolerance = t }
func (l *loop) Tolerance() float64        { return l.tolerance }
func (l *loop) SetDirection(d Direction)  { l.direction = d }
func (l *loop) Direction() Direction      { return l.direction }
func (l *loop) Busy() bool                { return l.busy }
func (l *loop) Notifier() *async.Notifier { return l.notifier }
func (l *loop) Integral() float64         { return l.integral }

// Reset clears the integral and derivative memory and restarts the time base.
func (l *loop) Reset() {
	l.integral = 0
	l.lastError = 0
	l.lastTime = l.clock.Now()
}

type PID struct {
	loop
	gains *Gains
}

func NewPID(gains *Gains, tolerance float64, opts ...Option) *PID {
	return &PID{loop: newLoop(tolerance, opts), gains: gains}
}

func (p *PID) Gains() *Gains { return p.gains }

func (p *PID) Calc(target, actual float64) float64 {
	e := target - actual
	g := p.gains.Snapshot()
	return p.step(e, g, g.F, g.F*p.holdRatio(e))
}

var _ Algorithm = (*PID)(nil)
