package axis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/san-kum/botcore/internal/async"
	"github.com/san-kum/botcore/internal/control"
	"github.com/san-kum/botcore/internal/dynamo"
)

// follower moves by exactly the applied output each tick. When stuck it
// ignores output entirely.
type follower struct {
	mu     sync.Mutex
	pos    float64
	last   float64
	stuck  bool
	zeroed int
}

func (f *follower) Position() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *follower) Apply(out float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = out
	if !f.stuck {
		f.pos += out
	}
}

func (f *follower) Zero() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = 0
	f.zeroed++
}

func (f *follower) set(p float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = p
}

type switchStub struct{ pressed bool }

func (s *switchStub) Pressed() bool { return s.pressed }

type recorder struct{ samples []dynamo.Sample }

func (r *recorder) OnStep(s dynamo.Sample) { r.samples = append(r.samples, s) }

func newTestAxis(t *testing.T, mech Mechanism, opts ...Option) (*Axis, *control.PID) {
	t.Helper()
	sched := async.NewScheduler(4, testr.New(t))
	t.Cleanup(sched.Shutdown)
	pid := control.NewPID(control.NewGains(0.01, 0, 0, 0.02), 1)
	opts = append([]Option{WithLogger(testr.New(t))}, opts...)
	return New("test", pid, mech, sched, opts...), pid
}

// tickUntil runs Tick on its own goroutine, standing in for the robot loop,
// until done is closed.
func tickUntil(a *Axis, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				a.Tick()
			}
		}
	}()
}

func TestAxis_StartsAtCurrentPosition(t *testing.T) {
	mech := &follower{pos: 12}
	a, _ := newTestAxis(t, mech)

	assert.Equal(t, 12.0, a.Target())
	assert.False(t, a.IsBusy())
	assert.Equal(t, "test", a.Name())
}

func TestAxis_TickAppliesControllerOutput(t *testing.T) {
	mech := &follower{stuck: true}
	a, pid := newTestAxis(t, mech)

	a.SetTarget(90)
	assert.True(t, a.IsBusy())
	a.Tick()

	assert.InDelta(t, 0.01*90+0.02, mech.last, 1e-9)
	assert.Equal(t, pid.Result(), a.Output())
}

func TestAxis_IsBusyUsesTolerance(t *testing.T) {
	mech := &follower{}
	a, _ := newTestAxis(t, mech)

	a.SetTarget(1)
	assert.True(t, a.IsBusy(), "error equal to tolerance counts as busy")
	a.SetTarget(0.99)
	assert.False(t, a.IsBusy())
}

func TestAxis_GoToBlocking(t *testing.T) {
	mech := &follower{}
	a, pid := newTestAxis(t, mech)

	got := a.GoToBlocking(context.Background(), 90)
	require.Equal(t, Arrived, got)
	assert.InDelta(t, 90, mech.Position(), 1)
	assert.False(t, a.IsBusy())

	// the controller only sees the idle edge on the next cycle
	assert.False(t, pid.Notifier().Signaled())
	a.Tick()
	assert.True(t, pid.Notifier().Signaled())
}

func TestAxis_GoToBlockingTimeout(t *testing.T) {
	clk := testingclock.NewFakeClock(time.Now())
	mech := &follower{stuck: true}
	pumps := 0
	a, _ := newTestAxis(t, mech, WithClock(clk), WithPump(func() {
		pumps++
		clk.Step(10 * time.Millisecond)
	}))

	got := a.GoToBlockingTimeout(context.Background(), 50, 100*time.Millisecond)
	assert.Equal(t, TimedOut, got)
	assert.Equal(t, 10, pumps)
}

func TestAxis_GoToBlockingCanceled(t *testing.T) {
	mech := &follower{stuck: true}
	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	a, _ := newTestAxis(t, mech, WithPump(func() {
		ticks++
		if ticks == 3 {
			cancel()
		}
	}))

	assert.Equal(t, Canceled, a.GoToBlocking(ctx, 50))
}

func TestAxis_GoToAsyncArrives(t *testing.T) {
	mech := &follower{}
	a, _ := newTestAxis(t, mech)

	done := make(chan struct{})
	defer close(done)
	tickUntil(a, done)

	f := a.GoToAsync(90)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	got, err := f.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Arrived, got)
	assert.InDelta(t, 90, mech.Position(), 1)
}

func TestAxis_GoToAsyncSettlesOnce(t *testing.T) {
	mech := &follower{}
	a, _ := newTestAxis(t, mech, WithPollInterval(time.Millisecond))

	f := a.GoToAsync(90)
	require.Eventually(t, func() bool { return a.Target() == 90 }, time.Second, time.Millisecond)

	busy := a.IsBusy()
	require.True(t, busy)
	settled := 0
	for tick := 0; tick < 2000; tick++ {
		a.Tick()
		now := a.IsBusy()
		if busy && !now {
			settled++
		}
		if settled > 0 {
			require.False(t, now, "busy again at tick %d", tick)
		}
		busy = now
	}
	assert.Equal(t, 1, settled)
	assert.False(t, busy)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := f.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Arrived, got)
	assert.InDelta(t, 90, mech.Position(), 1)
}

func TestAxis_GoToAsyncAlreadyThere(t *testing.T) {
	mech := &follower{pos: 5}
	a, _ := newTestAxis(t, mech)

	got, err := a.GoToAsync(5).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Arrived, got)
}

func TestAxis_NewerRequestSupersedes(t *testing.T) {
	mech := &follower{stuck: true}
	a, _ := newTestAxis(t, mech)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := a.GoToAsync(90)
	second := a.GoToAsync(10)

	got, err := first.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Superseded, got)

	require.Eventually(t, func() bool { return a.Target() == 10 }, time.Second, time.Millisecond)
	mech.set(10)
	a.Tick()

	got, err = second.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Arrived, got)
}

func TestAxis_GoToAsyncTimeout(t *testing.T) {
	mech := &follower{stuck: true}
	a, _ := newTestAxis(t, mech)

	got, err := a.GoToAsyncTimeout(40, 30*time.Millisecond).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TimedOut, got)
	assert.Equal(t, 40.0, a.Target())
}

func TestAxis_GoToAsyncTimeoutFollowsClock(t *testing.T) {
	clk := testingclock.NewFakeClock(time.Now())
	mech := &follower{stuck: true}
	a, _ := newTestAxis(t, mech, WithClock(clk), WithPollInterval(time.Millisecond))

	f := a.GoToAsyncTimeout(40, time.Second)
	require.Eventually(t, func() bool { return a.Target() == 40 }, time.Second, time.Millisecond)
	require.Never(t, f.IsDone, 50*time.Millisecond, 5*time.Millisecond, "no clock time has passed")

	require.Eventually(t, func() bool {
		clk.Step(time.Second)
		return f.IsDone()
	}, 5*time.Second, 5*time.Millisecond)

	got, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TimedOut, got)
}

func TestAxis_ChainedMoves(t *testing.T) {
	mech := &follower{}
	a, _ := newTestAxis(t, mech)

	done := make(chan struct{})
	defer close(done)
	tickUntil(a, done)

	chain := async.ThenCompose(a.GoToAsync(30), func(Outcome) *async.Future[Outcome] {
		return a.GoToAsync(60)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	got, err := chain.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Arrived, got)
	assert.InDelta(t, 60, mech.Position(), 1)
}

func TestAxis_LimitSwitchRezeroes(t *testing.T) {
	mech := &follower{pos: 3, stuck: true}
	limit := &switchStub{}
	a, _ := newTestAxis(t, mech, WithLimit(limit))

	a.SetTarget(-5)
	assert.Equal(t, 0.0, a.Target(), "negative targets clamp with a limit switch")

	limit.pressed = true
	a.Tick()
	assert.Equal(t, 1, mech.zeroed)
	assert.Equal(t, 0.0, mech.Position())
}

func TestAxis_Observer(t *testing.T) {
	mech := &follower{}
	rec := &recorder{}
	a, _ := newTestAxis(t, mech, WithObserver(rec))

	a.SetTarget(10)
	a.Tick()
	a.Tick()

	require.Len(t, rec.samples, 2)
	assert.Equal(t, 10.0, rec.samples[0].Target)
	assert.Equal(t, 0.0, rec.samples[0].Position)
	assert.InDelta(t, 0.12, rec.samples[0].Output, 1e-9)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "arrived", Arrived.String())
	assert.Equal(t, "timed out", TimedOut.String())
	assert.Equal(t, "superseded", Superseded.String())
	assert.Equal(t, "canceled", Canceled.String())
}
