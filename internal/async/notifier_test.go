package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForWaiters spins until n goroutines are registered on the notifier.
func waitForWaiters(t *testing.T, n *Notifier, want int) {
	t.Helper()
	require.Eventually(t, func() bool { return n.Waiters() == want }, time.Second, time.Millisecond)
}

func TestNotifier_NotifyWakesWaiter(t *testing.T) {
	t.Parallel()
	n := NewNotifier()

	done := make(chan error, 1)
	go func() { done <- n.Await(context.Background()) }()
	waitForWaiters(t, n, 1)

	n.Notify()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by Notify")
	}
	assert.True(t, n.Signaled())
	assert.Equal(t, 0, n.Waiters())
}

func TestNotifier_InterruptDoesNotSignal(t *testing.T) {
	t.Parallel()
	n := NewNotifier()

	done := make(chan error, 1)
	go func() { done <- n.Await(context.Background()) }()
	waitForWaiters(t, n, 1)

	n.Interrupt()

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrInterrupted)
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by Interrupt")
	}
	assert.False(t, n.Signaled())
}

func TestNotifier_NotifyBeforeRegistrationIsNotSeen(t *testing.T) {
	t.Parallel()
	n := NewNotifier()
	n.Notify()

	err := n.AwaitTimeout(context.Background(), 20*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.False(t, n.Signaled(), "await resets the signaled flag on entry")
}

func TestNotifier_AwaitTimeout(t *testing.T) {
	t.Parallel()
	n := NewNotifier()

	start := time.Now()
	err := n.AwaitTimeout(context.Background(), 30*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestNotifier_ContextCancel(t *testing.T) {
	t.Parallel()
	n := NewNotifier()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- n.Await(ctx) }()
	waitForWaiters(t, n, 1)
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
}

func TestNotifier_ManyWaitersRepeatedCycles(t *testing.T) {
	t.Parallel()
	n := NewNotifier()

	const waiters = 8
	for cycle := 0; cycle < 20; cycle++ {
		var wg sync.WaitGroup
		errs := make(chan error, waiters)
		for i := 0; i < waiters; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- n.AwaitTimeout(context.Background(), time.Second)
			}()
		}
		waitForWaiters(t, n, waiters)
		n.Notify()
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err, "cycle %d", cycle)
		}
	}
}

func TestNotifier_ZeroValueUsable(t *testing.T) {
	t.Parallel()
	var n Notifier

	done := make(chan error, 1)
	go func() { done <- n.Await(context.Background()) }()
	waitForWaiters(t, &n, 1)
	n.Notify()
	require.NoError(t, <-done)
}
