package async

import (
	"context"
	"sync"
	"time"
)

// Notifier is a single-flag, multi-waiter wakeup primitive.
//
// A waiter is only satisfied by a Notify or Interrupt that happens after it
// registered. Both are tracked with generation counters, so a waiter that is
// slow to reacquire the lock still sees the wakeup even if another waiter has
// since reset the signaled flag.
type Notifier struct {
	mu        sync.Mutex
	signaled  bool
	notifyGen uint64
	interGen  uint64
	waiters   int
	wake      chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{wake: make(chan struct{})}
}

// Await blocks until Notify, Interrupt, or ctx is done.
func (n *Notifier) Await(ctx context.Context) error {
	return n.await(ctx, nil)
}

// AwaitTimeout is Await bounded by d. The deadline is checked at each wake,
// so precision is best effort.
func (n *Notifier) AwaitTimeout(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	return n.await(ctx, timer.C)
}

func (n *Notifier) await(ctx context.Context, deadline <-chan time.Time) error {
	n.mu.Lock()
	if n.wake == nil {
		n.wake = make(chan struct{})
	}
	n.signaled = false
	notifyGen, interGen := n.notifyGen, n.interGen
	n.waiters++
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		n.waiters--
		n.mu.Unlock()
	}()

	for {
		n.mu.Lock()
		switch {
		case n.notifyGen != notifyGen:
			n.mu.Unlock()
			return nil
		case n.interGen != interGen:
			n.mu.Unlock()
			return ErrInterrupted
		}
		wake := n.wake
		n.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return ErrTimeout
		}
	}
}

// Notify sets the signaled flag and wakes every current waiter.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signaled = true
	n.notifyGen++
	n.broadcast()
}

// Interrupt wakes every current waiter without setting the signaled flag.
// Woken waiters return ErrInterrupted.
func (n *Notifier) Interrupt() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.interGen++
	n.broadcast()
}

// must hold n.mu
func (n *Notifier) broadcast() {
	if n.wake != nil {
		close(n.wake)
	}
	n.wake = make(chan struct{})
}

func (n *Notifier) Signaled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.signaled
}

func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signaled = false
}

// Waiters reports how many goroutines are currently blocked in Await.
func (n *Notifier) Waiters() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.waiters
}
