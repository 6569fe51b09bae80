package async

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/semaphore"
)

// Scheduler is a bounded worker pool. Every unit of work gets its own
// goroutine, but at most `workers` of them run at once; the rest wait for a
// slot. Submitting never blocks the caller, which keeps it safe to use from
// the tick goroutine.
type Scheduler struct {
	sem     *semaphore.Weighted
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	workers int
	logger  logr.Logger
}

func NewScheduler(workers int, logger logr.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		sem:     semaphore.NewWeighted(int64(workers)),
		ctx:     ctx,
		cancel:  cancel,
		workers: workers,
		logger:  logger.WithName("scheduler"),
	}
}

func (s *Scheduler) Workers() int { return s.workers }

// Submit runs fn on a worker and returns a future for its result. An error
// or panic inside fn fails the future; the pool keeps running.
func Submit[T any](s *Scheduler, fn func(ctx context.Context) (T, error)) *Future[T] {
	return SubmitAfter(s, 0, fn)
}

// SubmitAfter is Submit with fn started no earlier than delay from now.
func SubmitAfter[T any](s *Scheduler, delay time.Duration, fn func(ctx context.Context) (T, error)) *Future[T] {
	if s == nil {
		return Failed[T](ErrSchedulerClosed)
	}
	future := NewFuture[T]()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		future.Fail(ErrSchedulerClosed)
		return future
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-s.ctx.Done():
				timer.Stop()
				future.Fail(ErrSchedulerClosed)
				return
			}
		}

		if err := s.sem.Acquire(s.ctx, 1); err != nil {
			future.Fail(ErrSchedulerClosed)
			return
		}
		defer s.sem.Release(1)

		v, err := run(s.ctx, fn)
		if err != nil {
			s.logger.V(1).Info("Unit of work failed", "err", err)
			future.Fail(err)
			return
		}
		future.Complete(v)
	}()

	return future
}

func run[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("async: unit of work panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// Go runs fn on a worker for its side effects only.
func (s *Scheduler) Go(fn func(ctx context.Context) error) *Future[struct{}] {
	return Submit(s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}

// Shutdown cancels work that has not started, wakes delayed units, and waits
// for running units to return. Running units see their context canceled.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
