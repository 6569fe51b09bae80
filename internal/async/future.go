package async

import (
	"context"
	"fmt"
	"sync"
)

// Future is a single-assignment cell holding either a value or an error.
// Continuations registered with ThenRun or ThenApply run exactly once, on
// the goroutine that completes the future, or immediately on the registering
// goroutine when the future is already complete.
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	completed bool
	value     T
	err       error
	callbacks []func(T, error)
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a future already holding v.
func Completed[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Complete(v)
	return f
}

// Failed returns a future already holding err.
func Failed[T any](err error) *Future[T] {
	f := NewFuture[T]()
	f.Fail(err)
	return f
}

// Complete stores v. It reports false if the future was already complete.
func (f *Future[T]) Complete(v T) bool {
	return f.settle(v, nil)
}

// Fail stores err. It reports false if the future was already complete.
func (f *Future[T]) Fail(err error) bool {
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.value = v
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(v, err)
	}
	return true
}

// Get blocks until the future completes or ctx is done.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *Future[T]) onComplete(cb func(T, error)) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	v, err := f.value, f.err
	f.mu.Unlock()
	cb(v, err)
}

// ThenRun runs fn with the value once f succeeds. The returned future
// completes after fn returns, or fails with f's error without running fn.
func (f *Future[T]) ThenRun(fn func(T)) *Future[struct{}] {
	next := NewFuture[struct{}]()
	f.onComplete(func(v T, err error) {
		if err != nil {
			next.Fail(err)
			return
		}
		if perr := guard(func() { fn(v) }); perr != nil {
			next.Fail(perr)
			return
		}
		next.Complete(struct{}{})
	})
	return next
}

// ThenApply maps the value of f through fn into a new future.
func ThenApply[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	next := NewFuture[U]()
	f.onComplete(func(v T, err error) {
		if err != nil {
			next.Fail(err)
			return
		}
		var (
			out    U
			mapErr error
		)
		if perr := guard(func() { out, mapErr = fn(v) }); perr != nil {
			next.Fail(perr)
			return
		}
		if mapErr != nil {
			next.Fail(mapErr)
			return
		}
		next.Complete(out)
	})
	return next
}

// ThenCompose chains a step that itself produces a future, so sequences like
// "finish motion A, then start motion B" read as one pipeline.
func ThenCompose[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	next := NewFuture[U]()
	f.onComplete(func(v T, err error) {
		if err != nil {
			next.Fail(err)
			return
		}
		var inner *Future[U]
		if perr := guard(func() { inner = fn(v) }); perr != nil {
			next.Fail(perr)
			return
		}
		inner.onComplete(func(u U, err error) {
			if err != nil {
				next.Fail(err)
				return
			}
			next.Complete(u)
		})
	})
	return next
}

func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("async: continuation panicked: %v", r)
		}
	}()
	fn()
	return nil
}
