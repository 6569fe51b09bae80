package async

import "errors"

var (
	// ErrInterrupted is returned by a Notifier wait that was woken by Interrupt.
	ErrInterrupted = errors.New("async: wait interrupted")

	// ErrTimeout is returned by a bounded Notifier wait whose deadline passed.
	ErrTimeout = errors.New("async: wait timed out")

	// ErrSchedulerClosed fails work submitted after Shutdown.
	ErrSchedulerClosed = errors.New("async: scheduler is shut down")
)
