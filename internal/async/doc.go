// Package async bridges the single-goroutine control loop with worker
// goroutines.
//
//   - [Notifier]: edge-triggered wakeup shared by one signaler and many waiters
//   - [Future]: single-assignment result with chained continuations
//   - [Scheduler]: bounded worker pool whose units of work return a [Future]
//
// The tick goroutine never blocks on anything in this package. Workers block
// on a [Notifier] owned by the axis they are waiting for and complete a
// [Future] when it fires.
package async
