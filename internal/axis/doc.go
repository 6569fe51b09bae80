// Package axis ties one control algorithm to one mechanism and exposes
// blocking and asynchronous "go to position" requests.
//
// The tick goroutine owns the controller: only [Axis.Tick] calls Calc and
// applies the result. Async requests run on an [async.Scheduler] worker that
// sets the target and waits on the controller's notifier for the next
// busy-to-idle edge. A newer request supersedes older ones; their futures
// complete with [Superseded] instead of waiting forever.
package axis
