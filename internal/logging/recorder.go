package logging

import (
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserver(level zapcore.Level) (zapcore.Core, *observer.ObservedLogs) {
	return observer.New(level)
}

// Recorder exposes the messages captured by a test logger.
type Recorder struct {
	logs *observer.ObservedLogs
}

// Messages returns every logged message in order.
func (r *Recorder) Messages() []string {
	entries := r.logs.All()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

// Count returns how many entries carry msg.
func (r *Recorder) Count(msg string) int {
	return r.logs.FilterMessage(msg).Len()
}
