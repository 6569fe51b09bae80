// Package logging builds the logr.Logger handed to every component.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for logger.V.
const (
	DEFAULT = 0
	DEBUG   = 1
	TRACE   = 2
)

// NewLogger returns a development zap logger that emits V(n) messages for
// every n up to verbosity.
func NewLogger(verbosity int) (logr.Logger, error) {
	cfg := uberzap.NewDevelopmentConfig()
	cfg.Level = uberzap.NewAtomicLevelAt(zapcore.Level(-1 * verbosity))
	cfg.DisableStacktrace = true
	z, err := cfg.Build(uberzap.AddCaller())
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(z), nil
}

// NewTestLogger logs everything through an observer core so tests can
// inspect the entries.
func NewTestLogger() (logr.Logger, *Recorder) {
	core, logs := newObserver(zapcore.Level(-1 * TRACE))
	return zapr.NewLogger(uberzap.New(core)), &Recorder{logs: logs}
}
