package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"github.com/san-kum/botcore/internal/logging"
)

// debounceDelay lets editors finish writing before the file is reloaded.
const debounceDelay = 250 * time.Millisecond

// Watch reloads path whenever it changes and passes every config that
// loads and validates to apply. The parent directory is watched so
// editors that replace the file by rename are still seen. Watch returns
// once the watcher is running; it stops when ctx is done.
func Watch(ctx context.Context, path string, logger logr.Logger, apply func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %q: %w", path, err)
	}

	logger = logger.WithName("config-watcher").WithValues("path", abs)
	traceLogger := logger.V(logging.TRACE)

	reload := func() {
		cfg, err := Load(abs)
		if err != nil {
			logger.Error(err, "Failed to reload config")
			return
		}
		if err := cfg.Validate(); err != nil {
			logger.Error(err, "Rejected reloaded config")
			return
		}
		traceLogger.Info("Reloaded config")
		apply(cfg)
	}

	go func() {
		defer w.Close()

		var debounceTimer *time.Timer
		defer func() {
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
		}()

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				traceLogger.Info("Config changed", "event", ev)
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDelay, reload)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error(err, "config watcher failed")
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
