package config

import (
	"sort"
	"sync"

	"github.com/go-logr/logr"
)

// Tuning maps axis names to the live handles of their running controllers
// so a reloaded config can retune them in place.
type Tuning struct {
	mu      sync.Mutex
	handles map[string]Handle
	logger  logr.Logger
}

func NewTuning(logger logr.Logger) *Tuning {
	return &Tuning{handles: make(map[string]Handle), logger: logger}
}

func (t *Tuning) Register(axis string, h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handles[axis] = h
}

// Axes returns the registered axis names.
func (t *Tuning) Axes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.handles))
	for name := range t.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply copies gains and gravity constants from cfg into the registered
// handles and returns the axes it changed. Tolerance, kind and plant need a
// rebuild and are ignored here.
func (t *Tuning) Apply(cfg *Config) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var changed []string
	for name, h := range t.handles {
		a, ok := cfg.Axes[name]
		if !ok {
			continue
		}
		dirty := false
		if h.Forward != nil && h.Forward.Snapshot() != a.Forward {
			h.Forward.Set(a.Forward)
			dirty = true
		}
		if h.Reverse != nil && h.Reverse.Snapshot() != a.Reverse {
			h.Reverse.Set(a.Reverse)
			dirty = true
		}
		if h.G != nil && h.G.Get() != a.G {
			h.G.Set(a.G)
			dirty = true
		}
		if dirty {
			t.logger.Info("Retuned axis", "axis", name, "forward", a.Forward, "reverse", a.Reverse, "g", a.G)
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}
