// Package automation plays scripted storage sessions against a simulated
// carousel, feeder and colour sensor.
package automation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/botcore/internal/storage"
)

const (
	DefaultDt       = 0.01
	DefaultMaxTicks = 1000
	DefaultPreset   = "sim"
)

// Scenario scripts a storage session: pieces arriving at the intake,
// commands issued to the controller and what the slots should hold
// afterwards.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Dt          float64 `yaml:"dt"`
	// MaxTicks bounds every awaited step.
	MaxTicks int `yaml:"max_ticks"`
	// Initial preloads the physical slots, starting with the one at the
	// front.
	Initial []string `yaml:"initial"`
	Steps   []Step   `yaml:"steps"`
}

// Step is one scripted action. Within a step the intake happens first,
// then the queue is cleared, then commands are queued. The step then runs
// until its commands finish (Await) and for Ticks more cycles.
type Step struct {
	Intake   string   `yaml:"intake,omitempty"`
	Clear    bool     `yaml:"clear,omitempty"`
	Commands []string `yaml:"commands,omitempty"`
	Await    bool     `yaml:"await,omitempty"`
	Ticks    int      `yaml:"ticks,omitempty"`
	Expect   *Expect  `yaml:"expect,omitempty"`
}

// Expect is checked at the end of a step. Unset fields are not checked.
type Expect struct {
	// Results lists the outcome of each command of the step, in order.
	Results []string `yaml:"results,omitempty"`
	Green   *int     `yaml:"green,omitempty"`
	Purple  *int     `yaml:"purple,omitempty"`
	Front   string   `yaml:"front,omitempty"`
	State   string   `yaml:"state,omitempty"`
	// Ejected lists every piece the feeder has fired so far.
	Ejected []string `yaml:"ejected,omitempty"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	sc.applyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

// LoadDir loads every .yaml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

func (sc *Scenario) applyDefaults() {
	if sc.Preset == "" {
		sc.Preset = DefaultPreset
	}
	if sc.Dt <= 0 {
		sc.Dt = DefaultDt
	}
	if sc.MaxTicks <= 0 {
		sc.MaxTicks = DefaultMaxTicks
	}
}

// Validate reports every malformed step at once.
func (sc *Scenario) Validate() error {
	var err error
	if len(sc.Initial) > storage.SlotCount {
		err = multierr.Append(err, fmt.Errorf("initial lists %d slots, storage has %d", len(sc.Initial), storage.SlotCount))
	}
	for _, s := range sc.Initial {
		if _, perr := parseSlot(s); perr != nil {
			err = multierr.Append(err, fmt.Errorf("initial: %w", perr))
		}
	}
	for i, step := range sc.Steps {
		for _, serr := range multierr.Errors(step.validate()) {
			err = multierr.Append(err, fmt.Errorf("step %d: %w", i+1, serr))
		}
	}
	return err
}

func (s Step) validate() error {
	var err error
	if s.Intake != "" {
		if c, perr := parseSlot(s.Intake); perr != nil {
			err = multierr.Append(err, perr)
		} else if c == storage.Open {
			err = multierr.Append(err, fmt.Errorf("intake needs a piece, got %q", s.Intake))
		}
	}
	for _, cmd := range s.Commands {
		if _, ok := storage.ParseTask(cmd); !ok {
			err = multierr.Append(err, fmt.Errorf("unknown command %q", cmd))
		}
	}
	if s.Ticks < 0 {
		err = multierr.Append(err, fmt.Errorf("ticks must not be negative"))
	}
	if e := s.Expect; e != nil {
		if len(e.Results) > 0 && len(e.Results) != len(s.Commands) {
			err = multierr.Append(err, fmt.Errorf("expected %d results for %d commands", len(e.Results), len(s.Commands)))
		}
		if e.Front != "" {
			if _, perr := parseSlot(e.Front); perr != nil {
				err = multierr.Append(err, perr)
			}
		}
		for _, name := range e.Ejected {
			if _, perr := parseSlot(name); perr != nil {
				err = multierr.Append(err, perr)
			}
		}
	}
	return err
}

func parseSlot(s string) (storage.SlotContent, error) {
	for _, c := range []storage.SlotContent{storage.Open, storage.Green, storage.Purple} {
		if c.String() == s {
			return c, nil
		}
	}
	return storage.Open, fmt.Errorf("unknown slot content %q", s)
}
