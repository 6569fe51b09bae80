package sim

import (
	"fmt"

	"github.com/san-kum/botcore/internal/dynamo"
)

// Ticker is one control cycle of a component: an axis, a storage
// controller or a fire-control system.
type Ticker interface {
	Tick()
}

// Plant is anything advanced by one fixed step per cycle.
type Plant interface {
	Step() error
}

// Source is read once per cycle to build the recorded sample.
type Source interface {
	Target() float64
	Position() float64
	Output() float64
}

// Settler is implemented by sources that know when they have arrived.
type Settler interface {
	IsBusy() bool
}

type Config struct {
	Dt       float64 `yaml:"dt" json:"dt"`
	Duration float64 `yaml:"duration" json:"duration"`

	// StopWhenSettled ends the run once the source has been idle for
	// SettleCycles consecutive cycles.
	StopWhenSettled bool `yaml:"stop_when_settled" json:"stop_when_settled"`
	SettleCycles    int  `yaml:"settle_cycles" json:"settle_cycles"`
}

func DefaultConfig() Config {
	return Config{
		Dt:           0.01,
		Duration:     3.0,
		SettleCycles: 10,
	}
}

type Result struct {
	Samples    []dynamo.Sample
	Metrics    map[string]float64
	StepsTaken int
	Settled    bool
	Errors     []error
}

// ErrorSignal returns the recorded error of every sample.
func (r *Result) ErrorSignal() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Error()
	}
	return out
}

func (r *Result) Positions() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Position
	}
	return out
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
