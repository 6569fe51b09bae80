// Package experiment builds step-response runs of one simulated axis from
// its configuration.
package experiment

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/san-kum/botcore/internal/axis"
	"github.com/san-kum/botcore/internal/config"
	"github.com/san-kum/botcore/internal/control"
	"github.com/san-kum/botcore/internal/dynamo"
	"github.com/san-kum/botcore/internal/integrators"
	"github.com/san-kum/botcore/internal/metrics"
	"github.com/san-kum/botcore/internal/sim"
	"github.com/san-kum/botcore/internal/store"
)

// Config describes a step response: the axis starts at its plant's
// resting position and is commanded Step away from it.
type Config struct {
	Axis       string
	Tuning     config.AxisConfig
	Integrator string
	Step       float64
	Sim        sim.Config
	Logger     logr.Logger
}

type Experiment struct {
	cfg    Config
	bench  *sim.Bench
	axis   *axis.Axis
	rig    *sim.Rig
	handle config.Handle
	params map[string]float64
}

// New builds the bench. Overrides retune the fresh controller by parameter
// name: "kP", "kI", "kD" and "kF" set forward gains, a "reverse." prefix
// sets reverse gains and "g" sets the gravity constant.
func New(cfg Config, overrides map[string]float64) (*Experiment, error) {
	integ, ok := integrators.ByName(cfg.Integrator)
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", cfg.Integrator)
	}

	clk := testingclock.NewFakeClock(time.Unix(0, 0))
	alg, h, err := cfg.Tuning.Build(control.WithClock(clk), control.WithLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(h, overrides); err != nil {
		return nil, err
	}

	plant, x0 := cfg.Tuning.BuildPlant()
	rig := sim.NewRig(plant, integ, cfg.Sim.Dt, x0)
	b, ax := sim.NewAxisBench(cfg.Axis, alg, rig, clk, axis.WithLogger(cfg.Logger))
	ax.SetTarget(x0[0] + cfg.Step)

	b.AddMetric(metrics.NewSettlingTime(cfg.Tuning.Tolerance))
	b.AddMetric(metrics.NewOvershoot())
	b.AddMetric(metrics.NewControlEffort())

	return &Experiment{
		cfg:    cfg,
		bench:  b,
		axis:   ax,
		rig:    rig,
		handle: h,
		params: params(h),
	}, nil
}

func applyOverrides(h config.Handle, overrides map[string]float64) error {
	for name, v := range overrides {
		switch {
		case name == "g":
			if h.G == nil {
				return fmt.Errorf("g: %w", dynamo.ErrUnknownParam)
			}
			h.G.Set(v)
		case strings.HasPrefix(name, "reverse."):
			if h.Reverse == nil {
				return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
			}
			if err := h.Reverse.SetParam(strings.TrimPrefix(name, "reverse."), v); err != nil {
				return err
			}
		default:
			if err := h.Forward.SetParam(name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// params flattens the tuning the run actually used.
func params(h config.Handle) map[string]float64 {
	out := h.Forward.GetParams()
	if h.Reverse != nil {
		for k, v := range h.Reverse.GetParams() {
			out["reverse."+k] = v
		}
	}
	if h.G != nil {
		out["g"] = h.G.Get()
	}
	return out
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.bench.Run(ctx, e.cfg.Sim)
}

// RunWithCallback streams samples instead of recording them.
func (e *Experiment) RunWithCallback(ctx context.Context, callback func(dynamo.Sample) bool) error {
	return e.bench.RunWithCallback(ctx, e.cfg.Sim, callback)
}

func (e *Experiment) Bench() *sim.Bench     { return e.bench }
func (e *Experiment) Axis() *axis.Axis      { return e.axis }
func (e *Experiment) Rig() *sim.Rig         { return e.rig }
func (e *Experiment) Handle() config.Handle { return e.handle }
func (e *Experiment) Params() map[string]float64 {
	out := make(map[string]float64, len(e.params))
	for k, v := range e.params {
		out[k] = v
	}
	return out
}

// Info describes the run for the store.
func (e *Experiment) Info() store.RunInfo {
	return store.RunInfo{
		Name:       e.cfg.Axis,
		Kind:       "step",
		Dt:         e.cfg.Sim.Dt,
		Duration:   e.cfg.Sim.Duration,
		Integrator: e.cfg.Integrator,
		Controller: e.cfg.Tuning.Kind,
		Params:     e.Params(),
	}
}

// ParamNames lists the names New accepts as overrides for t, sorted.
func ParamNames(t config.AxisConfig) []string {
	_, h, err := t.Build()
	if err != nil {
		return nil
	}
	names := make([]string, 0, 9)
	for k := range params(h) {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
