package sim

import (
	"context"
	"fmt"
	"time"

	testingclock "k8s.io/utils/clock/testing"

	"github.com/san-kum/botcore/internal/dynamo"
)

// Bench is a fixed-step tick driver. Every cycle it ticks the components,
// records a sample from the source, steps the plants and then advances the
// fake clock the components were built with.
type Bench struct {
	clock     *testingclock.FakeClock
	source    Source
	tickers   []Ticker
	plants    []Plant
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(clk *testingclock.FakeClock, source Source) *Bench {
	return &Bench{
		clock:     clk,
		source:    source,
		tickers:   make([]Ticker, 0),
		plants:    make([]Plant, 0),
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (b *Bench) AddTicker(t Ticker)            { b.tickers = append(b.tickers, t) }
func (b *Bench) AddPlant(p Plant)              { b.plants = append(b.plants, p) }
func (b *Bench) AddMetric(m dynamo.Metric)     { b.metrics = append(b.metrics, m) }
func (b *Bench) AddObserver(o dynamo.Observer) { b.observers = append(b.observers, o) }

func (b *Bench) Clock() *testingclock.FakeClock { return b.clock }

func (b *Bench) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := b.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Dt + 0.5)
	result := &Result{
		Samples: make([]dynamo.Sample, 0, steps),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range b.metrics {
		m.Reset()
	}

	err := b.loop(ctx, cfg, steps, func(s dynamo.Sample) bool {
		result.Samples = append(result.Samples, s)
		return true
	}, result)

	for _, m := range b.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, err
}

// RunWithCallback drives the bench without recording. The callback sees
// every sample and ends the run by returning false.
func (b *Bench) RunWithCallback(ctx context.Context, cfg Config, callback func(dynamo.Sample) bool) error {
	if err := b.validateConfig(cfg); err != nil {
		return err
	}
	steps := int(cfg.Duration/cfg.Dt + 0.5)
	result := &Result{}
	if err := b.loop(ctx, cfg, steps, callback, result); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return result.Errors[0]
	}
	return nil
}

func (b *Bench) loop(ctx context.Context, cfg Config, steps int, emit func(dynamo.Sample) bool, result *Result) error {
	tick := time.Duration(cfg.Dt * float64(time.Second))
	settler, canSettle := b.source.(Settler)
	idle := 0
	t := 0.0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, c := range b.tickers {
			c.Tick()
		}

		s := dynamo.Sample{
			Time:     t,
			Target:   b.source.Target(),
			Position: b.source.Position(),
			Output:   b.source.Output(),
		}
		for _, m := range b.metrics {
			m.Observe(s)
		}
		for _, obs := range b.observers {
			obs.OnStep(s)
		}
		if !emit(s) {
			return nil
		}

		for _, p := range b.plants {
			if err := p.Step(); err != nil {
				result.Errors = append(result.Errors, SimError{Time: t, Step: i, Message: err.Error()})
				return nil
			}
		}

		b.clock.Step(tick)
		t += cfg.Dt
		result.StepsTaken++

		if cfg.StopWhenSettled && canSettle {
			if settler.IsBusy() {
				idle = 0
			} else if idle++; idle >= cfg.SettleCycles {
				result.Settled = true
				return nil
			}
		}
	}
	return nil
}

func (b *Bench) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.StopWhenSettled && cfg.SettleCycles <= 0 {
		return fmt.Errorf("settle cycles must be positive when stopping on settle")
	}
	if b.source == nil {
		return fmt.Errorf("bench has no source")
	}
	return nil
}
