package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/botcore/internal/analysis"
	"github.com/san-kum/botcore/internal/config"
	"github.com/san-kum/botcore/internal/experiment"
	"github.com/san-kum/botcore/internal/metrics"
	"github.com/san-kum/botcore/internal/optim"
	"github.com/san-kum/botcore/internal/sim"
	"github.com/san-kum/botcore/internal/store"
	"github.com/san-kum/botcore/internal/viz"
)

// experimentConfig resolves the axis tuning and bench settings from the
// config and the command line.
func experimentConfig(name string) (experiment.Config, error) {
	var (
		tuning config.AxisConfig
		err    error
	)
	if preset != "" {
		tuning, err = config.GetPreset(name, preset)
	} else {
		tuning, err = cfg.Axis(name)
	}
	if err != nil {
		return experiment.Config{}, err
	}

	simCfg := cfg.Sim
	if dt > 0 {
		simCfg.Dt = dt
	}
	if duration > 0 {
		simCfg.Duration = duration
	}
	if stopSettled {
		simCfg.StopWhenSettled = true
	}

	integ := cfg.Integrator
	if integrator != "" {
		integ = integrator
	}

	return experiment.Config{
		Axis:       name,
		Tuning:     tuning,
		Integrator: integ,
		Step:       stepSize,
		Sim:        simCfg,
		Logger:     logger.WithName(name),
	}, nil
}

func runStep(cmd *cobra.Command, args []string) error {
	ecfg, err := experimentConfig(args[0])
	if err != nil {
		return err
	}
	exp, err := experiment.New(ecfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	logger.V(1).Info("Step finished", "axis", ecfg.Axis, "steps", result.StepsTaken, "elapsed", time.Since(start))

	fmt.Printf("axis: %s (%s)\n", ecfg.Axis, ecfg.Tuning.Kind)
	fmt.Printf("steps: %d  settled: %v\n\n", result.StepsTaken, result.Settled)
	printMetrics(result.Metrics)

	sum := metrics.Summarize(result.Samples)
	fmt.Printf("\nmean |e|: %.4f  rms e: %.4f  final e: %.4f  peak out: %.4f\n",
		sum.MeanAbsError, sum.RMSError, sum.FinalError, sum.PeakOutput)
	if freq, mag := analysis.DominantFrequency(result.ErrorSignal(), ecfg.Sim.Dt); mag > 0 {
		fmt.Printf("dominant error frequency: %.3f Hz\n", freq)
	}

	fmt.Println()
	fmt.Println(viz.PlotTrace(result.Samples, 15, 80, fmt.Sprintf("%s target / position", ecfg.Axis)))

	if noSave {
		return nil
	}
	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(exp.Info(), result)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun: %s\n", id)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-16s %.4f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	ecfg, err := experimentConfig(args[0])
	if err != nil {
		return err
	}
	exp, err := experiment.New(ecfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if watch {
		if configFile == "" {
			return fmt.Errorf("--watch needs --config")
		}
		tuning := config.NewTuning(logger)
		tuning.Register(ecfg.Axis, exp.Handle())
		go func() {
			err := config.Watch(ctx, configFile, logger, func(c *config.Config) {
				tuning.Apply(c)
			})
			if err != nil {
				logger.Error(err, "Config watch stopped", "path", configFile)
			}
		}()
	}

	frame := cfg.TickPeriod
	switch {
	case frameRate > 0:
		frame = time.Second / time.Duration(frameRate)
	case frameRate < 0:
		frame = 0
	}
	opts := viz.LiveOptions{
		Frame:     frame,
		Tolerance: ecfg.Tuning.Tolerance,
		Rotary:    ecfg.Axis == "turret" || ecfg.Axis == "indexer",
		Theme:     viz.GetTheme(theme),
	}
	return viz.RunLive(ecfg.Axis, exp, exp.Handle().Forward, opts)
}

func runTune(cmd *cobra.Command, args []string) error {
	ecfg, err := experimentConfig(args[0])
	if err != nil {
		return err
	}

	var (
		names  []string
		ranges [][]float64
	)
	for _, p := range []struct {
		name   string
		values []float64
	}{{"kP", kpValues}, {"kI", kiValues}, {"kD", kdValues}} {
		if len(p.values) > 0 {
			names = append(names, p.name)
			ranges = append(ranges, p.values)
		}
	}
	if len(names) == 0 {
		names = []string{"kP"}
		p := ecfg.Tuning.Forward.P
		ranges = [][]float64{optim.Linspace(p/4, p*4, 16)}
	}

	limit := workers
	if limit <= 0 {
		limit = int(cfg.Workers)
	}

	ctx, cancel := signalContext()
	defer cancel()

	grid := optim.NewGridSearch(names, ranges)
	build := func(params map[string]float64) (*sim.Bench, error) {
		exp, err := experiment.New(ecfg, params)
		if err != nil {
			return nil, err
		}
		return exp.Bench(), nil
	}
	best, err := grid.Search(ctx, build, ecfg.Sim, optim.ByMetric(metricName, true), limit)
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d of %d points\n", best.Evaluated, len(grid.Points()))
	parts := make([]string, 0, len(best.Params))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, best.Params[name]))
	}
	fmt.Printf("best %s: %.4f at %s\n\n", metricName, best.Value, strings.Join(parts, " "))
	printMetrics(best.Result.Metrics)
	return nil
}
