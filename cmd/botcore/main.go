package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/san-kum/botcore/internal/config"
	"github.com/san-kum/botcore/internal/logging"
	"github.com/san-kum/botcore/internal/metrics"
)

var (
	dataDir     string
	configFile  string
	verbosity   int
	metricsAddr string

	cfg    *config.Config
	logger logr.Logger

	// step, live and tune
	preset      string
	stepSize    float64
	dt          float64
	duration    float64
	integrator  string
	stopSettled bool
	noSave      bool

	// live
	frameRate int
	theme     string
	watch     bool

	// tune
	kpValues   []float64
	kiValues   []float64
	kdValues   []float64
	metricName string
	workers    int

	// solve
	goalX, goalY, goalZ float64
	platVX, platVY      float64

	// scenario
	parallel int

	// analyze
	bandTolerance float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "botcore",
		Short:         "robot motion-control bench",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".botcore", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbose", "v", -1, "log verbosity (0-2), overrides the config")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	stepCmd := &cobra.Command{
		Use:   "step [axis]",
		Short: "run a step response on one simulated axis",
		Args:  cobra.ExactArgs(1),
		RunE:  runStep,
	}
	addBenchFlags(stepCmd)
	stepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [axis]",
		Short: "run a step response with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addBenchFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 0, "samples drawn per second, 0 plays at the tick period, negative runs flat out")
	liveCmd.Flags().StringVar(&theme, "theme", "workshop", "color theme")
	liveCmd.Flags().BoolVar(&watch, "watch", false, "retune from the config file when it changes")

	tuneCmd := &cobra.Command{
		Use:   "tune [axis]",
		Short: "grid search forward gains for one axis",
		Args:  cobra.ExactArgs(1),
		RunE:  runTune,
	}
	addBenchFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&kpValues, "kp", nil, "kP values to try")
	tuneCmd.Flags().Float64SliceVar(&kiValues, "ki", nil, "kI values to try")
	tuneCmd.Flags().Float64SliceVar(&kdValues, "kd", nil, "kD values to try")
	tuneCmd.Flags().StringVar(&metricName, "metric", "settling_time", "metric to minimize")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs, 0 uses the config")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve a shot to a goal relative to the launcher",
		Args:  cobra.NoArgs,
		RunE:  runSolve,
	}
	solveCmd.Flags().Float64Var(&goalX, "x", 120, "goal x (in)")
	solveCmd.Flags().Float64Var(&goalY, "y", 0, "goal y (in)")
	solveCmd.Flags().Float64Var(&goalZ, "z", 60, "goal height above the launcher (in)")
	solveCmd.Flags().Float64Var(&platVX, "vx", 0, "platform velocity x (in/s)")
	solveCmd.Flags().Float64Var(&platVY, "vy", 0, "platform velocity y (in/s)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file|dir]",
		Short: "run storage scenarios against the simulated mechanism",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenarios,
	}
	scenarioCmd.Flags().IntVar(&parallel, "parallel", 0, "scenarios run at once, 0 uses the config")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and phase analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&bandTolerance, "tolerance", 0, "settle band, 0 uses the axis tolerance")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trace",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [axis]",
		Short: "list axes or the tuning presets of one axis",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective config",
		Args:  cobra.NoArgs,
		RunE:  printConfig,
	}

	rootCmd.AddCommand(stepCmd, liveCmd, tuneCmd, solveCmd, scenarioCmd,
		runsCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addBenchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "sim", "tuning preset, empty keeps the config")
	cmd.Flags().Float64Var(&stepSize, "step", 90, "commanded step from the resting position")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep, 0 uses the config")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration, 0 uses the config")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator, empty uses the config")
	cmd.Flags().BoolVar(&stopSettled, "stop-settled", false, "stop once the axis has settled")
}

// setup loads the config, builds the logger and starts the metrics endpoint.
func setup() error {
	var err error
	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
	} else {
		cfg = config.DefaultConfig()
	}
	if verbosity >= 0 {
		cfg.LogLevel = verbosity
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err = logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		metrics.Register()
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(err, "Metrics server stopped", "addr", metricsAddr)
			}
		}()
		logger.V(logging.DEBUG).Info("Serving metrics", "addr", metricsAddr)
	}
	return nil
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
