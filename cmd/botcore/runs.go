package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/botcore/internal/analysis"
	"github.com/san-kum/botcore/internal/store"
	"github.com/san-kum/botcore/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAXIS\tKIND\tTIME\tSTEPS\tSETTLED\tINTEG\tCTRL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%v\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Settled,
			run.Integrator,
			run.Controller,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s: not enough samples to plot", meta.ID)
	}

	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Output
	}

	fmt.Println(viz.PlotTrace(samples, 15, 80, fmt.Sprintf("%s target / position", meta.Name)))
	fmt.Println()
	fmt.Println(viz.PlotSeries(out, 8, 80, "controller output"))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s: no data", meta.ID)
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("axis: %s (%s)\n\n", meta.Name, meta.Controller)

	signal := make([]float64, len(samples))
	for i, s := range samples {
		signal[i] = s.Error()
	}

	bins := analysis.Spectrum(signal, meta.Dt)
	if len(bins) > 1 {
		mags := make([]float64, len(bins)/4+1)
		for i := range mags {
			mags[i] = bins[i].Magnitude
		}
		fmt.Println(viz.PlotSeries(mags, 12, 80, "error spectrum"))
		freq, mag := analysis.DominantFrequency(signal, meta.Dt)
		fmt.Printf("\ndominant frequency: %.3f Hz (magnitude %.4f)\n", freq, mag)
	}

	if len(meta.Params) > 0 {
		fmt.Printf("params: %v\n", meta.Params)
	}
	tol := bandTolerance
	if tol <= 0 {
		if a, err := cfg.Axis(meta.Name); err == nil {
			tol = a.Tolerance
		}
	}
	if tol > 0 {
		fmt.Printf("band exits (±%g): %d\n", tol, analysis.BandExits(samples, tol))
	}

	fmt.Println("\nphase portrait (error vs rate):")
	fmt.Println(analysis.NewPhasePortrait(samples).ASCII(60, 20))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return store.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return store.New(dataDir).ExportCSV(os.Stdout, args[0])
}
