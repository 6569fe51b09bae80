package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/golang/geo/r3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/botcore/internal/automation"
	"github.com/san-kum/botcore/internal/config"
	"github.com/san-kum/botcore/internal/control"
	"github.com/san-kum/botcore/internal/firecontrol"
	"github.com/san-kum/botcore/internal/integrators"
	"github.com/san-kum/botcore/internal/metrics"
	"github.com/san-kum/botcore/internal/physics"
)

func runSolve(cmd *cobra.Command, args []string) error {
	solver := firecontrol.NewSolver(cfg.FireControl)
	rel := r3.Vector{X: goalX, Y: goalY, Z: goalZ}
	inherited := solver.Inherited(r3.Vector{X: platVX, Y: platVY})

	start := time.Now()
	sol := solver.Solve(rel, inherited)
	elapsed := time.Since(start)
	metrics.RecordSolve(elapsed, sol.Valid)
	logger.V(1).Info("Solved", "goal", rel, "valid", sol.Valid, "elapsed", elapsed)

	fmt.Printf("goal: (%.1f, %.1f, %.1f) in  platform: (%.1f, %.1f) in/s\n", goalX, goalY, goalZ, platVX, platVY)
	fmt.Println(sol)
	if !sol.Valid {
		return nil
	}
	fmt.Printf("hood sensor: %.1f°\n", cfg.Hood.SensorAngle(sol.LaunchAngle))

	v := firecontrol.LaunchVector(sol.TurretAngle, sol.LaunchAngle, sol.LaunchSpeed).Add(inherited)
	if miss, ok := solver.Miss(rel, v); ok {
		fmt.Printf("predicted miss: %.2f in\n", miss)
	}
	// The closed-form landing counts dz the opposite way to the projectile's
	// z axis.
	if land, ok := fly(v, -goalZ, cfg.FireControl.Gravity); ok {
		fmt.Printf("integrated miss: %.2f in\n", math.Hypot(land.X-rel.X, land.Y-rel.Y))
	}
	return nil
}

// fly integrates the shot until it comes down through dz.
func fly(v r3.Vector, dz, gravity float64) (r3.Vector, bool) {
	const step = 1e-4
	p := physics.NewProjectile()
	p.Gravity = gravity
	integ, _ := integrators.ByName("rk4")

	x := physics.Launch(r3.Vector{}, v)
	for t := 0.0; t < 10; t += step {
		next := integ.Step(p, x, nil, t, step)
		pos, prev := physics.Position(next), physics.Position(x)
		if physics.Velocity(next).Z < 0 && prev.Z >= dz && pos.Z < dz {
			f := (prev.Z - dz) / (prev.Z - pos.Z)
			return prev.Add(pos.Sub(prev).Mul(f)), true
		}
		x = next
	}
	return r3.Vector{}, false
}

func runScenarios(cmd *cobra.Command, args []string) error {
	var (
		scenarios []*automation.Scenario
		err       error
	)
	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	if info.IsDir() {
		scenarios, err = automation.LoadDir(args[0])
	} else {
		var sc *automation.Scenario
		sc, err = automation.LoadScenario(args[0])
		scenarios = []*automation.Scenario{sc}
	}
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		fmt.Println("no scenarios found")
		return nil
	}

	limit := parallel
	if limit <= 0 {
		limit = int(cfg.Workers)
	}

	ctx, cancel := signalContext()
	defer cancel()

	runner := automation.NewRunner(cfg, logger)
	reports, err := runner.RunAll(ctx, scenarios, limit)
	if err != nil {
		return err
	}

	failed := 0
	for _, rep := range reports {
		if rep.Passed() {
			fmt.Printf("PASS  %s (%d steps)\n", rep.Scenario, len(rep.Steps))
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", rep.Scenario)
		for _, f := range rep.Failures() {
			fmt.Printf("      %s\n", f)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(reports))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println(strings.Join(config.ListAxes(), "\n"))
		return nil
	}

	names := config.ListPresets(args[0])
	if names == nil {
		return fmt.Errorf("no presets for axis %q", args[0])
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tKIND\tTOL\tFORWARD\tREVERSE\tG")
	for _, name := range names {
		a, err := config.GetPreset(args[0], name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%s\t%g\n",
			name, a.Kind, a.Tolerance, gainString(a.Forward), gainString(a.Reverse), a.G)
	}
	return w.Flush()
}

func gainString(g control.GainSet) string {
	if g == (control.GainSet{}) {
		return "-"
	}
	return fmt.Sprintf("P%g I%g D%g F%g", g.P, g.I, g.D, g.F)
}

func printConfig(cmd *cobra.Command, args []string) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}
