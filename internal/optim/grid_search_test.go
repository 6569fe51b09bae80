package optim

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/botcore/internal/config"
	"github.com/san-kum/botcore/internal/experiment"
	"github.com/san-kum/botcore/internal/sim"
)

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5))
	assert.Equal(t, []float64{3}, Linspace(3, 9, 1))
}

func TestPointsOrder(t *testing.T) {
	g := NewGridSearch([]string{"kP", "kD"}, [][]float64{{1, 2}, {10, 20, 30}})
	want := []map[string]float64{
		{"kP": 1, "kD": 10}, {"kP": 1, "kD": 20}, {"kP": 1, "kD": 30},
		{"kP": 2, "kD": 10}, {"kP": 2, "kD": 20}, {"kP": 2, "kD": 30},
	}
	if diff := cmp.Diff(want, g.Points()); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func stepBuilder(t *testing.T) (func(map[string]float64) (*sim.Bench, error), sim.Config) {
	t.Helper()
	tuning, err := config.GetPreset("turret", "sim")
	require.NoError(t, err)
	cfg := sim.DefaultConfig()
	cfg.StopWhenSettled = true
	ecfg := experiment.Config{Axis: "turret", Tuning: tuning, Integrator: "rk4", Step: 90, Sim: cfg}
	return func(p map[string]float64) (*sim.Bench, error) {
		exp, err := experiment.New(ecfg, p)
		if err != nil {
			return nil, err
		}
		return exp.Bench(), nil
	}, cfg
}

func TestSearchPrefersFasterGain(t *testing.T) {
	build, cfg := stepBuilder(t)
	g := NewGridSearch([]string{"kP"}, [][]float64{{0.01, 0.05, 0.02}})

	best, err := g.Search(context.Background(), build, cfg, ByMetric("settling_time", true), 2)
	require.NoError(t, err)
	assert.Equal(t, 0.05, best.Params["kP"])
	assert.True(t, best.Result.Settled)
	assert.Greater(t, best.Evaluated, 0)
}

func TestSearchTieGoesToFirst(t *testing.T) {
	build, cfg := stepBuilder(t)
	g := NewGridSearch([]string{"kP"}, [][]float64{{0.05, 0.04, 0.03}})

	best, err := g.Search(context.Background(), build, cfg, func(*sim.Result) (float64, bool) { return 1, true }, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, best.Evaluated)
	assert.Equal(t, 0.05, best.Params["kP"])
}

func TestSearchNoScore(t *testing.T) {
	build, cfg := stepBuilder(t)
	g := NewGridSearch([]string{"kP"}, [][]float64{{0.05}})
	_, err := g.Search(context.Background(), build, cfg, ByMetric("missing", false), 1)
	assert.Error(t, err)
}

func TestSearchBuildError(t *testing.T) {
	build, cfg := stepBuilder(t)
	g := NewGridSearch([]string{"kX"}, [][]float64{{1}})
	_, err := g.Search(context.Background(), build, cfg, ByMetric("settling_time", false), 1)
	assert.Error(t, err)
}

func TestSearchMismatchedRanges(t *testing.T) {
	build, cfg := stepBuilder(t)
	g := NewGridSearch([]string{"kP", "kD"}, [][]float64{{1}})
	_, err := g.Search(context.Background(), build, cfg, ByMetric("settling_time", false), 1)
	assert.Error(t, err)
}
