package config

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/san-kum/botcore/internal/control"
	"github.com/san-kum/botcore/internal/integrators"
	"github.com/san-kum/botcore/internal/physics"
	"github.com/san-kum/botcore/internal/sim"
	"github.com/san-kum/botcore/internal/storage"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ListAxes(), sortedKeys(cfg.Axes))

	turret, err := cfg.Axis("turret")
	require.NoError(t, err)
	assert.Equal(t, control.GainSet{P: 0.01, D: 0.005, F: 0.02}, turret.Forward)

	_, err = cfg.Axis("elevator")
	assert.ErrorIs(t, err, ErrInvalid)
}

func sortedKeys(m map[string]AxisConfig) []string {
	var names []string
	for _, name := range ListAxes() {
		if _, ok := m[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	cfg.Integrator = "verlet"
	cfg.Axes["turret"] = AxisConfig{Kind: "bang-bang"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestValidateIncludesFireControl(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FireControl.SpeedStep = 0
	assert.Error(t, cfg.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.yaml")
	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.UsePreset("sim")
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "color: purple")
	assert.Contains(t, string(data), "tick_period: 20ms")

	loaded, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 8\nsim:\n  duration: 10\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 8, cfg.Workers)
	assert.Equal(t, DefaultIntegrator, cfg.Integrator)
	assert.Equal(t, 10.0, cfg.Sim.Duration)
	assert.Equal(t, storage.DefaultHSVConfig(), cfg.Storage.Classifier)
}

func TestLoadRejectsUnknownColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	body := "storage:\n  classifier:\n    presets:\n      - color: orange\n        hue: 30\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "orange"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"robot", "sim"}, ListPresets("turret"))
	assert.Nil(t, ListPresets("elevator"))
	assert.Equal(t, []string{"extension", "hood", "indexer", "launcher", "tilt", "turret"}, ListAxes())

	p, err := GetPreset("tilt", "robot")
	require.NoError(t, err)
	assert.Equal(t, KindGravity, p.Kind)
	assert.Equal(t, 19.0, p.Reach)

	_, err = GetPreset("tilt", "fast")
	assert.Error(t, err)
	_, err = GetPreset("elevator", "robot")
	assert.Error(t, err)
}

func TestBuildKinds(t *testing.T) {
	tests := []struct {
		axis string
		want control.Algorithm
	}{
		{"turret", &control.PID{}},
		{"extension", &control.DirectionalPID{}},
		{"tilt", &control.GravityPID{}},
		{"launcher", &control.VelocityPID{}},
	}
	for _, tt := range tests {
		t.Run(tt.axis, func(t *testing.T) {
			a, err := GetPreset(tt.axis, "robot")
			require.NoError(t, err)
			alg, h, err := a.Build()
			require.NoError(t, err)
			assert.IsType(t, tt.want, alg)
			assert.Equal(t, a.Forward, h.Forward.Snapshot())
			assert.Equal(t, a.Tolerance, alg.Tolerance())
			if a.Kind == KindDirectional || a.Kind == KindGravity {
				require.NotNil(t, h.Reverse)
				assert.Equal(t, a.Reverse, h.Reverse.Snapshot())
			} else {
				assert.Nil(t, h.Reverse)
			}
		})
	}

	_, _, err := AxisConfig{Kind: "bang-bang"}.Build()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBuildReversed(t *testing.T) {
	a := AxisConfig{Kind: KindPID, Forward: control.GainSet{P: 1}, Tolerance: 0.5, Reversed: true}
	alg, _, err := a.Build()
	require.NoError(t, err)
	assert.Equal(t, control.Reverse, alg.Direction())
	assert.Less(t, alg.Calc(10, 0), 0.0)
}

func TestPlant(t *testing.T) {
	launcher, _ := GetPreset("launcher", "sim")
	plant, x0 := launcher.BuildPlant()
	assert.IsType(t, &physics.Flywheel{}, plant)
	assert.Len(t, x0, 1)

	hood, _ := GetPreset("hood", "sim")
	plant, x0 = hood.BuildPlant()
	assert.IsType(t, &physics.Motor{}, plant)
	assert.Equal(t, 30.0, x0[0])
}

func TestSimPresetsSettle(t *testing.T) {
	steps := map[string]float64{"indexer": 120, "turret": -40, "hood": 20, "extension": 10, "tilt": 45}
	for name, step := range steps {
		t.Run(name, func(t *testing.T) {
			a, err := GetPreset(name, "sim")
			require.NoError(t, err)

			clk := testingclock.NewFakeClock(time.Unix(0, 0))
			alg, _, err := a.Build(control.WithClock(clk))
			require.NoError(t, err)
			plant, x0 := a.BuildPlant()
			rig := sim.NewRig(plant, integrators.NewRK4(), 0.01, x0)
			b, ax := sim.NewAxisBench(name, alg, rig, clk)

			target := x0[0] + step
			ax.SetTarget(target)
			cfg := sim.DefaultConfig()
			cfg.Duration = 5
			cfg.StopWhenSettled = true
			result, err := b.Run(context.Background(), cfg)
			require.NoError(t, err)
			assert.True(t, result.Settled, "final position %.3f", ax.Position())
			assert.LessOrEqual(t, math.Abs(target-ax.Position()), a.Tolerance)
		})
	}
}

func TestTuningApply(t *testing.T) {
	cfg := DefaultConfig()
	tuning := NewTuning(testr.New(t))

	turret, h, err := cfg.Axes["turret"].Build()
	require.NoError(t, err)
	tuning.Register("turret", h)
	_, tilt, err := cfg.Axes["tilt"].Build()
	require.NoError(t, err)
	tuning.Register("tilt", tilt)
	assert.Equal(t, []string{"tilt", "turret"}, tuning.Axes())

	assert.Empty(t, tuning.Apply(cfg))

	next := DefaultConfig()
	a := next.Axes["turret"]
	a.Forward.P = 0.2
	a.Tolerance = 5
	next.Axes["turret"] = a
	g := next.Axes["tilt"]
	g.G = 0.4
	next.Axes["tilt"] = g

	assert.Equal(t, []string{"tilt", "turret"}, tuning.Apply(next))
	assert.Equal(t, 0.2, turret.(*control.PID).Gains().Snapshot().P)
	assert.Equal(t, 0.4, tilt.G.Get())
	assert.Equal(t, 1.0, turret.Tolerance(), "tolerance needs a rebuild")
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "robot.yaml")
	require.NoError(t, Save(path, DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, path, logr.Discard(), func(c *Config) { got <- c }))

	// Writes to other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("workers: 0\n"), 0644))

	cfg := DefaultConfig()
	cfg.Workers = 7
	require.NoError(t, Save(path, cfg))

	select {
	case c := <-got:
		assert.EqualValues(t, 7, c.Workers)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestWatchSkipsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.yaml")
	require.NoError(t, Save(path, DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, path, logr.Discard(), func(c *Config) { got <- c }))

	bad := DefaultConfig()
	bad.Workers = 0
	require.NoError(t, Save(path, bad))

	select {
	case c := <-got:
		t.Fatalf("invalid config applied: workers=%d", c.Workers)
	case <-time.After(4 * debounceDelay):
	}
}
