package viz

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/botcore/internal/control"
	"github.com/san-kum/botcore/internal/dynamo"
)

func TestCanvasLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		assert.True(t, c.IsSet(i, i), "pixel %d", i)
	}
	assert.False(t, c.IsSet(7, 0))
	assert.False(t, c.IsSet(100, 0))

	c.Clear()
	assert.Equal(t, strings.Repeat(strings.Repeat("⠀", 4)+"\n", 2), c.String())
}

func TestDrawRay(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawRay(10, 10, 8, 0)
	assert.True(t, c.IsSet(18, 10))
	c.DrawRay(10, 10, 8, 90)
	assert.True(t, c.IsSet(10, 2))
}

func TestDial(t *testing.T) {
	d := Dial(8, 4, 45, 90)
	lines := strings.Split(strings.TrimSuffix(d, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.NotEqual(t, strings.Repeat("⠀", 8), lines[1])
}

func trace(n int) []dynamo.Sample {
	out := make([]dynamo.Sample, n)
	for i := range out {
		out[i] = dynamo.Sample{Time: float64(i) * 0.01, Target: 90, Position: float64(i)}
	}
	return out
}

func TestPlotTrace(t *testing.T) {
	assert.Empty(t, PlotTrace(trace(1), 5, 20, "x"))
	plot := PlotTrace(trace(500), 5, 40, "step")
	assert.Contains(t, plot, "step")
	assert.NotEmpty(t, PlotSeries([]float64{1, 2, 3}, 3, 10, "output"))
}

func TestBandBar(t *testing.T) {
	assert.Equal(t, "[=====-----]", BandBar(0.5, 1, 10))
	assert.Equal(t, "[==========]", BandBar(-3, 1, 10))
	assert.Equal(t, "[==========]", BandBar(0.1, 0, 10))
}

type fakeRunner struct {
	samples []dynamo.Sample
	err     error
}

func (f fakeRunner) RunWithCallback(ctx context.Context, cb func(dynamo.Sample) bool) error {
	for _, s := range f.samples {
		if !cb(s) {
			return nil
		}
	}
	return f.err
}

// drain feeds the model its own commands until the run reports done.
func drain(t *testing.T, m LiveModel) LiveModel {
	t.Helper()
	cmd := m.Init()
	for i := 0; i < 1000 && cmd != nil; i++ {
		next, c := m.Update(cmd())
		m = next.(LiveModel)
		cmd = c
	}
	require.True(t, m.Done())
	return m
}

func TestLiveModelStreams(t *testing.T) {
	m := NewLiveModel("turret", fakeRunner{samples: trace(50)}, nil, LiveOptions{Tolerance: 1, Rotary: true})
	m = drain(t, m)
	assert.Len(t, m.History(), 50)
	assert.NoError(t, m.Err())

	view := m.View()
	assert.Contains(t, view, "TURRET")
	assert.Contains(t, view, "DONE")
	assert.Contains(t, view, "(none)")
}

func TestLiveModelKeepsRecentHistory(t *testing.T) {
	m := drain(t, NewLiveModel("x", fakeRunner{samples: trace(historyCapacity + 10)}, nil, LiveOptions{}))
	require.Len(t, m.History(), historyCapacity)
	assert.Equal(t, 10.0, m.History()[0].Position)
}

func TestLiveModelReportsFailure(t *testing.T) {
	m := drain(t, NewLiveModel("x", fakeRunner{samples: trace(3), err: errors.New("plant diverged")}, nil, LiveOptions{}))
	assert.EqualError(t, m.Err(), "plant diverged")
	assert.Contains(t, m.View(), "plant diverged")
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m LiveModel, keys ...string) LiveModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(LiveModel)
	}
	return m
}

func TestLiveModelTunesGains(t *testing.T) {
	gains := control.NewGains(0.05, 0, 0, 0)
	m := NewLiveModel("turret", fakeRunner{}, gains, LiveOptions{})
	defer m.cancel()

	// keys sort as kD, kF, kI, kP
	assert.Equal(t, "kD", m.Selected())
	m = press(m, "tab", "tab", "tab")
	require.Equal(t, "kP", m.Selected())

	m = press(m, "up")
	assert.InDelta(t, 0.0525, gains.Snapshot().P, 1e-12)
	m = press(m, "j")
	assert.InDelta(t, 0.0525*0.95, gains.Snapshot().P, 1e-12)

	m = press(m, "tab")
	assert.Equal(t, "kD", m.Selected())
	m = press(m, "k")
	assert.InDelta(t, 1.05e-4, gains.Snapshot().D, 1e-12)
	assert.Contains(t, m.View(), "> kD")
}

func TestLiveModelPauseAndTheme(t *testing.T) {
	m := NewLiveModel("x", fakeRunner{}, nil, LiveOptions{})
	defer m.cancel()

	m = press(m, " ")
	assert.True(t, m.Paused())
	assert.Contains(t, m.View(), "PAUSED")
	m = press(m, " ")
	assert.False(t, m.Paused())

	m = press(m, "t")
	assert.Equal(t, Themes[1].Name, m.opts.Theme.Name)
}

func TestLiveModelQuit(t *testing.T) {
	m := NewLiveModel("x", fakeRunner{}, nil, LiveOptions{})
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Error(t, m.ctx.Err())
}
