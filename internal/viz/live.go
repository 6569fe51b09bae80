package viz

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/botcore/internal/dynamo"
)

const historyCapacity = 600

// Runner streams samples until the callback returns false or the run ends.
type Runner interface {
	RunWithCallback(ctx context.Context, callback func(dynamo.Sample) bool) error
}

type sampleMsg dynamo.Sample

type doneMsg struct{ err error }

// LiveOptions tune how a LiveModel paces and draws a run.
type LiveOptions struct {
	// Frame is the wall-clock delay per sample. Zero runs flat out.
	Frame     time.Duration
	Tolerance float64
	// Rotary draws a dial next to the chart.
	Rotary bool
	Theme  Theme
}

// LiveModel is a Bubble Tea model that runs a bench in the background and
// shows it as it goes. Gains edited from the keyboard go straight into the
// running controller through tune.
type LiveModel struct {
	title string
	run   Runner
	tune  dynamo.Configurable
	opts  LiveOptions

	ctx    context.Context
	cancel context.CancelFunc
	msgs   chan tea.Msg
	paused *atomic.Bool

	history  []dynamo.Sample
	keys     []string
	selected int
	done     bool
	err      error
}

func NewLiveModel(title string, run Runner, tune dynamo.Configurable, opts LiveOptions) LiveModel {
	var keys []string
	if tune != nil {
		for k := range tune.GetParams() {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}
	if opts.Theme.Name == "" {
		opts.Theme = Themes[0]
	}
	ctx, cancel := context.WithCancel(context.Background())
	return LiveModel{
		title:   title,
		run:     run,
		tune:    tune,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		msgs:    make(chan tea.Msg),
		paused:  &atomic.Bool{},
		history: make([]dynamo.Sample, 0, historyCapacity),
		keys:    keys,
	}
}

func (m LiveModel) Init() tea.Cmd {
	go m.produce()
	return m.next()
}

// produce runs the bench and forwards every sample to the UI.
func (m LiveModel) produce() {
	err := m.run.RunWithCallback(m.ctx, func(s dynamo.Sample) bool {
		for m.paused.Load() {
			select {
			case <-m.ctx.Done():
				return false
			case <-time.After(20 * time.Millisecond):
			}
		}
		select {
		case m.msgs <- sampleMsg(s):
		case <-m.ctx.Done():
			return false
		}
		if m.opts.Frame > 0 {
			time.Sleep(m.opts.Frame)
		}
		return true
	})
	select {
	case m.msgs <- doneMsg{err: err}:
	case <-m.ctx.Done():
	}
}

func (m LiveModel) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.msgs:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case " ":
			m.paused.Store(!m.paused.Load())
		case "tab":
			if len(m.keys) > 0 {
				m.selected = (m.selected + 1) % len(m.keys)
			}
		case "up", "k":
			m.adjust(1.05)
		case "down", "j":
			m.adjust(0.95)
		case "t":
			m.opts.Theme = m.opts.Theme.next()
		}
	case sampleMsg:
		m.history = append(m.history, dynamo.Sample(msg))
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
		return m, m.next()
	case doneMsg:
		m.done = true
		m.err = msg.err
	}
	return m, nil
}

// adjust scales the selected parameter. Zero gains are nudged off zero so
// they can be raised.
func (m *LiveModel) adjust(factor float64) {
	if m.tune == nil || len(m.keys) == 0 {
		return
	}
	key := m.keys[m.selected]
	v := m.tune.GetParams()[key]
	if v == 0 && factor > 1 {
		v = 1e-4
	}
	_ = m.tune.SetParam(key, v*factor)
}

func (m LiveModel) Paused() bool             { return m.paused.Load() }
func (m LiveModel) Done() bool               { return m.done }
func (m LiveModel) Err() error               { return m.err }
func (m LiveModel) History() []dynamo.Sample { return m.history }
func (m LiveModel) Selected() string {
	if len(m.keys) == 0 {
		return ""
	}
	return m.keys[m.selected]
}

func (m LiveModel) View() string {
	st := m.opts.Theme.styles()

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	switch {
	case m.done && m.err != nil:
		s.WriteString(st.outBand.Render("FAILED: "+m.err.Error()) + "\n\n")
	case m.done:
		s.WriteString(st.done.Render("DONE") + "\n\n")
	case m.paused.Load():
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	default:
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	}

	var last dynamo.Sample
	if len(m.history) > 0 {
		last = m.history[len(m.history)-1]
	}
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", last.Time))
	row("Target", fmt.Sprintf("%.2f", last.Target))
	row("Position", fmt.Sprintf("%.2f", last.Position))
	row("Output", fmt.Sprintf("%.4f", last.Output))

	e := last.Error()
	band := BandBar(e, m.opts.Tolerance, 10)
	if m.opts.Tolerance > 0 && math.Abs(e) <= m.opts.Tolerance {
		band = st.inBand.Render(band)
	} else {
		band = st.outBand.Render(band)
	}
	row("Error", fmt.Sprintf("%.3f ", e)+band)

	s.WriteString("\nGAINS\n")
	if len(m.keys) == 0 {
		s.WriteString(st.label.Render("  (none)") + "\n")
	}
	params := map[string]float64{}
	if m.tune != nil {
		params = m.tune.GetParams()
	}
	for i, k := range m.keys {
		line := fmt.Sprintf("%-4s %.5f", k, params[k])
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.value.Render(line) + "\n")
		}
	}
	s.WriteString(st.help.Render("SP:Pause Tab:Gain ↑↓:Tune T:Theme Q:Quit"))

	chart := PlotTrace(m.history, 10, 60, "target / position")
	left := st.graph.Render(chart)
	if m.opts.Rotary {
		left = lipgloss.JoinVertical(lipgloss.Left, left, Dial(16, 8, last.Position, last.Target))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", s.String())
}

// RunLive shows run full screen until it is quit.
func RunLive(title string, run Runner, tune dynamo.Configurable, opts LiveOptions) error {
	m := NewLiveModel(title, run, tune, opts)
	defer m.cancel()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
