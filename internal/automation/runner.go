package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/san-kum/botcore/internal/async"
	"github.com/san-kum/botcore/internal/axis"
	"github.com/san-kum/botcore/internal/config"
	"github.com/san-kum/botcore/internal/control"
	"github.com/san-kum/botcore/internal/dynamo"
	"github.com/san-kum/botcore/internal/integrators"
	"github.com/san-kum/botcore/internal/physics"
	"github.com/san-kum/botcore/internal/sim"
	"github.com/san-kum/botcore/internal/storage"
)

// feederPlant is a light servo horn: about 150°/s at the feeder's power.
var feederPlant = config.PlantConfig{Gain: 6000, Damping: 20, Inertia: 1}

type StepReport struct {
	Step     int
	Ticks    int
	Results  []string
	Slots    [storage.SlotCount]storage.SlotContent
	State    storage.State
	Failures []string
}

type Report struct {
	Scenario string
	Steps    []StepReport
	Ejected  []storage.SlotContent
	// Trace samples the indexer on a single time base across all steps.
	Trace []dynamo.Sample
}

func (r *Report) Passed() bool {
	return len(r.Failures()) == 0
}

func (r *Report) Failures() []string {
	var out []string
	for _, s := range r.Steps {
		for _, f := range s.Failures {
			out = append(out, fmt.Sprintf("step %d: %s", s.Step, f))
		}
	}
	return out
}

// poller keeps the colour sensor's smoothing window fed every cycle, as
// the sensor loop on the robot does, so a reading taken on arrival reflects
// the slot now in front.
type poller struct {
	classifier *storage.HSVClassifier
}

func (p poller) Tick() { p.classifier.Sample() }

type Runner struct {
	cfg    *config.Config
	logger logr.Logger
}

func NewRunner(cfg *config.Config, logger logr.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// session is one scenario's simulated storage.
type session struct {
	sc      *Scenario
	ctrl    *storage.Controller
	cell    *cell
	bench   *sim.Bench
	elapsed float64
	trace   []dynamo.Sample
}

func (r *Runner) setup(sc *Scenario) (*session, error) {
	preset, err := config.GetPreset("indexer", sc.Preset)
	if err != nil {
		return nil, err
	}
	logger := r.logger.WithValues("scenario", sc.Name)
	clk := testingclock.NewFakeClock(time.Unix(0, 0))

	alg, _, err := preset.Build(control.WithClock(clk), control.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	plant, x0 := preset.BuildPlant()
	indexerRig := sim.NewRig(plant, integrators.NewRK4(), sc.Dt, x0)
	ax := axis.New("indexer", alg, indexerRig, nil, axis.WithClock(clk), axis.WithLogger(logger))

	feederRig := sim.NewRig(&physics.Motor{Gain: feederPlant.Gain, Damping: feederPlant.Damping, Inertia: feederPlant.Inertia},
		integrators.NewRK4(), sc.Dt, dynamo.State{0, 0})
	feeder := storage.NewFeeder(feederRig, r.cfg.Storage.Feeder, logger)

	c := &cell{indexer: indexerRig, feeder: feeder}
	classifier := storage.NewHSVClassifier(c, r.cfg.Storage.Classifier)
	ctrl := storage.NewController(storage.NewIndexer(ax), feeder, classifier, logger)

	var initial [storage.SlotCount]storage.SlotContent
	for i, name := range sc.Initial {
		initial[i], _ = parseSlot(name)
	}
	c.slots = initial
	ctrl.SetSlots(initial)

	b := sim.New(clk, ax)
	b.AddTicker(poller{classifier})
	b.AddTicker(ctrl)
	b.AddPlant(indexerRig)
	b.AddPlant(feederRig)
	b.AddPlant(c)
	return &session{sc: sc, ctrl: ctrl, cell: c, bench: b}, nil
}

// run advances the session until done returns true or max cycles pass and
// returns the number of cycles run.
func (s *session) run(ctx context.Context, max int, done func() bool) (int, error) {
	if max <= 0 {
		return 0, nil
	}
	n := 0
	cfg := sim.Config{Dt: s.sc.Dt, Duration: float64(max) * s.sc.Dt}
	err := s.bench.RunWithCallback(ctx, cfg, func(sample dynamo.Sample) bool {
		sample.Time = s.elapsed + float64(n)*s.sc.Dt
		s.trace = append(s.trace, sample)
		n++
		return done == nil || !done()
	})
	s.elapsed += float64(n) * s.sc.Dt
	return n, err
}

// Run plays sc against a fresh simulated storage. Mismatched expectations
// are reported in the Report; the error is for setup failures and ctx.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	s, err := r.setup(sc)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	report := &Report{Scenario: sc.Name}
	for i, step := range sc.Steps {
		sr, err := s.play(ctx, i+1, step)
		if err != nil {
			return report, err
		}
		if len(sr.Failures) > 0 {
			r.logger.Info("Scenario step failed", "scenario", sc.Name, "step", sr.Step, "failures", sr.Failures)
		}
		report.Steps = append(report.Steps, sr)
	}
	report.Ejected = s.cell.ejections()
	report.Trace = s.trace
	return report, nil
}

func (s *session) play(ctx context.Context, n int, step Step) (StepReport, error) {
	sr := StepReport{Step: n}

	if step.Intake != "" {
		piece, _ := parseSlot(step.Intake)
		if !s.cell.intake(piece) {
			sr.Failures = append(sr.Failures, fmt.Sprintf("intake %s blocked, front slot taken", step.Intake))
		}
	}
	if step.Clear {
		s.ctrl.ClearCommandQueue()
	}

	futures := make([]*async.Future[storage.TaskResult], 0, len(step.Commands))
	for _, cmd := range step.Commands {
		t, _ := storage.ParseTask(cmd)
		futures = append(futures, s.ctrl.Enqueue(t))
	}

	if step.Await {
		allDone := func() bool {
			for _, f := range futures {
				if !f.IsDone() {
					return false
				}
			}
			return true
		}
		if !allDone() {
			ticks, err := s.run(ctx, s.sc.MaxTicks, allDone)
			sr.Ticks += ticks
			if err != nil {
				return sr, err
			}
		}
	}
	ticks, err := s.run(ctx, step.Ticks, nil)
	sr.Ticks += ticks
	if err != nil {
		return sr, err
	}

	for i, f := range futures {
		res := "pending"
		if f.IsDone() {
			v, _ := f.Get(ctx)
			res = v.String()
		}
		sr.Results = append(sr.Results, res)
		if step.Await && res == "pending" {
			sr.Failures = append(sr.Failures, fmt.Sprintf("command %s did not finish within %d ticks", step.Commands[i], s.sc.MaxTicks))
		}
	}
	sr.Slots = s.ctrl.Slots()
	sr.State = s.ctrl.State()
	if step.Expect != nil {
		sr.Failures = append(sr.Failures, s.check(step.Expect, sr)...)
	}
	return sr, nil
}

func (s *session) check(e *Expect, sr StepReport) []string {
	var failures []string
	mismatch := func(what string, want, got any) {
		failures = append(failures, fmt.Sprintf("%s: want %v, got %v", what, want, got))
	}

	for i, want := range e.Results {
		if i < len(sr.Results) && sr.Results[i] != want {
			mismatch("result of "+s.sc.Steps[sr.Step-1].Commands[i], want, sr.Results[i])
		}
	}
	if e.Green != nil && *e.Green != s.ctrl.Count(storage.Green) {
		mismatch("green count", *e.Green, s.ctrl.Count(storage.Green))
	}
	if e.Purple != nil && *e.Purple != s.ctrl.Count(storage.Purple) {
		mismatch("purple count", *e.Purple, s.ctrl.Count(storage.Purple))
	}
	if e.Front != "" && e.Front != s.ctrl.Front().String() {
		mismatch("front", e.Front, s.ctrl.Front())
	}
	if e.State != "" && e.State != sr.State.String() {
		mismatch("state", e.State, sr.State)
	}
	if e.Ejected != nil {
		got := s.cell.ejections()
		names := make([]string, len(got))
		for i, c := range got {
			names[i] = c.String()
		}
		if fmt.Sprint(names) != fmt.Sprint(e.Ejected) {
			mismatch("ejected", e.Ejected, names)
		}
	}
	// The controller's belief must match what is physically there.
	if belief, actual := sr.Slots, s.cell.snapshot(); belief != actual {
		mismatch("slots", actual, belief)
	}
	return failures
}

// RunAll plays scenarios concurrently, at most limit at a time. Reports
// come back in input order.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario, limit int) ([]*Report, error) {
	reports := make([]*Report, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, sc := range scenarios {
		g.Go(func() error {
			rep, err := r.Run(ctx, sc)
			reports[i] = rep
			return err
		})
	}
	return reports, g.Wait()
}
