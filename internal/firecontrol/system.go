package firecontrol

import (
	"math"
	"sync"

	"github.com/go-logr/logr"
	"github.com/golang/geo/r3"
	"k8s.io/utils/clock"

	"github.com/san-kum/botcore/internal/metrics"
)

// Positioner is one aimed degree of freedom. *axis.Axis satisfies it; for
// the launcher Position is the measured wheel speed.
type Positioner interface {
	SetTarget(float64)
	Target() float64
	Position() float64
	Tick()
}

type System struct {
	turret   Positioner
	hood     Positioner
	launcher Positioner
	solver   *Solver

	mu   sync.Mutex
	last Solution

	clock  clock.PassiveClock
	logger logr.Logger
}

type Option func(*System)

func WithLogger(l logr.Logger) Option {
	return func(s *System) { s.logger = l }
}

func WithClock(c clock.PassiveClock) Option {
	return func(s *System) { s.clock = c }
}

func NewSystem(turret, hood, launcher Positioner, cfg Config, opts ...Option) *System {
	s := &System{
		turret:   turret,
		hood:     hood,
		launcher: launcher,
		solver:   NewSolver(cfg),
		clock:    clock.RealClock{},
		logger:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithName("firecontrol")
	return s
}

func (s *System) Solver() *Solver { return s.solver }

// LastSolution is the result of the most recent UpdateTargetPositions.
func (s *System) LastSolution() Solution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Tick runs one control cycle on all three axes.
func (s *System) Tick() {
	s.turret.Tick()
	s.launcher.Tick()
	s.hood.Tick()
}

// UpdateTargetPositions solves for goal from platform and commands the
// axes. When the goal is out of reach the turret still tracks it but the
// launcher is stopped.
func (s *System) UpdateTargetPositions(goal, platform, velocity r3.Vector) Solution {
	start := s.clock.Now()
	sol := s.solver.Solve(goal.Sub(platform), s.solver.Inherited(velocity))
	metrics.RecordSolve(s.clock.Since(start), sol.Valid)

	if sol.Valid {
		s.turret.SetTarget(sol.TurretAngle)
		s.hood.SetTarget(sol.LaunchAngle)
		s.launcher.SetTarget(sol.LaunchSpeed)
		s.logger.V(2).Info("Solved shot", "turret", sol.TurretAngle, "hood", sol.LaunchAngle, "speed", sol.LaunchSpeed)
	} else {
		s.turret.SetTarget(sol.TurretAngle)
		s.launcher.SetTarget(0)
		s.logger.V(1).Info("Goal out of reach", "goal", goal, "platform", platform)
	}

	s.mu.Lock()
	s.last = sol
	s.mu.Unlock()
	return sol
}

// IsReadyToFire checks the measured turret, hood and launcher settings:
// each must be within its arrival tolerance, the wheel must be at least at
// the minimum speed, and a shot fired with exactly those settings must land
// within the landing tolerance.
func (s *System) IsReadyToFire(goal, platform, velocity r3.Vector) bool {
	cfg := s.solver.Config()

	turret := s.turret.Position()
	hood := s.hood.Position()
	speed := s.launcher.Position()

	if math.Abs(s.turret.Target()-turret) > cfg.TurretTolerance ||
		math.Abs(s.hood.Target()-hood) > cfg.HoodTolerance ||
		math.Abs(s.launcher.Target()-speed) > cfg.VelocityTolerance {
		return false
	}
	if speed < cfg.MinSpeed {
		return false
	}

	v := s.solver.Inherited(velocity).Add(LaunchVector(turret, hood, speed))
	miss, ok := s.solver.Miss(goal.Sub(platform), v)
	return ok && miss <= cfg.LandingTolerance
}
