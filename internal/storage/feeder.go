package storage

import (
	"github.com/go-logr/logr"

	"github.com/san-kum/botcore/internal/async"
	"github.com/san-kum/botcore/internal/axis"
)

type FeederState int

const (
	FeederResting FeederState = iota
	FeederTriggered
	FeederReturning
)

func (s FeederState) String() string {
	switch s {
	case FeederResting:
		return "resting"
	case FeederTriggered:
		return "triggered"
	case FeederReturning:
		return "returning"
	default:
		return "unknown"
	}
}

type FeederConfig struct {
	RestAngle    float64 `yaml:"rest_angle"`
	TriggerAngle float64 `yaml:"trigger_angle"`
	Tolerance    float64 `yaml:"tolerance"`
	Power        float64 `yaml:"power"`
	Reverse      bool    `yaml:"reverse"`
}

func DefaultFeederConfig() FeederConfig {
	return FeederConfig{
		RestAngle:    0,
		TriggerAngle: 90,
		Tolerance:    1,
		Power:        0.5,
	}
}

// Feeder is a continuous-rotation servo with an angle sensor that kicks a
// piece out of the left slot and then returns to rest. It is driven
// bang-bang at a fixed power.
type Feeder struct {
	mech   axis.Mechanism
	cfg    FeederConfig
	state  FeederState
	target float64
	future *async.Future[struct{}]
	logger logr.Logger
}

func NewFeeder(mech axis.Mechanism, cfg FeederConfig, logger logr.Logger) *Feeder {
	return &Feeder{
		mech:   mech,
		cfg:    cfg,
		state:  FeederResting,
		target: cfg.RestAngle,
		logger: logger.WithName("feeder"),
	}
}

func (f *Feeder) State() FeederState { return f.state }
func (f *Feeder) Position() float64  { return f.mech.Position() }
func (f *Feeder) Target() float64    { return f.target }

// Trigger starts a feed cycle. The future completes when the feeder is back
// at rest. Triggering during a cycle restarts the swing and keeps the same
// future.
func (f *Feeder) Trigger() *async.Future[struct{}] {
	f.state = FeederTriggered
	f.target = f.cfg.TriggerAngle
	if f.future == nil || f.future.IsDone() {
		f.future = async.NewFuture[struct{}]()
	}
	f.logger.V(1).Info("Feeder triggered")
	return f.future
}

func (f *Feeder) Tick() {
	pos := f.mech.Position()

	switch f.state {
	case FeederResting:
		f.target = f.cfg.RestAngle
	case FeederTriggered:
		if pos >= f.cfg.TriggerAngle-f.cfg.Tolerance {
			f.target = f.cfg.RestAngle
			f.state = FeederReturning
		} else {
			f.target = f.cfg.TriggerAngle
		}
	case FeederReturning:
		if pos <= f.cfg.RestAngle+f.cfg.Tolerance {
			f.state = FeederResting
			f.logger.V(1).Info("Feeder back at rest")
			if f.future != nil {
				f.future.Complete(struct{}{})
			}
		}
	}

	power := 0.0
	if f.state != FeederResting {
		switch {
		case pos > f.target:
			power = -f.cfg.Power
		case pos < f.target:
			power = f.cfg.Power
		}
	}
	if f.cfg.Reverse {
		power = -power
	}
	f.mech.Apply(power)
}
