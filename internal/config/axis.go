package config

import (
	"fmt"

	"github.com/san-kum/botcore/internal/control"
	"github.com/san-kum/botcore/internal/dynamo"
	"github.com/san-kum/botcore/internal/physics"
)

// Controller kinds.
const (
	KindPID         = "pid"
	KindDirectional = "directional"
	KindGravity     = "gravity"
	KindVelocity    = "velocity"
)

type AxisConfig struct {
	Kind      string          `yaml:"kind"`
	Forward   control.GainSet `yaml:"forward"`
	Reverse   control.GainSet `yaml:"reverse,omitempty"`
	Tolerance float64         `yaml:"tolerance"`
	Reversed  bool            `yaml:"reversed,omitempty"`

	// G and Reach feed the arm gravity model of gravity axes.
	G     float64 `yaml:"g,omitempty"`
	Reach float64 `yaml:"reach,omitempty"`

	Plant PlantConfig `yaml:"plant"`
}

// PlantConfig describes the simulated mechanism used on the bench.
type PlantConfig struct {
	Gain        float64 `yaml:"gain"`
	Damping     float64 `yaml:"damping"`
	GravityLoad float64 `yaml:"gravity_load,omitempty"`
	Inertia     float64 `yaml:"inertia"`
	Start       float64 `yaml:"start,omitempty"`
}

func (a AxisConfig) validate(name string) error {
	switch a.Kind {
	case KindPID, KindDirectional, KindGravity, KindVelocity:
	default:
		return fmt.Errorf("%w: axis %q has unknown kind %q", ErrInvalid, name, a.Kind)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("%w: axis %q tolerance must not be negative", ErrInvalid, name)
	}
	return nil
}

// Handle holds the live-tunable parts of a built controller. Fields the
// controller kind does not use are nil.
type Handle struct {
	Forward *control.Gains
	Reverse *control.Gains
	G       *control.Param
}

func gains(g control.GainSet) *control.Gains {
	return control.NewGains(g.P, g.I, g.D, g.F)
}

// Build constructs the controller described by a. The returned handle
// shares state with it, so setting gains through the handle retunes the
// running controller.
func (a AxisConfig) Build(opts ...control.Option) (control.Algorithm, Handle, error) {
	if a.Reversed {
		opts = append(opts, control.WithDirection(control.Reverse))
	}

	h := Handle{Forward: gains(a.Forward)}
	switch a.Kind {
	case KindPID, "":
		return control.NewPID(h.Forward, a.Tolerance, opts...), h, nil
	case KindDirectional:
		h.Reverse = gains(a.Reverse)
		return control.NewDirectionalPID(h.Forward, h.Reverse, a.Tolerance, opts...), h, nil
	case KindGravity:
		h.Reverse = gains(a.Reverse)
		h.G = control.NewParam(a.G)
		reach := a.Reach
		g := control.ArmGravity(func() float64 { return reach })
		return control.NewGravityPID(h.Forward, h.Reverse, g, h.G, a.Tolerance, opts...), h, nil
	case KindVelocity:
		return control.NewVelocityPID(h.Forward, a.Tolerance, control.Measured, opts...), h, nil
	}
	return nil, Handle{}, fmt.Errorf("%w: unknown controller kind %q", ErrInvalid, a.Kind)
}

// BuildPlant returns the simulated mechanism and its initial state. Velocity
// axes drive a flywheel, everything else a motor joint.
func (a AxisConfig) BuildPlant() (dynamo.System, dynamo.State) {
	p := a.Plant
	if a.Kind == KindVelocity {
		return &physics.Flywheel{Gain: p.Gain, Drag: p.Damping, Inertia: p.Inertia}, dynamo.State{p.Start}
	}
	return &physics.Motor{Gain: p.Gain, Damping: p.Damping, GravityLoad: p.GravityLoad, Inertia: p.Inertia}, dynamo.State{p.Start, 0}
}
