package physics

import (
	"fmt"

	"github.com/san-kum/botcore/internal/dynamo"
)

// Flywheel has the single state [angular velocity]. Units follow whatever
// the launcher controller measures, usually ticks per second.
type Flywheel struct {
	Gain    float64
	Drag    float64
	Inertia float64
}

func NewFlywheel() *Flywheel {
	return &Flywheel{
		Gain:    6000,
		Drag:    2,
		Inertia: 1,
	}
}

func (f *Flywheel) StateDim() int   { return 1 }
func (f *Flywheel) ControlDim() int { return 1 }

func (f *Flywheel) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	power := 0.0
	if len(u) > 0 {
		power = u[0]
	}
	inertia := f.Inertia
	if inertia <= 0 {
		inertia = 1
	}
	return dynamo.State{(f.Gain*power - f.Drag*x[0]) / inertia}
}

// SteadyState is the speed the wheel settles at under constant power.
func (f *Flywheel) SteadyState(power float64) float64 {
	if f.Drag == 0 {
		return 0
	}
	return f.Gain * power / f.Drag
}

func (f *Flywheel) GetParams() map[string]float64 {
	return map[string]float64{
		"gain":    f.Gain,
		"drag":    f.Drag,
		"inertia": f.Inertia,
	}
}

func (f *Flywheel) SetParam(name string, value float64) error {
	switch name {
	case "gain":
		f.Gain = value
	case "drag":
		f.Drag = value
	case "inertia":
		f.Inertia = value
	default:
		return fmt.Errorf("flywheel %q: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}
