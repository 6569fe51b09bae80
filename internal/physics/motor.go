package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/botcore/internal/dynamo"
)

// Motor is a joint whose state is [position (deg), velocity (deg/s)].
// The control input is a power command; nothing clamps it.
type Motor struct {
	Gain        float64 // deg/s² per unit power
	Damping     float64 // 1/s
	GravityLoad float64 // deg/s² at horizontal
	Inertia     float64
}

func NewMotor() *Motor {
	return &Motor{
		Gain:    3000,
		Damping: 8,
		Inertia: 1,
	}
}

func (m *Motor) StateDim() int   { return 2 }
func (m *Motor) ControlDim() int { return 1 }

func (m *Motor) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	vel := x[1]

	power := 0.0
	if len(u) > 0 {
		power = u[0]
	}
	inertia := m.Inertia
	if inertia <= 0 {
		inertia = 1
	}

	load := m.GravityLoad * math.Cos(x[0]*math.Pi/180)
	accel := (m.Gain*power - m.Damping*vel - load) / inertia

	return dynamo.State{vel, accel}
}

func (m *Motor) GetParams() map[string]float64 {
	return map[string]float64{
		"gain":         m.Gain,
		"damping":      m.Damping,
		"gravity_load": m.GravityLoad,
		"inertia":      m.Inertia,
	}
}

func (m *Motor) SetParam(name string, value float64) error {
	switch name {
	case "gain":
		m.Gain = value
	case "damping":
		m.Damping = value
	case "gravity_load":
		m.GravityLoad = value
	case "inertia":
		m.Inertia = value
	default:
		return fmt.Errorf("motor %q: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}
