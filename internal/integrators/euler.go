package integrators

import "github.com/san-kum/botcore/internal/dynamo"

// Euler is the explicit first-order stepper. It matches what a robot loop
// does implicitly when it applies one command per cycle.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	dx := dyn.Derive(x, u, t)
	next := make(dynamo.State, len(x))
	for i := range x {
		next[i] = x[i] + dt*dx[i]
	}
	return next
}

// ByName returns the stepper for a config or flag value.
func ByName(name string) (dynamo.Integrator, bool) {
	switch name {
	case "euler":
		return NewEuler(), true
	case "rk4", "":
		return NewRK4(), true
	}
	return nil, false
}
