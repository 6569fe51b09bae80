package integrators

import "github.com/san-kum/botcore/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta stepper. Stage buffers are
// reused between calls, so an RK4 must not be shared across goroutines.
type RK4 struct {
	k     [4]dynamo.State
	stage dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

var (
	rk4Nodes   = [4]float64{0, 0.5, 0.5, 1}
	rk4Weights = [4]float64{1, 2, 2, 1}
)

func (r *RK4) grow(n int) {
	if len(r.stage) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.stage = make(dynamo.State, n)
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.grow(n)

	for s := range r.k {
		stage := x
		if s > 0 {
			h := dt * rk4Nodes[s]
			prev := r.k[s-1]
			for i := 0; i < n; i++ {
				r.stage[i] = x[i] + h*prev[i]
			}
			stage = r.stage
		}
		copy(r.k[s], dyn.Derive(stage, u, t+dt*rk4Nodes[s]))
	}

	next := make(dynamo.State, n)
	h := dt / 6
	for i := 0; i < n; i++ {
		sum := 0.0
		for s := range r.k {
			sum += rk4Weights[s] * r.k[s][i]
		}
		next[i] = x[i] + h*sum
	}
	return next
}
