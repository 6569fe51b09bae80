package physics

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/botcore/internal/dynamo"
)

// StandardGravity in in/s².
const StandardGravity = 386.4

// Projectile is a point mass with state [x, y, z, vx, vy, vz]. Drag is a
// quadratic coefficient; zero gives the vacuum trajectory the fire-control
// solver assumes.
type Projectile struct {
	Gravity float64
	Drag    float64
}

func NewProjectile() *Projectile {
	return &Projectile{Gravity: StandardGravity}
}

func (p *Projectile) StateDim() int   { return 6 }
func (p *Projectile) ControlDim() int { return 0 }

func (p *Projectile) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	v := r3.Vector{X: x[3], Y: x[4], Z: x[5]}
	a := r3.Vector{Z: -p.Gravity}
	if p.Drag != 0 {
		a = a.Sub(v.Mul(p.Drag * v.Norm()))
	}
	return dynamo.State{v.X, v.Y, v.Z, a.X, a.Y, a.Z}
}

// Launch builds the initial state for a shot from pos with velocity vel.
func Launch(pos, vel r3.Vector) dynamo.State {
	return dynamo.State{pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z}
}

func Position(x dynamo.State) r3.Vector {
	return r3.Vector{X: x[0], Y: x[1], Z: x[2]}
}

func Velocity(x dynamo.State) r3.Vector {
	return r3.Vector{X: x[3], Y: x[4], Z: x[5]}
}
