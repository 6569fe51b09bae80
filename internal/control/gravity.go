package control

import "math"

// GravityFunc returns the gravity scaling at the given actual position. The
// controller multiplies its result by g once more.
type GravityFunc func(g, actual float64) float64

// ArmGravity models a pivoting arm whose position is an angle in degrees and
// whose reach may change (a telescoping stage). reach may be nil for a fixed
// unit-length arm.
func ArmGravity(reach func() float64) GravityFunc {
	return func(g, actual float64) float64 {
		r := 1.0
		if reach != nil {
			r = reach()
		}
		return g * math.Cos(actual*math.Pi/180) * r
	}
}

// GravityPID adds gravity compensation on top of a DirectionalPID.
type GravityPID struct {
	DirectionalPID
	gravity GravityFunc
	g       *Param
}

func NewGravityPID(forward, reverse *Gains, gravity GravityFunc, g *Param, tolerance float64, opts ...Option) *GravityPID {
	if gravity == nil {
		gravity = func(float64, float64) float64 { return 0 }
	}
	if g == nil {
		g = NewParam(0)
	}
	return &GravityPID{
		DirectionalPID: *NewDirectionalPID(forward, reverse, tolerance, opts...),
		gravity:        gravity,
		g:              g,
	}
}

// G returns the live gravity constant handle.
func (p *GravityPID) G() *Param { return p.g }

func (p *GravityPID) Calc(target, actual float64) float64 {
	base := p.DirectionalPID.Calc(target, actual)
	g := p.g.Get()
	p.terms.G = p.gravity(g, actual) * g
	p.result = base + p.terms.G
	return p.result
}

var _ Algorithm = (*GravityPID)(nil)
