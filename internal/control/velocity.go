package control

import "time"

// VelocitySource selects how Calc interprets its actual argument.
type VelocitySource int

const (
	// FromPosition differentiates successive positions.
	FromPosition VelocitySource = iota
	// Measured treats actual as a velocity reading.
	Measured
)

// VelocityPID is a PID on velocity whose feedforward is kF times the target.
// Inside tolerance it outputs exactly kF·target.
type VelocityPID struct {
	loop
	gains  *Gains
	source VelocitySource

	seeded       bool
	lastPosition float64
	lastSample   time.Time
	velocity     float64
}

func NewVelocityPID(gains *Gains, tolerance float64, source VelocitySource, opts ...Option) *VelocityPID {
	return &VelocityPID{loop: newLoop(tolerance, opts), gains: gains, source: source}
}

func (p *VelocityPID) Gains() *Gains { return p.gains }

// Calc takes a target velocity and, depending on the source mode, either a
// position to differentiate or a measured velocity.
func (p *VelocityPID) Calc(target, actual float64) float64 {
	if p.source == Measured {
		p.velocity = actual
		return p.CalcWithVelocity(target, actual)
	}

	now := p.clock.Now()
	if !p.seeded {
		p.seeded = true
		p.lastPosition = actual
		p.lastSample = now
		p.velocity = 0
	} else if dt := now.Sub(p.lastSample).Seconds(); dt > 0 {
		p.velocity = (actual - p.lastPosition) / dt
		p.lastPosition = actual
		p.lastSample = now
	}
	return p.CalcWithVelocity(target, p.velocity)
}

// CalcWithVelocity runs the loop against an already known velocity.
func (p *VelocityPID) CalcWithVelocity(target, velocity float64) float64 {
	g := p.gains.Snapshot()
	ff := g.F * target
	return p.step(target-velocity, g, ff, ff)
}

// Velocity returns the most recent velocity estimate.
func (p *VelocityPID) Velocity() float64 { return p.velocity }

// ResetVelocity discards the position history so the next Calc reseeds.
func (p *VelocityPID) ResetVelocity() {
	p.seeded = false
	p.velocity = 0
	p.lastPosition = 0
}

var _ Algorithm = (*VelocityPID)(nil)
