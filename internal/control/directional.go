package control

// DirectionalPID uses the forward gains while the error is non-negative and
// the reverse gains otherwise. The reverse kF is negated so a positive
// coefficient always pushes toward the target.
type DirectionalPID struct {
	loop
	forward *Gains
	reverse *Gains
}

func NewDirectionalPID(forward, reverse *Gains, tolerance float64, opts ...Option) *DirectionalPID {
	return &DirectionalPID{loop: newLoop(tolerance, opts), forward: forward, reverse: reverse}
}

func (p *DirectionalPID) ForwardGains() *Gains { return p.forward }
func (p *DirectionalPID) ReverseGains() *Gains { return p.reverse }

func (p *DirectionalPID) Calc(target, actual float64) float64 {
	e := target - actual
	g := p.gainsFor(e)
	return p.step(e, g, g.F, g.F*p.holdRatio(e))
}

func (p *DirectionalPID) gainsFor(e float64) GainSet {
	if e >= 0 {
		return p.forward.Snapshot()
	}
	g := p.reverse.Snapshot()
	g.F = -g.F
	return g
}

var _ Algorithm = (*DirectionalPID)(nil)
