package control

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/san-kum/botcore/internal/dynamo"
)

// GainSet is a point-in-time copy of a Gains handle.
type GainSet struct {
	P float64 `yaml:"kP" json:"kP"`
	I float64 `yaml:"kI" json:"kI"`
	D float64 `yaml:"kD" json:"kD"`
	F float64 `yaml:"kF" json:"kF"`
}

// Gains is a shared, live-tunable set of PIDF coefficients.
type Gains struct {
	mu  sync.RWMutex
	set GainSet
}

func NewGains(kp, ki, kd, kf float64) *Gains {
	return &Gains{set: GainSet{P: kp, I: ki, D: kd, F: kf}}
}

func (g *Gains) Snapshot() GainSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.set
}

func (g *Gains) Set(set GainSet) {
	g.mu.Lock()
	g.set = set
	g.mu.Unlock()
}

// GetParams returns tunable parameters for live adjustment
func (g *Gains) GetParams() map[string]float64 {
	s := g.Snapshot()
	return map[string]float64{
		"kP": s.P,
		"kI": s.I,
		"kD": s.D,
		"kF": s.F,
	}
}

// SetParam adjusts a single coefficient by name.
func (g *Gains) SetParam(name string, value float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch name {
	case "kP":
		g.set.P = value
	case "kI":
		g.set.I = value
	case "kD":
		g.set.D = value
	case "kF":
		g.set.F = value
	default:
		return fmt.Errorf("gains %q: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}

var _ dynamo.Configurable = (*Gains)(nil)

// Param is a single live-tunable value, such as a gravity constant.
type Param struct {
	bits atomic.Uint64
}

func NewParam(v float64) *Param {
	p := &Param{}
	p.Set(v)
	return p
}

func (p *Param) Get() float64 {
	return math.Float64frombits(p.bits.Load())
}

func (p *Param) Set(v float64) {
	p.bits.Store(math.Float64bits(v))
}
