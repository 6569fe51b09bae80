package control

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDirectionalPID_SelectsGainsBySign(t *testing.T) {
	fwd := NewGains(2, 0, 0, 0.5)
	rev := NewGains(1, 0, 0, 0.5)

	tests := []struct {
		name           string
		target, actual float64
		want           float64
	}{
		{"forward", 5, 0, 2*5 + 0.5},
		{"zero error uses forward hold", 3, 3, 0},
		{"reverse negates kF", 0, 5, -5 - 0.5},
		{"reverse hold", 0, 0.5, -0.5 * 0.5},
		{"forward hold", 0.5, 0, 0.5 * 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pid := NewDirectionalPID(fwd, rev, 1, WithClock(newFakeClock()))
			assert.InDelta(t, tt.want, pid.Calc(tt.target, tt.actual), eps)
		})
	}
}

func TestGravityPID_AddsCompensation(t *testing.T) {
	fwd := NewGains(0.01, 0, 0, 0)
	rev := NewGains(0.01, 0, 0, 0)
	g := NewParam(0.1)
	pid := NewGravityPID(fwd, rev, ArmGravity(nil), g, 1, WithClock(newFakeClock()))

	// out of tolerance at 0 degrees: full cosine
	out := pid.Calc(90, 0)
	assert.InDelta(t, 0.9+0.1*0.1, out, eps)
	assert.InDelta(t, out, pid.Result(), eps)

	// holding at 60 degrees
	out = pid.Calc(60, 60)
	assert.InDelta(t, 0.1*math.Cos(math.Pi/3)*0.1, out, eps)

	g.Set(0)
	assert.InDelta(t, 0, pid.Calc(60, 60), eps)
}

func TestGravityPID_TermsSumToResult(t *testing.T) {
	pid := NewGravityPID(NewGains(0.01, 0, 0, 0.2), NewGains(0.01, 0, 0, 0.2),
		ArmGravity(nil), NewParam(0.1), 1, WithClock(newFakeClock()))

	sum := func(tm Terms) float64 { return tm.P + tm.I + tm.D + tm.F + tm.G }

	out := pid.Calc(90, 0)
	terms := pid.Terms()
	assert.InDelta(t, 0.1*0.1, terms.G, eps)
	assert.InDelta(t, out, sum(terms), eps)

	out = pid.Calc(60, 59.5)
	terms = pid.Terms()
	assert.InDelta(t, 0.1*math.Cos(59.5*math.Pi/180)*0.1, terms.G, eps)
	assert.InDelta(t, out, sum(terms), eps)
	assert.False(t, pid.Busy())
}

func TestGravityPID_Reach(t *testing.T) {
	reach := 2.0
	pid := NewGravityPID(NewGains(0, 0, 0, 0), NewGains(0, 0, 0, 0),
		ArmGravity(func() float64 { return reach }), NewParam(1), 1, WithClock(newFakeClock()))

	assert.InDelta(t, 2, pid.Calc(0, 0), eps)
	reach = 3
	assert.InDelta(t, 3, pid.Calc(0, 0), eps)
}

func TestGravityPID_NilDefaults(t *testing.T) {
	pid := NewGravityPID(NewGains(1, 0, 0, 0), NewGains(1, 0, 0, 0), nil, nil, 0.5, WithClock(newFakeClock()))
	assert.InDelta(t, 4, pid.Calc(4, 0), eps)
	assert.Zero(t, pid.G().Get())
}

func TestVelocityPID_HoldIsFeedforwardOnly(t *testing.T) {
	pid := NewVelocityPID(NewGains(5, 1, 1, 0.002), 10, Measured, WithClock(newFakeClock()))

	out := pid.Calc(1500, 1495)
	assert.InDelta(t, 0.002*1500, out, eps)
	terms := pid.Terms()
	assert.Zero(t, terms.P)
	assert.Zero(t, terms.I)
	assert.Zero(t, terms.D)
	assert.InDelta(t, 0.002*1500, terms.F, eps)
	assert.False(t, pid.Busy())
	assert.Equal(t, 1495.0, pid.Velocity())
}

func TestVelocityPID_FeedforwardScalesWithTarget(t *testing.T) {
	pid := NewVelocityPID(NewGains(0.001, 0, 0, 0.002), 10, Measured, WithClock(newFakeClock()))

	out := pid.CalcWithVelocity(1000, 0)
	assert.InDelta(t, 0.001*1000+0.002*1000, out, eps)
	assert.True(t, pid.Busy())
}

func TestVelocityPID_FromPosition(t *testing.T) {
	clk := newFakeClock()
	pid := NewVelocityPID(NewGains(0, 0, 0, 1), 0.5, FromPosition, WithClock(clk))

	pid.Calc(20, 100)
	assert.Zero(t, pid.Velocity(), "first call only seeds")

	clk.Step(500 * time.Millisecond)
	out := pid.Calc(20, 110)
	assert.InDelta(t, 20, pid.Velocity(), eps)
	assert.InDelta(t, 20, out, eps)
	assert.False(t, pid.Busy())

	// no elapsed time keeps the previous estimate
	pid.Calc(20, 500)
	assert.InDelta(t, 20, pid.Velocity(), eps)

	pid.ResetVelocity()
	assert.Zero(t, pid.Velocity())
	pid.Calc(20, 0)
	assert.Zero(t, pid.Velocity())
}
