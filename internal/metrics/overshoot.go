package metrics

import (
	"math"

	"github.com/san-kum/botcore/internal/dynamo"
)

// Overshoot is the furthest the position travelled past the target, in the
// direction of the initial error. The direction is taken from the first
// sample with a non-zero error.
type Overshoot struct {
	name string
	sign float64
	max  float64
}

func NewOvershoot() *Overshoot {
	return &Overshoot{
		name: "overshoot",
	}
}

func (o *Overshoot) Name() string {
	return o.name
}

func (o *Overshoot) Observe(s dynamo.Sample) {
	e := s.Error()
	if o.sign == 0 {
		if e == 0 {
			return
		}
		o.sign = math.Copysign(1, e)
		return
	}
	past := -e * o.sign
	if past > o.max {
		o.max = past
	}
}

func (o *Overshoot) Value() float64 {
	return o.max
}

func (o *Overshoot) Reset() {
	o.sign = 0
	o.max = 0
}
