package metrics

import (
	"math"

	"github.com/san-kum/botcore/internal/dynamo"
)

// SettlingTime is the time of the last sample whose error was outside band.
// A run that never left the band settles at 0.
type SettlingTime struct {
	name    string
	band    float64
	settled float64
}

func NewSettlingTime(band float64) *SettlingTime {
	return &SettlingTime{
		name: "settling_time",
		band: band,
	}
}

func (s *SettlingTime) Name() string {
	return s.name
}

func (s *SettlingTime) Observe(sample dynamo.Sample) {
	if math.Abs(sample.Error()) > s.band {
		s.settled = sample.Time
	}
}

func (s *SettlingTime) Value() float64 {
	return s.settled
}

func (s *SettlingTime) Reset() {
	s.settled = 0
}
