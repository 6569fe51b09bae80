package firecontrol

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var ErrInvalidConfig = errors.New("firecontrol: invalid config")

type Config struct {
	Gravity float64 `yaml:"gravity" json:"gravity"`

	MinSpeed  float64 `yaml:"min_speed" json:"min_speed"`
	MaxSpeed  float64 `yaml:"max_speed" json:"max_speed"`
	SpeedStep float64 `yaml:"speed_step" json:"speed_step"`

	TurretSpan float64 `yaml:"turret_span" json:"turret_span"`
	TurretStep float64 `yaml:"turret_step" json:"turret_step"`

	PreferredMinAngle float64 `yaml:"preferred_min_angle" json:"preferred_min_angle"`
	PreferredMaxAngle float64 `yaml:"preferred_max_angle" json:"preferred_max_angle"`
	LowArcMinAngle    float64 `yaml:"low_arc_min_angle" json:"low_arc_min_angle"`
	LowArcMaxAngle    float64 `yaml:"low_arc_max_angle" json:"low_arc_max_angle"`
	AngleStep         float64 `yaml:"angle_step" json:"angle_step"`

	// Inheritance is the fraction of platform velocity the projectile keeps.
	Inheritance float64 `yaml:"inheritance" json:"inheritance"`

	TurretTolerance   float64 `yaml:"turret_tolerance" json:"turret_tolerance"`
	HoodTolerance     float64 `yaml:"hood_tolerance" json:"hood_tolerance"`
	VelocityTolerance float64 `yaml:"velocity_tolerance" json:"velocity_tolerance"`
	LandingTolerance  float64 `yaml:"landing_tolerance" json:"landing_tolerance"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:           386.4,
		MinSpeed:          30,
		MaxSpeed:          200,
		SpeedStep:         5,
		TurretSpan:        5,
		TurretStep:        1,
		PreferredMinAngle: 35,
		PreferredMaxAngle: 65,
		LowArcMinAngle:    25,
		LowArcMaxAngle:    75,
		AngleStep:         0.5,
		Inheritance:       1,
		TurretTolerance:   2,
		HoodTolerance:     1.5,
		VelocityTolerance: 5,
		LandingTolerance:  6,
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Gravity > 0, "gravity must be positive, got %g", c.Gravity)
	check(c.MinSpeed >= 0, "min speed must not be negative, got %g", c.MinSpeed)
	check(c.MaxSpeed >= c.MinSpeed, "max speed %g below min speed %g", c.MaxSpeed, c.MinSpeed)
	check(c.SpeedStep > 0, "speed step must be positive, got %g", c.SpeedStep)
	check(c.TurretSpan >= 0, "turret span must not be negative, got %g", c.TurretSpan)
	check(c.TurretStep > 0, "turret step must be positive, got %g", c.TurretStep)
	check(c.PreferredMaxAngle >= c.PreferredMinAngle, "preferred band [%g, %g] is empty", c.PreferredMinAngle, c.PreferredMaxAngle)
	check(c.LowArcMaxAngle >= c.LowArcMinAngle, "low arc band [%g, %g] is empty", c.LowArcMinAngle, c.LowArcMaxAngle)
	check(c.AngleStep > 0, "angle step must be positive, got %g", c.AngleStep)
	check(c.Inheritance >= 0, "inheritance must not be negative, got %g", c.Inheritance)
	check(c.LandingTolerance > 0, "landing tolerance must be positive, got %g", c.LandingTolerance)
	check(c.TurretTolerance >= 0 && c.HoodTolerance >= 0 && c.VelocityTolerance >= 0,
		"ready tolerances must not be negative")
	return err
}

// steps is the number of grid points in [lo, hi] at the given spacing.
func steps(lo, hi, step float64) int {
	return int((hi-lo)/step+1e-9) + 1
}
