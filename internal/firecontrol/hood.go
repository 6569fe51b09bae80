package firecontrol

import (
	"github.com/san-kum/botcore/internal/axis"
)

// HoodCalibration maps the hood's sensor angle to launch angle linearly
// between two measured points.
type HoodCalibration struct {
	SensorLow  float64 `yaml:"sensor_low" json:"sensor_low"`
	SensorHigh float64 `yaml:"sensor_high" json:"sensor_high"`
	LaunchLow  float64 `yaml:"launch_low" json:"launch_low"`
	LaunchHigh float64 `yaml:"launch_high" json:"launch_high"`
}

// IdentityCalibration reads the sensor angle as the launch angle.
var IdentityCalibration = HoodCalibration{SensorLow: 0, SensorHigh: 1, LaunchLow: 0, LaunchHigh: 1}

func (c HoodCalibration) slope() float64 {
	if c.SensorHigh == c.SensorLow {
		return 1
	}
	return (c.LaunchHigh - c.LaunchLow) / (c.SensorHigh - c.SensorLow)
}

func (c HoodCalibration) LaunchAngle(sensor float64) float64 {
	return c.LaunchLow + (sensor-c.SensorLow)*c.slope()
}

func (c HoodCalibration) SensorAngle(launch float64) float64 {
	return c.SensorLow + (launch-c.LaunchLow)/c.slope()
}

// HoodMechanism presents a hood servo and its sensor in launch-angle
// units, so an axis built on it takes launch angles as targets.
type HoodMechanism struct {
	sensor axis.Mechanism
	cal    HoodCalibration
	sign   float64
}

func NewHoodMechanism(sensor axis.Mechanism, cal HoodCalibration) *HoodMechanism {
	sign := 1.0
	if cal.slope() < 0 {
		sign = -1
	}
	return &HoodMechanism{sensor: sensor, cal: cal, sign: sign}
}

func (h *HoodMechanism) Position() float64 {
	return h.cal.LaunchAngle(h.sensor.Position())
}

// Apply flips the command when launch angle falls as the sensor rises.
func (h *HoodMechanism) Apply(output float64) {
	h.sensor.Apply(h.sign * output)
}
