package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/botcore/internal/control"
)

// simTiltG cancels the tilt plant's gravity load: the arm model
// contributes g²·reach·cos(θ) and the motor gain scales it.
var simTiltG = math.Sqrt(200.0 / 3000 / 19)

// simMotor is a stiff, well damped joint used by the "sim" presets.
var simMotor = PlantConfig{Gain: 3000, Damping: 30, Inertia: 1}

// Presets holds named axis tunings. "robot" carries the gains used on the
// hardware, where kF offsets static friction. "sim" is tuned for the
// simulated plants, which have no friction to offset.
var Presets = map[string]map[string]AxisConfig{
	"indexer": {
		"robot": {Kind: KindPID, Forward: control.GainSet{P: 0.01, D: 0.005, F: 0.02}, Tolerance: 1, Plant: simMotor},
		"sim":   {Kind: KindPID, Forward: control.GainSet{P: 0.05}, Tolerance: 1, Plant: simMotor},
	},
	"turret": {
		"robot": {Kind: KindPID, Forward: control.GainSet{P: 0.01, D: 0.005, F: 0.02}, Tolerance: 1, Plant: simMotor},
		"sim":   {Kind: KindPID, Forward: control.GainSet{P: 0.05}, Tolerance: 1, Plant: simMotor},
	},
	"hood": {
		"robot": {Kind: KindPID, Forward: control.GainSet{P: 0.01, D: 0.005, F: 0.02}, Tolerance: 1, Plant: simMotor},
		"sim":   {Kind: KindPID, Forward: control.GainSet{P: 0.05}, Tolerance: 1, Plant: PlantConfig{Gain: 3000, Damping: 30, Inertia: 1, Start: 30}},
	},
	"launcher": {
		"robot": {Kind: KindVelocity, Forward: control.GainSet{P: 0.001, D: 0.005, F: 0.02}, Tolerance: 10,
			Plant: PlantConfig{Gain: 6000, Damping: 2, Inertia: 1}},
		"sim": {Kind: KindVelocity, Forward: control.GainSet{P: 0.001, F: 2.0 / 6000}, Tolerance: 5,
			Plant: PlantConfig{Gain: 6000, Damping: 2, Inertia: 1}},
	},
	"extension": {
		"robot": {Kind: KindDirectional, Forward: control.GainSet{P: 0.35, F: 0.15}, Reverse: control.GainSet{P: 0.4, F: 0.35},
			Tolerance: 0.1, Plant: PlantConfig{Gain: 400, Damping: 20, Inertia: 1}},
		"sim": {Kind: KindDirectional, Forward: control.GainSet{P: 0.2}, Reverse: control.GainSet{P: 0.25},
			Tolerance: 0.1, Plant: PlantConfig{Gain: 400, Damping: 20, Inertia: 1}},
	},
	"tilt": {
		"robot": {Kind: KindGravity, Forward: control.GainSet{P: 0.03, D: 0.1, F: 0.2}, Reverse: control.GainSet{P: 0.01, D: 0.1},
			Tolerance: 0.75, Reach: 19, Plant: PlantConfig{Gain: 3000, Damping: 30, GravityLoad: 200, Inertia: 1}},
		"sim": {Kind: KindGravity, Forward: control.GainSet{P: 0.05}, Reverse: control.GainSet{P: 0.05},
			Tolerance: 0.75, G: simTiltG, Reach: 19, Plant: PlantConfig{Gain: 3000, Damping: 30, GravityLoad: 200, Inertia: 1}},
	},
}

// GetPreset returns a copy of the named tuning for axis.
func GetPreset(axis, name string) (AxisConfig, error) {
	presets, ok := Presets[axis]
	if !ok {
		return AxisConfig{}, fmt.Errorf("no presets for axis: %s", axis)
	}
	preset, ok := presets[name]
	if !ok {
		return AxisConfig{}, fmt.Errorf("preset not found: %s/%s", axis, name)
	}
	return preset, nil
}

func ListPresets(axis string) []string {
	presets, ok := Presets[axis]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListAxes returns every axis that has presets.
func ListAxes() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UsePreset replaces every axis in c with its named preset, leaving axes
// without one untouched.
func (c *Config) UsePreset(name string) {
	if c.Axes == nil {
		c.Axes = make(map[string]AxisConfig)
	}
	for axis, presets := range Presets {
		if p, ok := presets[name]; ok {
			c.Axes[axis] = p
		}
	}
}
