package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/botcore/internal/firecontrol"
	"github.com/san-kum/botcore/internal/sim"
	"github.com/san-kum/botcore/internal/storage"
)

var ErrInvalid = errors.New("config: invalid")

const (
	DefaultWorkers    = 4
	DefaultIntegrator = "rk4"
	DefaultTickPeriod = 20 * time.Millisecond
)

type Config struct {
	LogLevel    int                         `yaml:"log_level"`
	Workers     int64                       `yaml:"workers"`
	TickPeriod  time.Duration               `yaml:"tick_period"`
	Integrator  string                      `yaml:"integrator"`
	Sim         sim.Config                  `yaml:"sim"`
	Axes        map[string]AxisConfig       `yaml:"axes"`
	Storage     StorageConfig               `yaml:"storage"`
	FireControl firecontrol.Config          `yaml:"fire_control"`
	Hood        firecontrol.HoodCalibration `yaml:"hood_calibration"`
}

type StorageConfig struct {
	Feeder     storage.FeederConfig `yaml:"feeder"`
	Classifier storage.HSVConfig    `yaml:"classifier"`
}

func DefaultConfig() *Config {
	axes := make(map[string]AxisConfig, len(Presets))
	for name, presets := range Presets {
		axes[name] = presets["robot"]
	}
	return &Config{
		Workers:    DefaultWorkers,
		TickPeriod: DefaultTickPeriod,
		Integrator: DefaultIntegrator,
		Sim:        sim.DefaultConfig(),
		Axes:       axes,
		Storage: StorageConfig{
			Feeder:     storage.DefaultFeederConfig(),
			Classifier: storage.DefaultHSVConfig(),
		},
		FireControl: firecontrol.DefaultConfig(),
		Hood:        firecontrol.IdentityCalibration,
	}
}

// Load reads path over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Axis returns the named axis settings.
func (c *Config) Axis(name string) (AxisConfig, error) {
	a, ok := c.Axes[name]
	if !ok {
		return AxisConfig{}, fmt.Errorf("%w: no axis %q", ErrInvalid, name)
	}
	return a, nil
}

func (c *Config) Validate() error {
	var err error
	fail := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Workers < 1 {
		fail("workers must be at least 1, got %d", c.Workers)
	}
	if c.TickPeriod <= 0 {
		fail("tick period must be positive, got %s", c.TickPeriod)
	}
	if c.LogLevel < 0 {
		fail("log level must not be negative, got %d", c.LogLevel)
	}
	if c.Integrator != "euler" && c.Integrator != "rk4" {
		fail("unknown integrator %q", c.Integrator)
	}
	if c.Sim.Dt <= 0 || c.Sim.Duration <= 0 {
		fail("sim dt and duration must be positive")
	}
	for name, a := range c.Axes {
		err = multierr.Append(err, a.validate(name))
	}
	if c.Storage.Feeder.Tolerance <= 0 {
		fail("feeder tolerance must be positive, got %g", c.Storage.Feeder.Tolerance)
	}
	if c.Storage.Classifier.Window < 1 {
		fail("classifier window must be at least 1, got %d", c.Storage.Classifier.Window)
	}
	if c.Storage.Classifier.HueTolerance <= 0 {
		fail("classifier hue tolerance must be positive")
	}
	if c.Hood.SensorHigh == c.Hood.SensorLow {
		fail("hood calibration needs two distinct sensor points")
	}
	return multierr.Append(err, c.FireControl.Validate())
}
