package storage

import (
	"fmt"
	"math"
	"sync"
)

// Color is a classifier reading of whatever sits in front of the sensor.
type Color int

const (
	// None means the reading was inconclusive and should be ignored.
	None Color = iota
	ColorOpen
	ColorGreen
	ColorPurple
)

func (c Color) String() string {
	switch c {
	case ColorOpen:
		return "open"
	case ColorGreen:
		return "green"
	case ColorPurple:
		return "purple"
	default:
		return "none"
	}
}

// ParseColor maps a colour name back to its Color.
func ParseColor(s string) (Color, bool) {
	for _, c := range []Color{None, ColorOpen, ColorGreen, ColorPurple} {
		if c.String() == s {
			return c, true
		}
	}
	return None, false
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, ok := ParseColor(string(b))
	if !ok {
		return fmt.Errorf("unknown color %q", b)
	}
	*c = parsed
	return nil
}

// Classifier reports the contents of the front slot.
type Classifier interface {
	Classify() Color
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func() Color

func (f ClassifierFunc) Classify() Color { return f() }

// HSVSource is a colour sensor reporting hue in degrees and saturation and
// value in [0, 1].
type HSVSource interface {
	HSV() (h, s, v float64)
}

// ColorPreset describes one colour the classifier can match.
type ColorPreset struct {
	Color         Color   `yaml:"color"`
	Hue           float64 `yaml:"hue"`
	MinSaturation float64 `yaml:"min_saturation"`
	MinValue      float64 `yaml:"min_value"`
}

var (
	PurplePreset = ColorPreset{Color: ColorPurple, Hue: 180, MinSaturation: 0.3, MinValue: 0.18}
	GreenPreset  = ColorPreset{Color: ColorGreen, Hue: 155, MinSaturation: 0.5, MinValue: 0.18}
)

// Matches reports whether h, s, v fall inside the preset's floors and
// within hueTolerance degrees of its hue.
func (p ColorPreset) Matches(h, s, v, hueTolerance float64) bool {
	if s < p.MinSaturation || v < p.MinValue {
		return false
	}
	return math.Abs(hueDifference(h, p.Hue)) <= hueTolerance
}

// Confidence scores a match in [0, 1], weighting hue most heavily. It is
// zero when the reading does not match.
func (p ColorPreset) Confidence(h, s, v, hueTolerance float64) float64 {
	if !p.Matches(h, s, v, hueTolerance) {
		return 0
	}
	hueScore := 1 - math.Abs(hueDifference(h, p.Hue))/hueTolerance
	satScore := math.Min(s/p.MinSaturation, 1)
	valScore := math.Min(v/p.MinValue, 1)
	return hueScore*0.7 + satScore*0.15 + valScore*0.15
}

// hueDifference is a-b wrapped into [-180, 180].
func hueDifference(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	switch {
	case d > 180:
		d -= 360
	case d < -180:
		d += 360
	}
	return d
}

type HSVConfig struct {
	HueTolerance  float64 `yaml:"hue_tolerance"`
	MinSaturation float64 `yaml:"min_saturation"`
	MinValue      float64 `yaml:"min_value"`
	// OpenBelowValue reports an empty slot when brightness drops below it.
	// Zero disables open detection.
	OpenBelowValue float64       `yaml:"open_below_value"`
	Window         int           `yaml:"window"`
	Presets        []ColorPreset `yaml:"presets"`
}

func DefaultHSVConfig() HSVConfig {
	return HSVConfig{
		HueTolerance:  20,
		MinSaturation: 0.2,
		MinValue:      0.15,
		Window:        5,
		Presets:       []ColorPreset{PurplePreset, GreenPreset},
	}
}

// HSVClassifier matches smoothed sensor readings against colour presets.
// Hue is averaged on the unit circle so readings either side of 0° do not
// average to 180°.
type HSVClassifier struct {
	src HSVSource
	cfg HSVConfig

	mu       sync.Mutex
	hueSin   *RollingAverage
	hueCos   *RollingAverage
	sat, val *RollingAverage
}

func NewHSVClassifier(src HSVSource, cfg HSVConfig) *HSVClassifier {
	if cfg.Window < 1 {
		cfg.Window = 1
	}
	return &HSVClassifier{
		src:    src,
		cfg:    cfg,
		hueSin: NewRollingAverage(cfg.Window),
		hueCos: NewRollingAverage(cfg.Window),
		sat:    NewRollingAverage(cfg.Window),
		val:    NewRollingAverage(cfg.Window),
	}
}

// Sample reads the sensor once and returns the smoothed hue, saturation and
// value.
func (c *HSVClassifier) Sample() (h, s, v float64) {
	rh, rs, rv := c.src.HSV()
	rad := rh * math.Pi / 180

	c.mu.Lock()
	defer c.mu.Unlock()
	sin := c.hueSin.Compute(math.Sin(rad))
	cos := c.hueCos.Compute(math.Cos(rad))
	h = math.Atan2(sin, cos) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h, c.sat.Compute(rs), c.val.Compute(rv)
}

func (c *HSVClassifier) Classify() Color {
	h, s, v := c.Sample()
	if c.cfg.OpenBelowValue > 0 && v < c.cfg.OpenBelowValue {
		return ColorOpen
	}
	if s < c.cfg.MinSaturation || v < c.cfg.MinValue {
		return None
	}

	best, bestScore := None, 0.0
	for _, p := range c.cfg.Presets {
		if score := p.Confidence(h, s, v, c.cfg.HueTolerance); score > bestScore {
			best, bestScore = p.Color, score
		}
	}
	return best
}

// Reset discards the smoothing history.
func (c *HSVClassifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hueSin.Reset()
	c.hueCos.Reset()
	c.sat.Reset()
	c.val.Reset()
}
