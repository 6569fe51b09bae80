package viz

import (
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/botcore/internal/dynamo"
)

// PlotTrace charts target and position against sample index. Long traces
// are decimated to width points.
func PlotTrace(samples []dynamo.Sample, height, width int, caption string) string {
	if len(samples) < 2 {
		return ""
	}
	stride := 1
	if width > 0 && len(samples) > width {
		stride = (len(samples) + width - 1) / width
	}
	target := make([]float64, 0, len(samples)/stride+1)
	position := make([]float64, 0, len(samples)/stride+1)
	for i := 0; i < len(samples); i += stride {
		target = append(target, samples[i].Target)
		position = append(position, samples[i].Position)
	}
	return asciigraph.PlotMany([][]float64{target, position},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Yellow, asciigraph.Green),
		asciigraph.Caption(caption),
	)
}

// PlotSeries charts a single series such as the control output.
func PlotSeries(values []float64, height, width int, caption string) string {
	if len(values) < 2 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// BandBar shows how much of the tolerance band an error uses; it is
// full at or beyond the band edge.
func BandBar(err, tolerance float64, width int) string {
	ratio := 1.0
	if tolerance > 0 {
		ratio = math.Abs(err) / tolerance
	}
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
