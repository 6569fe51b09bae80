package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/botcore/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait plots tracking error against its rate of change. A loop
// that settles spirals into the origin; one that hunts traces a closed
// curve around it.
type PhasePortrait struct {
	Points []Point
}

func NewPhasePortrait(samples []dynamo.Sample) *PhasePortrait {
	p := &PhasePortrait{Points: make([]Point, 0, len(samples))}
	for i := 1; i < len(samples); i++ {
		dt := samples[i].Time - samples[i-1].Time
		if dt <= 0 {
			continue
		}
		e := samples[i].Error()
		p.Points = append(p.Points, Point{X: e, Y: (e - samples[i-1].Error()) / dt})
	}
	return p
}

// ASCII renders the portrait on a width×height character grid.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// BandExits counts how many times the error leaves the tolerance band
// after having first entered it.
func BandExits(samples []dynamo.Sample, tolerance float64) int {
	exits := 0
	entered := false
	inside := false
	for _, s := range samples {
		now := math.Abs(s.Error()) < tolerance
		if now && !entered {
			entered = true
		}
		if entered && inside && !now {
			exits++
		}
		inside = now
	}
	return exits
}
