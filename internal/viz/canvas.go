package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blankCell = 0x2800

// Canvas is a dot grid of Width*2 by Height*4 sub-cell pixels.
type Canvas struct {
	Width, Height int
	cells         [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return
	}
	c.cells[y/4][x/2] |= dotBits[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.cells[y/4][x/2]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for _, row := range c.cells {
		for j := range row {
			row[j] = blankCell
		}
	}
}

// DrawLine is Bresenham's line.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawRay draws from (cx, cy) for length pixels at deg degrees,
// counterclockwise from the +x axis.
func (c *Canvas) DrawRay(cx, cy int, length, deg float64) {
	rad := deg * math.Pi / 180
	x := cx + int(math.Round(length*math.Cos(rad)))
	y := cy - int(math.Round(length*math.Sin(rad)))
	c.DrawLine(cx, cy, x, y)
}

// DrawCircle dots a circle every step degrees.
func (c *Canvas) DrawCircle(cx, cy int, r, step float64) {
	for deg := 0.0; deg < 360; deg += step {
		rad := deg * math.Pi / 180
		c.Set(cx+int(math.Round(r*math.Cos(rad))), cy-int(math.Round(r*math.Sin(rad))))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Dial sketches a rotary mechanism: a rim, a long hand at position and a
// short hand at target, both in degrees.
func Dial(w, h int, position, target float64) string {
	c := NewCanvas(w, h)
	cx, cy := w, h*2
	r := math.Min(float64(w), float64(h*2)) - 1
	c.DrawCircle(cx, cy, r, 6)
	c.DrawRay(cx, cy, r*0.9, position)
	c.DrawRay(cx, cy, r*0.5, target)
	return c.String()
}
