package viz

import "strings"

// Each terminal cell is a braille glyph holding a 2×4 block of dots. dotBit
// gives the glyph bit for the dot at row y, column x of the block.
var dotBit = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const brailleBase = '⠀'

// Canvas is a character grid addressed in dots: Width×Height cells give a
// 2·Width × 4·Height dot raster.
type Canvas struct {
	Width, Height int
	cells         []uint8
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{Width: w, Height: h, cells: make([]uint8, w*h)}
}

// PixelSize is the canvas size in dots.
func (c *Canvas) PixelSize() (int, int) { return c.Width * 2, c.Height * 4 }

// cell returns the index of the cell holding dot (x, y) and the dot's bit,
// or -1 when the dot is off the canvas.
func (c *Canvas) cell(x, y int) (int, uint8) {
	pw, ph := c.PixelSize()
	if x < 0 || y < 0 || x >= pw || y >= ph {
		return -1, 0
	}
	return (y/4)*c.Width + x/2, dotBit[y%4][x%2]
}

// Set lights dot (x, y). Dots off the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if i, bit := c.cell(x, y); i >= 0 {
		c.cells[i] |= bit
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	i, bit := c.cell(x, y)
	return i >= 0 && c.cells[i]&bit != 0
}

func (c *Canvas) Clear() { clear(c.cells) }

// DrawLine lights every dot on the segment between the two dots
// (Bresenham).
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, sx := x1-x0, 1
	if dx < 0 {
		dx, sx = -dx, -1
	}
	dy, sy := y1-y0, 1
	if dy < 0 {
		dy, sy = -dy, -1
	}

	e := dx - dy
	for x, y := x0, y0; ; {
		c.Set(x, y)
		if x == x1 && y == y1 {
			return
		}
		if 2*e > -dy {
			e -= dy
			x += sx
		}
		if 2*e < dx {
			e += dx
			y += sy
		}
	}
}

// FillRect lights the (2rx+1)×(2ry+1) block of dots centred on (cx, cy).
func (c *Canvas) FillRect(cx, cy, rx, ry int) {
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			c.Set(x, y)
		}
	}
}

// String renders one line of braille glyphs per cell row.
func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(c.Height * (c.Width*3 + 1))
	for row := 0; row < c.Height; row++ {
		for _, m := range c.cells[row*c.Width : (row+1)*c.Width] {
			b.WriteRune(brailleBase + rune(m))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
