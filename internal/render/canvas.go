package render

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint8{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

type cell struct {
	pattern uint8
	color   colorful.Color
	weight  float64
	text    rune
	// wide marks the right half of a double-width rune in the cell before.
	wide bool
}

// Canvas is a grid of braille cells, each holding a 2x4 block of dots and
// one colour. A braille dot is roughly square on a typical terminal font.
type Canvas struct {
	cols, rows int
	cells      []cell
	profile    Profile
}

// NewCanvas creates a canvas of cols x rows terminal cells.
func NewCanvas(cols, rows int, p Profile) *Canvas {
	cols = max(cols, 1)
	rows = max(rows, 1)
	return &Canvas{
		cols:    cols,
		rows:    rows,
		cells:   make([]cell, cols*rows),
		profile: p,
	}
}

// DotWidth returns the horizontal dot resolution.
func (c *Canvas) DotWidth() int { return c.cols * 2 }

// DotHeight returns the vertical dot resolution.
func (c *Canvas) DotHeight() int { return c.rows * 4 }

// Plot lights the dot at (x, y). When dots of different colours share a cell
// the heavier one wins. Out-of-range dots are dropped.
func (c *Canvas) Plot(x, y int, col colorful.Color, weight float64) {
	if x < 0 || y < 0 || x >= c.DotWidth() || y >= c.DotHeight() {
		return
	}
	ce := &c.cells[(y/4)*c.cols+x/2]
	ce.pattern |= 1 << brailleBits[x%2][y%4]
	if ce.pattern == 1<<brailleBits[x%2][y%4] || weight >= ce.weight {
		ce.color = col
		ce.weight = weight
	}
}

// Text writes s into row starting at col, replacing whatever dots are there.
// col counts terminal columns; double-width runes take two cells.
func (c *Canvas) Text(row, col int, s string, fg colorful.Color) {
	if row < 0 || row >= c.rows {
		return
	}
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > c.cols {
			return
		}
		if col >= 0 {
			i := row*c.cols + col
			c.cells[i] = cell{text: r, color: fg}
			if w == 2 {
				c.cells[i+1] = cell{wide: true}
			}
		}
		col += w
	}
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{}
	}
}

// String renders the canvas with ANSI colours for the canvas profile.
func (c *Canvas) String() string {
	var sb strings.Builder
	sb.Grow(c.cols * c.rows * 4)
	color := ansiState{profile: c.profile}
	for r := 0; r < c.rows; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < c.cols; col++ {
			ce := c.cells[r*c.cols+col]
			switch {
			case ce.wide:
			case ce.text != 0:
				color.apply(&sb, ce.color)
				sb.WriteRune(ce.text)
			case ce.pattern != 0:
				color.apply(&sb, ce.color)
				sb.WriteRune(rune(0x2800 + int(ce.pattern)))
			default:
				sb.WriteByte(' ')
			}
		}
		color.reset(&sb)
	}
	return sb.String()
}
