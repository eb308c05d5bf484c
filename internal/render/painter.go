// Package render paints ring points onto a terminal braille canvas.
package render

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/mattn/go-runewidth"
	"github.com/olivier-w/halo/internal/ring"
)

const (
	// fitMargin leaves a little air between the ring and the canvas edge.
	fitMargin = 0.95
	// glowFade dims the outward glow dot relative to the segment colour.
	glowFade = 0.55
)

// Painter turns ring points into a frame. It eases its scale with a spring
// so a terminal resize zooms the ring rather than snapping it.
type Painter struct {
	spring        harmonica.Spring
	scale         float64
	velocity      float64
	glowThreshold float64
	profile       Profile
	canvas        *Canvas
}

// NewPainter creates a painter stepping its scale spring at fps.
func NewPainter(fps int, glowThreshold float64, p Profile) *Painter {
	return &Painter{
		spring:        harmonica.NewSpring(harmonica.FPS(max(fps, 1)), 6.0, 0.9),
		glowThreshold: glowThreshold,
		profile:       p,
	}
}

// FitScale is the scale that makes a ring of radius extent fill a canvas of
// cols x rows cells.
func FitScale(cols, rows int, extent float64) float64 {
	if extent <= 0 {
		return 1
	}
	half := float64(min(cols*2, rows*4)) / 2
	return half * fitMargin / extent
}

// Scale returns the current eased scale.
func (p *Painter) Scale() float64 { return p.scale }

// Paint draws points centred on a cols x rows canvas with label in the
// middle. extent is the largest radius the ring can reach.
func (p *Painter) Paint(points []ring.Point, cols, rows int, extent float64, label string) string {
	if cols < 1 || rows < 1 {
		return ""
	}
	if p.canvas == nil || p.canvas.cols != cols || p.canvas.rows != rows {
		p.canvas = NewCanvas(cols, rows, p.profile)
	} else {
		p.canvas.Clear()
	}

	target := FitScale(cols, rows, extent)
	if p.scale == 0 {
		p.scale = target
	} else {
		p.scale, p.velocity = p.spring.Update(p.scale, p.velocity, target)
	}

	cx := float64(p.canvas.DotWidth()) / 2
	cy := float64(p.canvas.DotHeight()) / 2
	for _, pt := range points {
		col := HSL(pt.Hue, pt.Saturation, pt.Lightness)
		weight := pt.Lightness + pt.Intensity*100

		if pt.Intensity >= p.glowThreshold && pt.Radius > 0 && p.glowThreshold > 0 {
			reach := (pt.Radius + pt.GlowInner/2) / pt.Radius
			glow := HSL(pt.Hue, pt.Saturation, pt.Lightness*glowFade)
			p.canvas.Plot(dot(cx+pt.X*reach*p.scale), dot(cy+pt.Y*reach*p.scale), glow, weight/2)
		}
		p.canvas.Plot(dot(cx+pt.X*p.scale), dot(cy+pt.Y*p.scale), col, weight)
	}

	if label != "" {
		if runewidth.StringWidth(label) > cols {
			label = runewidth.Truncate(label, cols, "")
		}
		p.canvas.Text(rows/2, (cols-runewidth.StringWidth(label))/2, label, HSL(0, 0, 85))
	}

	return p.canvas.String()
}

func dot(v float64) int {
	return int(math.Floor(v))
}
