package render

import (
	"math"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/olivier-w/halo/internal/ring"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestProfileFromEnv(t *testing.T) {
	cases := []struct {
		vars map[string]string
		want Profile
	}{
		{map[string]string{"NO_COLOR": "", "COLORTERM": "truecolor"}, ProfileNone},
		{map[string]string{"COLORTERM": "24bit", "TERM": "xterm"}, ProfileTrueColor},
		{map[string]string{"TERM": "xterm-256color"}, ProfileANSI256},
		{map[string]string{"TERM": "dumb"}, ProfileNone},
		{map[string]string{"TERM": "vt100"}, ProfileANSI16},
	}
	for _, c := range cases {
		if got := profileFromEnv(env(c.vars)); got != c.want {
			t.Fatalf("%v: expected %v, got %v", c.vars, c.want, got)
		}
	}
}

func TestHSLMatchesCSS(t *testing.T) {
	r, g, b := HSL(0, 100, 50).RGB255()
	if r != 255 || g != 0 || b != 0 {
		t.Fatalf("expected pure red, got %d,%d,%d", r, g, b)
	}
	r, g, b = HSL(240, 100, 100).RGB255()
	if r != 255 || g != 255 || b != 255 {
		t.Fatalf("expected white at full lightness, got %d,%d,%d", r, g, b)
	}
}

func TestCanvasPlotSetsBrailleBits(t *testing.T) {
	c := NewCanvas(1, 1, ProfileNone)
	c.Plot(0, 0, HSL(0, 0, 100), 1)
	c.Plot(1, 3, HSL(0, 0, 100), 1)
	c.Plot(5, 5, HSL(0, 0, 100), 1) // off canvas

	want := string(rune(0x2800 + 1<<0 + 1<<7))
	if got := c.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCanvasHeavierDotOwnsCellColour(t *testing.T) {
	c := NewCanvas(1, 1, ProfileTrueColor)
	c.Plot(0, 0, HSL(0, 100, 50), 10)
	c.Plot(1, 0, HSL(240, 100, 50), 5)
	out := c.String()
	if !strings.Contains(out, "\x1b[38;2;255;0;0m") {
		t.Fatalf("expected red to win, got %q", out)
	}
	if !strings.HasSuffix(out, "\x1b[0m") {
		t.Fatalf("expected colour reset at end of row, got %q", out)
	}
}

func TestCanvasTextOverridesDots(t *testing.T) {
	c := NewCanvas(5, 1, ProfileNone)
	c.Plot(0, 0, HSL(0, 0, 100), 1)
	c.Text(0, 1, "halo!", HSL(0, 0, 100))
	if got := c.String(); got != "⠁halo" {
		t.Fatalf("unexpected canvas %q", got)
	}
}

func TestFitScale(t *testing.T) {
	// 40x20 cells → 80x80 dots → radius 40 available.
	got := FitScale(40, 20, 125)
	want := 40 * fitMargin / 125
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPainterDrawsRingInsideCanvas(t *testing.T) {
	f, err := ring.New(80, 90)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPainter(60, 0.6, ProfileNone)
	out := p.Paint(f.Advance(0, nil, 0.35), 40, 20, f.Extent(), "")

	lines := strings.Split(out, "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(lines))
	}
	lit := 0
	for _, line := range lines {
		if n := len([]rune(line)); n != 40 {
			t.Fatalf("expected 40 columns, got %d", n)
		}
		for _, r := range line {
			if r >= 0x2800 && r <= 0x28FF {
				lit++
			}
		}
	}
	if lit < 20 {
		t.Fatalf("expected the ring to light many cells, got %d", lit)
	}
	if centre := []rune(lines[10])[20]; centre != ' ' {
		t.Fatal("expected the ring centre to stay empty")
	}
}

func TestPainterEasesScaleOnResize(t *testing.T) {
	f, _ := ring.New(16, 90)
	p := NewPainter(60, 0.6, ProfileNone)
	points := f.Advance(0, nil, 0)

	p.Paint(points, 40, 20, f.Extent(), "")
	small := p.Scale()
	p.Paint(points, 80, 40, f.Extent(), "")
	big := FitScale(80, 40, f.Extent())

	if !(p.Scale() > small && p.Scale() < big) {
		t.Fatalf("expected eased scale between %v and %v, got %v", small, big, p.Scale())
	}
	for i := 0; i < 600; i++ {
		p.Paint(points, 80, 40, f.Extent(), "")
	}
	if math.Abs(p.Scale()-big) > 1e-3 {
		t.Fatalf("expected scale to settle at %v, got %v", big, p.Scale())
	}
}

func TestPainterCentresLabel(t *testing.T) {
	f, _ := ring.New(8, 90)
	p := NewPainter(60, 0.6, ProfileNone)
	out := p.Paint(f.Advance(0, nil, 0), 21, 9, f.Extent(), "idle")
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[4], "idle") {
		t.Fatalf("expected label on the middle row, got %q", lines[4])
	}
}

func TestCanvasTextGivesWideRunesTwoCells(t *testing.T) {
	c := NewCanvas(6, 1, ProfileNone)
	c.Text(0, 0, "日本xyz", HSL(0, 0, 100))
	if got := c.String(); got != "日本xy" {
		t.Fatalf("unexpected canvas %q", got)
	}
}

func TestPainterCentresWideLabel(t *testing.T) {
	f, _ := ring.New(8, 90)
	p := NewPainter(60, 0.6, ProfileNone)

	out := p.Paint(f.Advance(0, nil, 0), 21, 9, f.Extent(), "日本語")
	row := strings.Split(out, "\n")[4]
	if w := runewidth.StringWidth(row); w != 21 {
		t.Fatalf("expected the row to stay 21 columns wide, got %d in %q", w, row)
	}
	if i := strings.Index(row, "日本語"); runewidth.StringWidth(row[:i]) != 7 {
		t.Fatalf("expected the label to start at column 7, got %q", row)
	}

	out = p.Paint(f.Advance(0, nil, 0), 5, 3, f.Extent(), "日本語")
	row = strings.Split(out, "\n")[1]
	if w := runewidth.StringWidth(row); w != 5 || !strings.Contains(row, "日本") {
		t.Fatalf("expected a truncated label within 5 columns, got %q", row)
	}
}
