package render

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Profile is the colour capability of the terminal.
type Profile uint8

const (
	ProfileNone Profile = iota
	ProfileANSI16
	ProfileANSI256
	ProfileTrueColor
)

var (
	profileOnce sync.Once
	profile     Profile
	seqCache    sync.Map
)

// DetectProfile inspects NO_COLOR, COLORTERM and TERM once per process.
func DetectProfile() Profile {
	profileOnce.Do(func() {
		profile = profileFromEnv(os.LookupEnv)
	})
	return profile
}

func profileFromEnv(lookup func(string) (string, bool)) Profile {
	if _, disabled := lookup("NO_COLOR"); disabled {
		return ProfileNone
	}
	term, _ := lookup("TERM")
	colorTerm, _ := lookup("COLORTERM")
	term = strings.ToLower(term)
	colorTerm = strings.ToLower(colorTerm)
	switch {
	case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
		return ProfileTrueColor
	case strings.Contains(term, "256color"):
		return ProfileANSI256
	case term == "", term == "dumb":
		return ProfileNone
	default:
		return ProfileANSI16
	}
}

// HSL converts CSS-style hue (degrees), saturation and lightness (percent).
func HSL(h, s, l float64) colorful.Color {
	return colorful.Hsl(h, s/100, l/100).Clamped()
}

var ansi16 = []colorful.Color{
	{R: 0, G: 0, B: 0},
	{R: 205.0 / 255, G: 49.0 / 255, B: 49.0 / 255},
	{R: 13.0 / 255, G: 188.0 / 255, B: 121.0 / 255},
	{R: 229.0 / 255, G: 229.0 / 255, B: 16.0 / 255},
	{R: 36.0 / 255, G: 114.0 / 255, B: 200.0 / 255},
	{R: 188.0 / 255, G: 63.0 / 255, B: 188.0 / 255},
	{R: 17.0 / 255, G: 168.0 / 255, B: 205.0 / 255},
	{R: 229.0 / 255, G: 229.0 / 255, B: 229.0 / 255},
}

// ansiState suppresses repeated escape sequences for the same colour.
type ansiState struct {
	profile Profile
	current uint32
	set     bool
}

func (s *ansiState) apply(sb *strings.Builder, c colorful.Color) {
	if s.profile == ProfileNone {
		return
	}
	r, g, b := c.RGB255()
	key := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	if s.set && key == s.current {
		return
	}
	sb.WriteString(sequence(s.profile, c))
	s.current = key
	s.set = true
}

func (s *ansiState) reset(sb *strings.Builder) {
	if !s.set {
		return
	}
	sb.WriteString("\x1b[0m")
	s.set = false
}

func sequence(p Profile, c colorful.Color) string {
	r, g, b := c.RGB255()
	key := uint32(p)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	var seq string
	switch p {
	case ProfileTrueColor:
		seq = fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
	case ProfileANSI256:
		idx := 16 + 36*(int(r)*5/255) + 6*(int(g)*5/255) + int(b)*5/255
		seq = fmt.Sprintf("\x1b[38;5;%dm", idx)
	case ProfileANSI16:
		best := 0
		for i, pc := range ansi16 {
			if c.DistanceLab(pc) < c.DistanceLab(ansi16[best]) {
				best = i
			}
		}
		seq = fmt.Sprintf("\x1b[%dm", 30+best)
	}

	seqCache.Store(key, seq)
	return seq
}
