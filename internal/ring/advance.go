package ring

import "math"

type springParams struct {
	stiffness float64
	damping   float64
	below     float64
	above     float64
}

var (
	drivenSpring = springParams{stiffness: 0.18, damping: 0.72, below: 10, above: 35}
	idleSpring   = springParams{stiffness: 0.14, damping: 0.78, below: 8, above: 25}
)

// Advance moves every segment one frame forward and returns the points to
// paint. A non-empty energy slice drives the ring; nil or empty falls back to
// the idle waveform. The returned slice is reused by the next call.
func (f *Field) Advance(t float64, energy []byte, rotationSpeed float64) []Point {
	rotationOffset := t * rotationSpeed
	driven := len(energy) > 0
	if driven {
		f.mode = Driven
	} else {
		f.mode = Idle
	}

	n := len(f.segments)
	for i := range f.segments {
		s := &f.segments[i]
		fi := float64(i)

		var params springParams
		var intensity float64
		if driven {
			var raw byte
			if b := Bucket(i, n, len(energy)); b >= 0 && b < len(energy) {
				raw = energy[b]
			}
			intensity = float64(raw) / 255
			s.TargetRadius = s.BaseRadius + intensity*f.amplitude + drivenHarmonics(t, fi)
			params = drivenSpring
		} else {
			s.TargetRadius = s.BaseRadius + idleHarmonics(t, fi)
			params = idleSpring
		}

		s.Velocity += (s.TargetRadius - s.CurrentRadius) * params.stiffness
		s.Velocity *= params.damping
		s.CurrentRadius += s.Velocity
		s.CurrentRadius = math.Max(s.BaseRadius-params.below, math.Min(s.BaseRadius+params.above, s.CurrentRadius))

		angle := s.Angle + rotationOffset
		p := &f.points[i]
		p.Index = i
		p.X = math.Cos(angle) * s.CurrentRadius
		p.Y = math.Sin(angle) * s.CurrentRadius
		p.Radius = s.CurrentRadius
		p.Hue = s.Hue
		p.Intensity = intensity
		if driven {
			p.Lightness = math.Min(95, s.Lightness+intensity*30)
			p.Saturation = math.Min(100, s.Saturation+intensity*20)
			p.GlowInner = 10 + intensity*15
			p.GlowOuter = 20 + intensity*25
		} else {
			p.Lightness = s.Lightness
			p.Saturation = s.Saturation
			p.GlowInner = 8
			p.GlowOuter = 15
		}
	}
	return f.points
}

func drivenHarmonics(t, i float64) float64 {
	return math.Sin(t*2.2+i*0.15)*8 +
		math.Cos(t*1.6+i*0.12)*6 +
		math.Sin(t*3.0+i*0.08)*4
}

func idleHarmonics(t, i float64) float64 {
	return math.Sin(t*1.8+i*0.15)*11 +
		math.Cos(t*2.3+i*0.12)*8 +
		math.Sin(t*1.4+i*0.18)*6 +
		math.Cos(t*2.8+i*0.10)*4
}

// Extent is the largest radius any segment can reach, in either mode.
func (f *Field) Extent() float64 {
	var r float64
	for _, s := range f.segments {
		r = math.Max(r, s.BaseRadius+drivenSpring.above)
	}
	return r
}
