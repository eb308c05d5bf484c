// Package ring animates a fixed ring of angular segments around a centre point.
// Each segment is a damped spring pulled toward a target radius computed from
// synthetic harmonics or, when a reading is supplied, from per-bucket energy.
package ring

import (
	"errors"
	"fmt"
	"math"
)

const (
	defaultAudioAmplitude = 20.0

	baseSaturation = 75.0
	baseLightness  = 60.0
)

var (
	ErrInvalidSegments  = errors.New("ring: segment count must be at least 1")
	ErrInvalidRadius    = errors.New("ring: base radius must be positive")
	ErrInvalidAmplitude = errors.New("ring: audio amplitude must be finite and not negative")
)

// Mode reports which target function drove the last advance.
type Mode uint8

const (
	Idle Mode = iota
	Driven
)

func (m Mode) String() string {
	if m == Driven {
		return "driven"
	}
	return "idle"
}

// Segment is one fixed angular slot of the ring.
type Segment struct {
	Angle      float64
	BaseRadius float64

	CurrentRadius float64
	TargetRadius  float64
	Velocity      float64

	Hue        float64
	Saturation float64
	Lightness  float64
}

// Point is the per-segment geometry and colour handed to a renderer after
// each advance. X and Y are relative to the ring centre.
type Point struct {
	Index      int
	X, Y       float64
	Radius     float64
	Hue        float64
	Saturation float64
	Lightness  float64
	Intensity  float64
	GlowInner  float64
	GlowOuter  float64
}

// Option configures a Field.
type Option func(*Field)

// WithAudioAmplitude sets how far a full-scale energy reading pushes a
// segment outward.
func WithAudioAmplitude(a float64) Option {
	return func(f *Field) {
		f.amplitude = a
	}
}

// Field owns the ring. It is not safe for concurrent use; one frame loop
// drives one field.
type Field struct {
	segments  []Segment
	points    []Point
	amplitude float64
	mode      Mode
}

// New creates a field of n segments resting at radius.
func New(n int, radius float64, opts ...Option) (*Field, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSegments, n)
	}
	if !(radius > 0) || math.IsInf(radius, 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRadius, radius)
	}

	f := &Field{
		segments:  make([]Segment, n),
		points:    make([]Point, n),
		amplitude: defaultAudioAmplitude,
	}
	for _, opt := range opts {
		opt(f)
	}
	if !(f.amplitude >= 0) || math.IsInf(f.amplitude, 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAmplitude, f.amplitude)
	}

	for i := range f.segments {
		frac := float64(i) / float64(n)
		f.segments[i] = Segment{
			Angle:         frac * 2 * math.Pi,
			BaseRadius:    radius,
			CurrentRadius: radius,
			TargetRadius:  radius,
			Hue:           frac * 360,
			Saturation:    baseSaturation,
			Lightness:     baseLightness,
		}
	}
	return f, nil
}

// Len returns the number of segments.
func (f *Field) Len() int { return len(f.segments) }

// Mode returns the mode used by the most recent Advance.
func (f *Field) Mode() Mode { return f.mode }

// AudioAmplitude returns the driven-mode push for a full-scale bucket.
func (f *Field) AudioAmplitude() float64 { return f.amplitude }

// Segments returns a copy of the current segment state.
func (f *Field) Segments() []Segment {
	out := make([]Segment, len(f.segments))
	copy(out, f.segments)
	return out
}

// Reset puts every spring back at rest on its base radius.
func (f *Field) Reset() {
	for i := range f.segments {
		s := &f.segments[i]
		s.CurrentRadius = s.BaseRadius
		s.TargetRadius = s.BaseRadius
		s.Velocity = 0
	}
	f.mode = Idle
}

// Bucket maps segment i of n onto one of buckets energy slots.
func Bucket(i, n, buckets int) int {
	if n <= 0 || buckets <= 0 {
		return 0
	}
	return int(math.Floor(float64(i) / float64(n) * float64(buckets)))
}
