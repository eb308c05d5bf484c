// Package analyser turns a window of PCM samples into byte frequency data:
// windowed FFT magnitudes, smoothed over time and mapped from a decibel
// range onto 0-255, one byte per frequency bin.
package analyser

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	DefaultFFTSize     = 128
	DefaultSmoothing   = 0.85
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0

	minFFTSize = 32
	maxFFTSize = 32768
)

// Option configures an Analyser.
type Option func(*Analyser)

// WithSmoothing sets the time constant blending each frame with the last.
func WithSmoothing(tau float64) Option {
	return func(a *Analyser) {
		a.smoothing = tau
	}
}

// WithDecibels sets the range mapped onto 0-255.
func WithDecibels(minDB, maxDB float64) Option {
	return func(a *Analyser) {
		a.minDB = minDB
		a.maxDB = maxDB
	}
}

// Analyser keeps the smoothed spectrum between calls. Not safe for
// concurrent use.
type Analyser struct {
	size      int
	smoothing float64
	minDB     float64
	maxDB     float64

	fft    *fourier.FFT
	frame  []float64
	coeffs []complex128
	smooth []float64
}

// New creates an analyser for windows of fftSize samples.
func New(fftSize int, opts ...Option) (*Analyser, error) {
	if fftSize < minFFTSize || fftSize > maxFFTSize || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size %d must be a power of two in [%d, %d]", fftSize, minFFTSize, maxFFTSize)
	}
	a := &Analyser{
		size:      fftSize,
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDecibels,
		maxDB:     DefaultMaxDecibels,
		fft:       fourier.NewFFT(fftSize),
		frame:     make([]float64, fftSize),
		smooth:    make([]float64, fftSize/2),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.smoothing < 0 || a.smoothing > 1 {
		return nil, fmt.Errorf("smoothing %v outside [0, 1]", a.smoothing)
	}
	if a.maxDB <= a.minDB {
		return nil, fmt.Errorf("decibel range [%v, %v] is empty", a.minDB, a.maxDB)
	}
	return a, nil
}

// FFTSize returns the window length.
func (a *Analyser) FFTSize() int { return a.size }

// FrequencyBinCount returns the number of bytes ByteFrequencyData produces.
func (a *Analyser) FrequencyBinCount() int { return a.size / 2 }

// ByteFrequencyData analyses the most recent FFTSize samples and writes one
// byte per bin into dst, growing it if needed. Short input is padded with
// silence at the front.
func (a *Analyser) ByteFrequencyData(samples []float64, dst []byte) []byte {
	bins := a.FrequencyBinCount()
	if cap(dst) < bins {
		dst = make([]byte, bins)
	}
	dst = dst[:bins]

	if len(samples) > a.size {
		samples = samples[len(samples)-a.size:]
	}
	pad := a.size - len(samples)
	for i := 0; i < pad; i++ {
		a.frame[i] = 0
	}
	copy(a.frame[pad:], samples)
	window.Blackman(a.frame)

	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	scale := 1 / float64(a.size)
	span := a.maxDB - a.minDB
	for k := 0; k < bins; k++ {
		c := a.coeffs[k]
		mag := math.Hypot(real(c), imag(c)) * scale
		v := a.smoothing*a.smooth[k] + (1-a.smoothing)*mag
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.smooth[k] = v

		if v <= 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(v)
		scaled := math.Floor(255 * (db - a.minDB) / span)
		switch {
		case scaled < 0:
			dst[k] = 0
		case scaled > 255:
			dst[k] = 255
		default:
			dst[k] = byte(scaled)
		}
	}
	return dst
}

// Reset clears the smoothed history.
func (a *Analyser) Reset() {
	for i := range a.smooth {
		a.smooth[i] = 0
	}
}
