// Package config loads halo settings from embedded defaults and an optional
// user YAML file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable.
type Config struct {
	Ring     RingConfig     `yaml:"ring"`
	Analyser AnalyserConfig `yaml:"analyser"`
	Frame    FrameConfig    `yaml:"frame"`
	Render   RenderConfig   `yaml:"render"`
}

// RingConfig shapes the spring ring.
type RingConfig struct {
	Segments       int     `yaml:"segments"`
	Radius         float64 `yaml:"radius"`
	RotationSpeed  float64 `yaml:"rotation_speed"`  // radians per second
	AudioAmplitude float64 `yaml:"audio_amplitude"` // outward push of a full-scale bucket
}

// AnalyserConfig mirrors the analyser options.
type AnalyserConfig struct {
	FFTSize     int     `yaml:"fft_size"`
	Smoothing   float64 `yaml:"smoothing"`
	MinDecibels float64 `yaml:"min_decibels"`
	MaxDecibels float64 `yaml:"max_decibels"`
}

// FrameConfig drives the frame loop.
type FrameConfig struct {
	FPS int `yaml:"fps"`
}

// RenderConfig tunes the painters.
type RenderConfig struct {
	GlowThreshold float64 `yaml:"glow_threshold"` // intensity at which a segment glows outward
	TraceFPS      int     `yaml:"trace_fps"`      // time step of headless traces
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load reads the embedded defaults, then overlays path if it is not empty.
// Keys missing from the file keep their default.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return parse(data)
}

func parse(user []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(user) > 0 {
		if err := yaml.Unmarshal(user, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Ring.Segments < 1 {
		errs = append(errs, fmt.Errorf("ring.segments must be at least 1, got %d", c.Ring.Segments))
	}
	if r := c.Ring.Radius; !(r > 0) || math.IsInf(r, 1) {
		errs = append(errs, fmt.Errorf("ring.radius must be positive and finite, got %v", r))
	}
	if a := c.Ring.AudioAmplitude; !(a >= 0) || math.IsInf(a, 1) {
		errs = append(errs, fmt.Errorf("ring.audio_amplitude must be finite and not negative, got %v", a))
	}
	if n := c.Analyser.FFTSize; n < 32 || n > 32768 || n&(n-1) != 0 {
		errs = append(errs, fmt.Errorf("analyser.fft_size must be a power of two in [32, 32768], got %d", n))
	}
	if s := c.Analyser.Smoothing; s < 0 || s > 1 {
		errs = append(errs, fmt.Errorf("analyser.smoothing must be in [0, 1], got %v", s))
	}
	if c.Analyser.MaxDecibels <= c.Analyser.MinDecibels {
		errs = append(errs, fmt.Errorf("analyser.max_decibels (%v) must exceed min_decibels (%v)",
			c.Analyser.MaxDecibels, c.Analyser.MinDecibels))
	}
	if c.Frame.FPS < 1 || c.Frame.FPS > 240 {
		errs = append(errs, fmt.Errorf("frame.fps must be in [1, 240], got %d", c.Frame.FPS))
	}
	if c.Render.TraceFPS < 1 {
		errs = append(errs, fmt.Errorf("render.trace_fps must be positive, got %d", c.Render.TraceFPS))
	}
	return errors.Join(errs...)
}

// FrameInterval is the time between frame loop ticks.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Frame.FPS)
}
