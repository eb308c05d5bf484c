package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/olivier-w/halo/internal/analyser"
	"github.com/olivier-w/halo/internal/media"
	"github.com/olivier-w/halo/internal/player"
)

// Transport is the playback control a file-backed source offers the UI.
type Transport interface {
	TogglePause()
	Paused() bool
	AdjustVolume(delta float64)
	Volume() float64
	Position() time.Duration
	Duration() time.Duration
}

// FileSource plays an audio file and reports its spectrum.
type FileSource struct {
	player   *player.Player
	analyser *analyser.Analyser
	samples  []float64
	Meta     player.Metadata
}

// OpenFile returns an Opener that starts playing path and analyses what is
// being played.
func OpenFile(path string, fftSize int, opts ...analyser.Option) Opener {
	return func(ctx context.Context) (Source, error) {
		if ext := filepath.Ext(path); !media.IsSupportedExt(ext) {
			return nil, fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
		}
		if info, err := os.Stat(path); err != nil {
			return nil, err
		} else if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}

		a, err := analyser.New(fftSize, opts...)
		if err != nil {
			return nil, fmt.Errorf("configuring analyser: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := player.New(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
		}
		return &FileSource{
			player:   p,
			analyser: a,
			samples:  make([]float64, fftSize),
			Meta:     player.ReadMetadata(path),
		}, nil
	}
}

// ByteFrequencyData analyses the most recently played samples. Once playback
// pauses or ends the analyser sees silence and the reading decays to zero.
func (s *FileSource) ByteFrequencyData(dst []byte) []byte {
	samples := s.samples[:0]
	select {
	case <-s.player.Done():
	default:
		samples = s.player.Samples(s.samples)
	}
	return s.analyser.ByteFrequencyData(samples, dst)
}

// Transport exposes playback control.
func (s *FileSource) Transport() Transport { return s.player }

// Label is the caption for the track being played.
func (s *FileSource) Label() string { return s.Meta.Label() }

// Done closes when the file has finished playing.
func (s *FileSource) Done() <-chan struct{} { return s.player.Done() }

func (s *FileSource) Close() error {
	return s.player.Close()
}
