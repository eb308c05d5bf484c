// Package export writes ring frames as CSV rows for offline rendering.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/olivier-w/halo/internal/ring"
)

// Record is one segment of one frame.
type Record struct {
	Frame      int     `csv:"frame"`
	Time       float64 `csv:"t"`
	Mode       string  `csv:"mode"`
	Segment    int     `csv:"segment"`
	X          float64 `csv:"x"`
	Y          float64 `csv:"y"`
	Radius     float64 `csv:"radius"`
	Hue        float64 `csv:"hue"`
	Saturation float64 `csv:"saturation"`
	Lightness  float64 `csv:"lightness"`
	Intensity  float64 `csv:"intensity"`
}

// Writer appends frames to w, writing the header once.
type Writer struct {
	w             io.Writer
	headerWritten bool
	records       []Record
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame writes one row per point.
func (wr *Writer) WriteFrame(frame int, t float64, mode ring.Mode, points []ring.Point) error {
	wr.records = wr.records[:0]
	for _, p := range points {
		wr.records = append(wr.records, Record{
			Frame:      frame,
			Time:       t,
			Mode:       mode.String(),
			Segment:    p.Index,
			X:          p.X,
			Y:          p.Y,
			Radius:     p.Radius,
			Hue:        p.Hue,
			Saturation: p.Saturation,
			Lightness:  p.Lightness,
			Intensity:  p.Intensity,
		})
	}

	if !wr.headerWritten {
		if err := gocsv.Marshal(wr.records, wr.w); err != nil {
			return fmt.Errorf("writing frame %d: %w", frame, err)
		}
		wr.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(wr.records, wr.w); err != nil {
		return fmt.Errorf("writing frame %d: %w", frame, err)
	}
	return nil
}

// EnergyFunc supplies the reading for one tick, nil when absent.
type EnergyFunc func(dst []byte) []byte

// TraceOptions controls a headless run.
type TraceOptions struct {
	Frames        int
	FPS           int
	RotationSpeed float64
	// Pace waits one real frame interval between ticks, for sources that
	// produce readings in real time.
	Pace bool
}

// Trace advances field opts.Frames times at fixed 1/FPS steps and writes
// every frame. It stops early, returning ctx.Err(), if ctx is cancelled
// between ticks.
func Trace(ctx context.Context, field *ring.Field, energy EnergyFunc, opts TraceOptions, w *Writer) error {
	if opts.FPS < 1 {
		return fmt.Errorf("trace fps must be positive, got %d", opts.FPS)
	}
	step := 1 / float64(opts.FPS)

	var ticker *time.Ticker
	if opts.Pace {
		ticker = time.NewTicker(time.Second / time.Duration(opts.FPS))
		defer ticker.Stop()
	}

	var buf []byte
	for frame := 0; frame < opts.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}

		var reading []byte
		if energy != nil {
			reading = energy(buf)
			if reading != nil {
				buf = reading
			}
		}
		t := float64(frame) * step
		points := field.Advance(t, reading, opts.RotationSpeed)
		if err := w.WriteFrame(frame, t, field.Mode(), points); err != nil {
			return err
		}
	}
	return nil
}
