package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/olivier-w/halo/internal/ring"
)

func TestWriterWritesHeaderOnce(t *testing.T) {
	f, err := ring.New(4, 90)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.WriteFrame(0, 0, f.Mode(), f.Advance(0, nil, 0)); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrame(1, 0.5, f.Mode(), f.Advance(0.5, nil, 0)); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 9 {
		t.Fatalf("expected header + 8 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if strings.Count(buf.String(), "frame,t,mode") != 1 {
		t.Fatalf("expected exactly one header, got:\n%s", buf.String())
	}
}

func TestTraceRecordsModeAndGeometry(t *testing.T) {
	f, err := ring.New(8, 90)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	calls := 0
	energy := func(dst []byte) []byte {
		calls++
		if calls <= 2 {
			return nil
		}
		return append(dst[:0], 255, 255, 255, 255)
	}

	err = Trace(context.Background(), f, energy, TraceOptions{Frames: 4, FPS: 60, RotationSpeed: 0.35}, NewWriter(&buf))
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}

	var records []Record
	if err := gocsv.UnmarshalString(buf.String(), &records); err != nil {
		t.Fatalf("parsing trace: %v", err)
	}
	if len(records) != 32 {
		t.Fatalf("expected 32 rows, got %d", len(records))
	}
	if records[0].Mode != "idle" || records[31].Mode != "driven" {
		t.Fatalf("expected idle then driven, got %q and %q", records[0].Mode, records[31].Mode)
	}
	if records[31].Intensity != 1 || records[31].Frame != 3 {
		t.Fatalf("unexpected last row %+v", records[31])
	}
	if records[8].Time != 1.0/60 {
		t.Fatalf("expected fixed time step, got %v", records[8].Time)
	}
}

func TestTraceStopsOnCancel(t *testing.T) {
	f, _ := ring.New(4, 90)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := Trace(ctx, f, nil, TraceOptions{Frames: 10, FPS: 60, Pace: true}, NewWriter(&buf))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", buf.String())
	}
}

func TestTraceRejectsZeroFPS(t *testing.T) {
	f, _ := ring.New(4, 90)
	if err := Trace(context.Background(), f, nil, TraceOptions{Frames: 1}, NewWriter(&bytes.Buffer{})); err == nil {
		t.Fatal("expected error for zero fps")
	}
}
