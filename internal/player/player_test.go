package player

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestRingBufferKeepsMostRecentBytes(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Write([]byte{1, 2, 3})
	rb.Write([]byte{4, 5})

	dst := make([]byte, 4)
	if n := rb.Latest(dst); n != 4 {
		t.Fatalf("expected 4 bytes, got %d", n)
	}
	if string(dst) != string([]byte{2, 3, 4, 5}) {
		t.Fatalf("expected [2 3 4 5], got %v", dst)
	}

	rb.Write([]byte{6, 7, 8, 9, 10, 11})
	short := make([]byte, 2)
	rb.Latest(short)
	if string(short) != string([]byte{10, 11}) {
		t.Fatalf("expected [10 11] after oversized write, got %v", short)
	}

	rb.Clear()
	if n := rb.Latest(dst); n != 0 || rb.Len() != 0 {
		t.Fatalf("expected empty buffer after Clear, got %d", n)
	}
}

func TestMonoMixAveragesChannels(t *testing.T) {
	pcm := make([]byte, 8)
	neg := int16(-16384)
	binary.LittleEndian.PutUint16(pcm[0:], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(pcm[2:], uint16(neg))
	binary.LittleEndian.PutUint16(pcm[4:], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(pcm[6:], uint16(int16(16384)))

	out := monoMix(pcm, 2, make([]float64, 2))
	if out[0] != 0 || out[1] != 0.5 {
		t.Fatalf("expected [0 0.5], got %v", out)
	}
}

func TestReadAheadIsFrameAligned(t *testing.T) {
	// 44.1 kHz stereo PCM16: 60ms is exactly 2646 frames.
	if got := readAhead(44100*2*2, 4); got != 10584 {
		t.Fatalf("expected 10584 bytes, got %d", got)
	}
	// 11.025 kHz mono: 1323 bytes rounds down to a whole frame.
	if got := readAhead(11025*2, 2); got != 1322 {
		t.Fatalf("expected 1322 bytes, got %d", got)
	}
	if got := readAhead(10, 4); got != 4 {
		t.Fatalf("expected at least one frame, got %d", got)
	}
}

func TestResolveSeekClamps(t *testing.T) {
	if got := resolveSeek(-5, io.SeekStart, 0, 100); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := resolveSeek(10, io.SeekCurrent, 95, 100); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	if got := resolveSeek(-20, io.SeekEnd, 0, 100); got != 80 {
		t.Fatalf("expected 80, got %d", got)
	}
}

func TestChunkReaderDrainsAndAlignsSeeks(t *testing.T) {
	chunks := [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}}
	var seekedTo int64 = -1
	r := &chunkReader{
		total:    8,
		channels: 2,
		fill: func() ([]byte, error) {
			if len(chunks) == 0 {
				return nil, io.EOF
			}
			c := chunks[0]
			chunks = chunks[1:]
			return c, nil
		},
		seekFrame: func(frame int64) error {
			seekedTo = frame
			return nil
		},
	}

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 8 || got[7] != 8 {
		t.Fatalf("unexpected data %v", got)
	}

	pos, err := r.Seek(7, io.SeekStart)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if pos != 4 || seekedTo != 1 {
		t.Fatalf("expected aligned seek to byte 4 (frame 1), got byte %d frame %d", pos, seekedTo)
	}
}

func TestChunkReaderSeekErrorKeepsPosition(t *testing.T) {
	boom := errors.New("boom")
	r := &chunkReader{
		pos:       4,
		total:     8,
		channels:  1,
		seekFrame: func(int64) error { return boom },
	}
	pos, err := r.Seek(0, io.SeekStart)
	if !errors.Is(err, boom) || pos != 4 {
		t.Fatalf("expected boom at position 4, got %v at %d", err, pos)
	}
}

func TestWAVDecoderConvertsToPCM16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	samples := []int16{0, 1000, -1000, 32767}
	if err := os.WriteFile(path, wavFile(8000, 1, samples), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec, err := newDecoder(f)
	if err != nil {
		t.Fatalf("newDecoder: %v", err)
	}
	if dec.SampleRate() != 8000 || dec.ChannelCount() != 1 || dec.Length() != 8 {
		t.Fatalf("unexpected format: %d Hz, %d ch, %d bytes", dec.SampleRate(), dec.ChannelCount(), dec.Length())
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(raw) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(raw))
	}
	for i, want := range samples {
		if got := int16(binary.LittleEndian.Uint16(raw[i*2:])); got != want {
			t.Fatalf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestNewDecoderRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := newDecoder(f); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestSamplesReadsTapAsMono(t *testing.T) {
	tap := NewRingBuffer(64)
	p := &Player{tap: tap, channels: 1}
	frame := make([]byte, 2)
	minSample := int16(-32768)
	binary.LittleEndian.PutUint16(frame, uint16(minSample))
	tap.Write(frame)

	out := p.Samples(make([]float64, 4))
	if len(out) != 1 || math.Abs(out[0]+1) > 1e-12 {
		t.Fatalf("expected one sample of -1, got %v", out)
	}

	p.paused = true
	if out := p.Samples(make([]float64, 4)); len(out) != 0 {
		t.Fatalf("expected no samples while paused, got %v", out)
	}
}

func TestPlayerCloseIsIdempotent(t *testing.T) {
	p := &Player{stopMon: make(chan struct{})}
	if err := p.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestReadMetadataFallsBackToFileName(t *testing.T) {
	m := ReadMetadata("/music/Some Song.flac")
	if m.Title != "Some Song" || m.Label() != "Some Song" {
		t.Fatalf("unexpected metadata %+v", m)
	}
	if got := (Metadata{Title: "T", Artist: "A"}).Label(); got != "A - T" {
		t.Fatalf("expected %q, got %q", "A - T", got)
	}
}

// wavFile builds a canonical 16-bit PCM WAV file.
func wavFile(rate, channels int, samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	hdr := make([]byte, 44)
	copy(hdr[0:], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:], uint32(36+len(data)))
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16)
	binary.LittleEndian.PutUint16(hdr[20:], 1)
	binary.LittleEndian.PutUint16(hdr[22:], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:], uint32(rate))
	binary.LittleEndian.PutUint32(hdr[28:], uint32(rate*channels*2))
	binary.LittleEndian.PutUint16(hdr[32:], uint16(channels*2))
	binary.LittleEndian.PutUint16(hdr[34:], 16)
	copy(hdr[36:], "data")
	binary.LittleEndian.PutUint32(hdr[40:], uint32(len(data)))
	return append(hdr, data...)
}
