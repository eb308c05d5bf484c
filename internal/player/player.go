package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	bitDepth = 2 // 16-bit = 2 bytes

	// tapSeconds is how much recently played audio the tap keeps around.
	tapSeconds = 1
	// outputBuffer bounds both the driver buffer and each player's read-ahead,
	// so the tap and Position stay within this much of what is audible.
	outputBuffer = 60 * time.Millisecond
)

// tapReader feeds oto and copies everything it reads into the tap.
type tapReader struct {
	reader io.Reader
	tap    *RingBuffer
	pos    int64
	mu     sync.Mutex
}

func (tr *tapReader) Read(p []byte) (int, error) {
	n, err := tr.reader.Read(p)
	if n > 0 {
		tr.tap.Write(p[:n])
	}
	tr.mu.Lock()
	tr.pos += int64(n)
	tr.mu.Unlock()
	return n, err
}

func (tr *tapReader) Pos() int64 {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.pos
}

// Player plays one audio file and exposes the most recently played samples.
type Player struct {
	file        *os.File
	decoder     audioDecoder
	reader      *tapReader
	tap         *RingBuffer
	otoPlayer   *oto.Player
	duration    time.Duration
	bytesPerSec int
	channels    int
	volume      float64
	paused      bool
	done        chan struct{}
	stopMon     chan struct{}
	mu          sync.Mutex
	closed      bool
	pcm         []byte
}

var (
	globalOtoCtx *oto.Context
	otoFormat    [2]int
	otoOnce      sync.Once
	otoInitErr   error
)

// initOto creates the process-wide output context. oto allows only one, so
// every later file must share the first file's sample rate and layout.
func initOto(rate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   outputBuffer,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			otoFormat = [2]int{rate, channels}
		}
	})
	if otoInitErr != nil {
		return nil, fmt.Errorf("opening audio output: %w", otoInitErr)
	}
	if otoFormat != [2]int{rate, channels} {
		return nil, fmt.Errorf("audio output is %d Hz/%dch, file is %d Hz/%dch",
			otoFormat[0], otoFormat[1], rate, channels)
	}
	return globalOtoCtx, nil
}

// New opens path, starts playback and begins tapping the output.
func New(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	rate, channels := dec.SampleRate(), dec.ChannelCount()
	ctx, err := initOto(rate, channels)
	if err != nil {
		f.Close()
		return nil, err
	}

	bytesPerSec := rate * channels * bitDepth
	tap := NewRingBuffer(bytesPerSec * tapSeconds)
	p := &Player{
		file:        f,
		decoder:     dec,
		reader:      &tapReader{reader: dec, tap: tap},
		tap:         tap,
		duration:    time.Duration(float64(dec.Length()) / float64(bytesPerSec) * float64(time.Second)),
		bytesPerSec: bytesPerSec,
		channels:    channels,
		volume:      0.8,
		done:        make(chan struct{}),
		stopMon:     make(chan struct{}),
	}

	p.otoPlayer = ctx.NewPlayer(p.reader)
	p.otoPlayer.SetBufferSize(readAhead(bytesPerSec, channels*bitDepth))
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	go p.monitor()

	return p, nil
}

// readAhead is outputBuffer worth of bytes, rounded down to whole frames.
func readAhead(bytesPerSec, frameBytes int) int {
	n := int(int64(bytesPerSec) * int64(outputBuffer) / int64(time.Second))
	return max(n-n%frameBytes, frameBytes)
}

func (p *Player) monitor() {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopMon:
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		finished := !p.paused && p.reader.Pos() >= p.decoder.Length() && !p.otoPlayer.IsPlaying()
		p.mu.Unlock()

		if finished {
			close(p.done)
			return
		}
	}
}

// Done returns a channel that closes when playback finishes.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Samples writes the most recent frames into dst as mono samples in [-1, 1],
// oldest first, and returns the filled prefix. While paused nothing is being
// played, so it returns an empty slice.
func (p *Player) Samples(dst []float64) []float64 {
	if p.Paused() {
		return dst[:0]
	}
	frameBytes := p.channels * bitDepth
	want := len(dst) * frameBytes
	if cap(p.pcm) < want {
		p.pcm = make([]byte, want)
	}
	n := p.tap.Latest(p.pcm[:want]) / frameBytes
	return monoMix(p.pcm[:n*frameBytes], p.channels, dst[:n])
}

// monoMix averages interleaved PCM16 frames down to one channel.
func monoMix(pcm []byte, channels int, dst []float64) []float64 {
	frameBytes := channels * bitDepth
	for i := range dst {
		var sum float64
		frame := pcm[i*frameBytes:]
		for ch := 0; ch < channels; ch++ {
			sum += float64(int16(binary.LittleEndian.Uint16(frame[ch*bitDepth:])))
		}
		dst[i] = sum / float64(channels) / 32768
	}
	return dst
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.paused {
		p.otoPlayer.Play()
	} else {
		p.otoPlayer.Pause()
	}
	p.paused = !p.paused
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	if p.bytesPerSec == 0 {
		return 0
	}
	secs := float64(p.reader.Pos()) / float64(p.bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// AdjustVolume moves the volume by delta, clamped to 0.0 - 1.0.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = min(max(p.volume+delta, 0), 1)
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(p.volume)
	}
}

// Close stops playback and releases the file. Safe to call more than once.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	if p.stopMon != nil {
		close(p.stopMon)
	}
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
	if p.tap != nil {
		p.tap.Clear()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
