package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// audioDecoder produces interleaved 16-bit little-endian PCM.
type audioDecoder interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// chunkSize is how many source frames the chunked decoders pull per refill.
const chunkSize = 4096

func newDecoder(f *os.File) (audioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
}

// resolveSeek turns an io.Seeker request into an absolute offset within
// [0, total].
func resolveSeek(offset int64, whence int, pos, total int64) int64 {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = pos + offset
	case io.SeekEnd:
		next = total + offset
	}
	return min(max(next, 0), total)
}

func putPCM16(dst []byte, sample int) {
	sample = min(max(sample, -32768), 32767)
	binary.LittleEndian.PutUint16(dst, uint16(int16(sample)))
}

// chunkReader serves Read and Seek for decoders that decode whole chunks at a
// time. fill returns the next chunk of PCM16 output; seekFrame repositions
// the source at a sample frame.
type chunkReader struct {
	buf      []byte
	pos      int64
	total    int64
	rate     int
	channels int

	fill      func() ([]byte, error)
	seekFrame func(frame int64) error
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		chunk, err := r.fill()
		if len(chunk) == 0 {
			if err == nil || err == io.ErrUnexpectedEOF {
				err = io.EOF
			}
			return 0, err
		}
		r.buf = chunk
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	r.pos += int64(n)
	return n, nil
}

func (r *chunkReader) Seek(offset int64, whence int) (int64, error) {
	frameBytes := int64(r.channels) * 2
	target := resolveSeek(offset, whence, r.pos, r.total)
	frame := target / frameBytes
	if err := r.seekFrame(frame); err != nil {
		return r.pos, err
	}
	r.buf = nil
	r.pos = frame * frameBytes
	return r.pos, nil
}

func (r *chunkReader) Length() int64     { return r.total }
func (r *chunkReader) SampleRate() int   { return r.rate }
func (r *chunkReader) ChannelCount() int { return r.channels }

// MP3

type mp3Decoder struct {
	*mp3.Decoder
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{Decoder: dec}, nil
}

// go-mp3 always emits 16-bit stereo.
func (d *mp3Decoder) ChannelCount() int { return 2 }

// WAV

func newWAVDecoder(f *os.File) (*chunkReader, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locating WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	depth := int(dec.BitDepth)
	if channels < 1 || (depth != 8 && depth != 16 && depth != 24 && depth != 32) {
		return nil, fmt.Errorf("unsupported WAV layout: %d channels, %d-bit", channels, depth)
	}
	srcSample := depth / 8
	srcFrame := int64(channels * srcSample)
	frames := dec.PCMLen() / srcFrame

	src := make([]byte, chunkSize*int(srcFrame))
	return &chunkReader{
		total:    frames * int64(channels) * 2,
		rate:     int(dec.SampleRate),
		channels: channels,
		fill: func() ([]byte, error) {
			n, err := io.ReadFull(f, src)
			samples := n / srcSample
			out := make([]byte, samples*2)
			for i := 0; i < samples; i++ {
				putPCM16(out[i*2:], wavSample(src[i*srcSample:], depth))
			}
			return out, err
		},
		seekFrame: func(frame int64) error {
			_, err := f.Seek(pcmStart+frame*srcFrame, io.SeekStart)
			return err
		},
	}, nil
}

func wavSample(b []byte, depth int) int {
	switch depth {
	case 8:
		return (int(b[0]) - 128) << 8
	case 16:
		return int(int16(binary.LittleEndian.Uint16(b)))
	case 24:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xFFFFFF
		}
		return int(s >> 8)
	default:
		return int(int32(binary.LittleEndian.Uint32(b)) >> 16)
	}
}

// FLAC

func newFLACDecoder(f *os.File) (*chunkReader, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	channels := int(info.NChannels)
	bps := int(info.BitsPerSample)

	return &chunkReader{
		total:    int64(info.NSamples) * int64(channels) * 2,
		rate:     int(info.SampleRate),
		channels: channels,
		fill: func() ([]byte, error) {
			frame, err := stream.ParseNext()
			if err != nil {
				return nil, err
			}
			n := int(frame.Subframes[0].NSamples)
			out := make([]byte, n*channels*2)
			for i := 0; i < n; i++ {
				for ch := 0; ch < channels; ch++ {
					s := int(frame.Subframes[ch].Samples[i])
					if bps > 16 {
						s >>= bps - 16
					} else if bps < 16 {
						s <<= 16 - bps
					}
					putPCM16(out[(i*channels+ch)*2:], s)
				}
			}
			return out, nil
		},
		seekFrame: func(frame int64) error {
			_, err := stream.Seek(uint64(frame))
			return err
		},
	}, nil
}

// OGG Vorbis

func newOGGDecoder(f *os.File) (*chunkReader, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	channels := reader.Channels()
	src := make([]float32, chunkSize*channels)

	return &chunkReader{
		total:    reader.Length() * int64(channels) * 2,
		rate:     reader.SampleRate(),
		channels: channels,
		fill: func() ([]byte, error) {
			n, err := reader.Read(src)
			out := make([]byte, n*2)
			for i := 0; i < n; i++ {
				putPCM16(out[i*2:], int(src[i]*32767))
			}
			return out, err
		},
		seekFrame: reader.SetPosition,
	}, nil
}
