package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM   = 1
	defaultBitRate = 16
)

// ErrInvalidWAV is returned for files that are not PCM WAV.
var ErrInvalidWAV = errors.New("not a PCM WAV file")

// WAVSource streams the first channel of a PCM WAV file as normalised
// samples in [-1, 1].
type WAVSource struct {
	closer     io.Closer
	dec        *wav.Decoder
	buf        *goaudio.IntBuffer
	channels   int
	bitDepth   int
	sampleRate int
}

// OpenWAV opens a WAV file on disk.
func OpenWAV(path string) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := NewWAVSource(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src.closer = f
	return src, nil
}

// NewWAVSource decodes WAV data from r. The caller keeps ownership of r.
func NewWAVSource(r io.ReadSeeker) (*WAVSource, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
		}
		return nil, ErrInvalidWAV
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: unsupported audio format %d", ErrInvalidWAV, dec.WavAudioFormat)
	}
	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidWAV, dec.BitDepth)
	}
	return &WAVSource{
		dec:        dec,
		channels:   int(dec.NumChans),
		bitDepth:   int(dec.BitDepth),
		sampleRate: int(dec.SampleRate),
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{NumChannels: int(dec.NumChans), SampleRate: int(dec.SampleRate)},
		},
	}, nil
}

// SampleRate returns the file's sample rate in Hz.
func (s *WAVSource) SampleRate() int {
	return s.sampleRate
}

// Channels returns the number of interleaved channels in the file. Only the
// first one is delivered.
func (s *WAVSource) Channels() int {
	return s.channels
}

// BitDepth returns the PCM sample width.
func (s *WAVSource) BitDepth() int {
	return s.bitDepth
}

// ReadSamples decodes up to len(dst) samples of the first channel.
func (s *WAVSource) ReadSamples(ctx context.Context, dst []float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	want := len(dst) * s.channels
	if want == 0 {
		return 0, nil
	}
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("decoding PCM data: %w", err)
	}
	frames := n / s.channels
	if frames == 0 {
		return 0, io.EOF
	}

	scale := 1 / math.Pow(2, float64(s.bitDepth-1))
	for i := 0; i < frames; i++ {
		v := s.buf.Data[i*s.channels]
		if s.bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		dst[i] = float64(v) * scale
	}
	return frames, nil
}

// Close releases the underlying file when the source opened it.
func (s *WAVSource) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// WAVWriter encodes mono float samples as 16-bit PCM.
type WAVWriter struct {
	enc *wav.Encoder
	buf *goaudio.IntBuffer
}

// NewWAVWriter starts a mono 16-bit WAV stream on w. Close must be called to
// finalise the header; it does not close w.
func NewWAVWriter(w io.WriteSeeker, sampleRate int) *WAVWriter {
	return &WAVWriter{
		enc: wav.NewEncoder(w, sampleRate, defaultBitRate, 1, wavFormatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: defaultBitRate,
		},
	}
}

// Write appends samples, clipping them to [-1, 1].
func (w *WAVWriter) Write(samples []float64) error {
	if len(samples) == 0 {
		return nil
	}
	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, s := range samples {
		s = math.Max(-1, math.Min(1, s))
		w.buf.Data[i] = int(math.Round(s * math.MaxInt16))
	}
	return w.enc.Write(w.buf)
}

// Close writes the final header sizes.
func (w *WAVWriter) Close() error {
	return w.enc.Close()
}

// WriteWAVFile writes mono samples to path as a 16-bit PCM WAV file.
func WriteWAVFile(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := NewWAVWriter(f, sampleRate)
	if err := w.Write(samples); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalising %s: %w", path, err)
	}
	return f.Close()
}
