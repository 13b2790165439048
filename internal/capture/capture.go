//go:build !js && !wasm

// Package capture reads live audio from the default input device.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/himanishpuri/AutoTabber/internal/audio"
)

const DefaultFramesPerBuffer = 256

// stream is the part of *portaudio.Stream the source uses.
type stream interface {
	Start() error
	Read() error
	Stop() error
	Close() error
}

// Config selects the capture parameters. Zero values pick the device
// defaults.
type Config struct {
	SampleRate      int
	FramesPerBuffer int
}

// Source is a live microphone source. Only the first input channel is
// delivered.
type Source struct {
	mu         sync.Mutex
	s          stream
	raw        []float32
	pending    []float64
	channels   int
	sampleRate int
	overflows  int
	started    bool
	closed     bool
}

// Open initialises PortAudio and opens the default input device. Close
// releases the device and terminates PortAudio.
func Open(cfg Config) (*Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	src, err := openDefault(cfg)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	return src, nil
}

func openDefault(cfg Config) (*Source, error) {
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("default input device: %w", err)
	}
	if dev.MaxInputChannels < 1 {
		return nil, fmt.Errorf("input device %q has no input channels", dev.Name)
	}

	channels := dev.MaxInputChannels
	if channels > 2 {
		channels = 2
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = int(dev.DefaultSampleRate)
	}
	frames := cfg.FramesPerBuffer
	if frames <= 0 {
		frames = DefaultFramesPerBuffer
	}

	p := portaudio.HighLatencyParameters(dev, nil)
	p.Input.Channels = channels
	p.SampleRate = float64(rate)
	p.FramesPerBuffer = frames

	raw := make([]float32, frames*channels)
	st, err := portaudio.OpenStream(p, raw)
	if err != nil {
		return nil, fmt.Errorf("opening input stream on %q: %w", dev.Name, err)
	}
	return newSource(st, raw, channels, rate), nil
}

func newSource(s stream, raw []float32, channels, rate int) *Source {
	return &Source{
		s:          s,
		raw:        raw,
		channels:   channels,
		sampleRate: rate,
	}
}

// SampleRate returns the capture rate in Hz.
func (s *Source) SampleRate() int {
	return s.sampleRate
}

// Overflows returns how many device buffers were overrun so far.
func (s *Source) Overflows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overflows
}

// ReadSamples blocks until device audio is available and copies up to
// len(dst) first-channel samples into dst. The stream starts on first use.
func (s *Source) ReadSamples(ctx context.Context, dst []float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errors.New("capture source closed")
	}
	if !s.started {
		if err := s.s.Start(); err != nil {
			return 0, fmt.Errorf("starting input stream: %w", err)
		}
		s.started = true
	}

	for len(s.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := s.s.Read(); err != nil {
			if !errors.Is(err, portaudio.InputOverflowed) {
				return 0, fmt.Errorf("reading input stream: %w", err)
			}
			s.overflows++
		}
		s.pending = audio.AppendFirstChannel32(s.pending[:0], s.raw, s.channels)
	}

	n := copy(dst, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Close stops the stream and releases the device.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.started {
		errs = append(errs, s.s.Stop())
	}
	errs = append(errs, s.s.Close())
	if _, ok := s.s.(*portaudio.Stream); ok {
		errs = append(errs, portaudio.Terminate())
	}
	return errors.Join(errs...)
}
