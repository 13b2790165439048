package audio

import (
	"context"
	"io"
)

// SliceSource serves samples already held in memory.
type SliceSource struct {
	samples    []float64
	sampleRate int
	pos        int
}

// NewSliceSource creates a source over mono samples.
func NewSliceSource(samples []float64, sampleRate int) *SliceSource {
	return &SliceSource{samples: samples, sampleRate: sampleRate}
}

// SampleRate returns the declared sample rate in Hz.
func (s *SliceSource) SampleRate() int {
	return s.sampleRate
}

// ReadSamples copies the next samples into dst. It returns io.EOF once every
// sample has been read.
func (s *SliceSource) ReadSamples(ctx context.Context, dst []float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}
	n := copy(dst, s.samples[s.pos:])
	s.pos += n
	return n, nil
}

// Close implements the source interface; there is nothing to release.
func (s *SliceSource) Close() error {
	return nil
}
