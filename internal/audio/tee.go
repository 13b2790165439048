package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Source is the subset of a sample source that TeeSource wraps.
type Source interface {
	SampleRate() int
	ReadSamples(ctx context.Context, dst []float64) (int, error)
	Close() error
}

// TeeSource passes samples through from another source while saving a copy
// to a WAV file, so a live take can be transcribed again later.
type TeeSource struct {
	Source
	file *os.File
	w    *WAVWriter
}

// NewTeeSource wraps src and records everything read from it to path.
func NewTeeSource(src Source, path string) (*TeeSource, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &TeeSource{
		Source: src,
		file:   f,
		w:      NewWAVWriter(f, src.SampleRate()),
	}, nil
}

// ReadSamples reads from the wrapped source and records the samples.
func (t *TeeSource) ReadSamples(ctx context.Context, dst []float64) (int, error) {
	n, err := t.Source.ReadSamples(ctx, dst)
	if n > 0 {
		if werr := t.w.Write(dst[:n]); werr != nil {
			return n, fmt.Errorf("recording samples: %w", werr)
		}
	}
	return n, err
}

// Close finalises the WAV file and closes the wrapped source.
func (t *TeeSource) Close() error {
	return errors.Join(t.w.Close(), t.file.Close(), t.Source.Close())
}
