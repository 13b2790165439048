package autotabber

import (
	"context"

	"github.com/himanishpuri/AutoTabber/pkg/models"
)

// SampleSource delivers mono samples. ReadSamples returns io.EOF once the
// stream has ended; a source may return n > 0 together with io.EOF.
type SampleSource interface {
	SampleRate() int
	ReadSamples(ctx context.Context, dst []float64) (int, error)
	Close() error
}

// Sink receives output fragments in emission order.
type Sink interface {
	WriteFragment(f Fragment) error
}

// MicrophoneOpener opens a live input at the requested rate; 0 means the
// device default.
type MicrophoneOpener func(sampleRate int) (SampleSource, error)

type Service interface {
	TranscribeFile(ctx context.Context, path string, sink Sink) (*Result, error)
	TranscribeSource(ctx context.Context, src SampleSource, label string, sink Sink) (*Result, error)
	Listen(ctx context.Context, sink Sink) (*Result, error)
	MeasureVolume(ctx context.Context, src SampleSource, fn func(VolumeReading)) (VolumeSummary, error)
	ListRecordings() ([]models.Recording, error)
	GetRecording(id string) (*models.Recording, error)
	DeleteRecording(id string) error
	Close() error
}

type Storage interface {
	SaveRecording(rec models.Recording) (string, error)
	GetRecording(id string) (*models.Recording, error)
	ListRecordings() ([]models.Recording, error)
	DeleteRecording(id string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
