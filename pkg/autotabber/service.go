package autotabber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/himanishpuri/AutoTabber/internal/audio"
	"github.com/himanishpuri/AutoTabber/internal/pitch"
	"github.com/himanishpuri/AutoTabber/internal/tab"
	"github.com/himanishpuri/AutoTabber/pkg/logger"
	"github.com/himanishpuri/AutoTabber/pkg/models"
)

// ErrNoStorage is returned by recording operations when history is disabled.
var ErrNoStorage = errors.New("recording history is not configured")

// ErrRecordingNotFound is returned when no recording has the requested ID.
var ErrRecordingNotFound = models.ErrRecordingNotFound

const microphoneLabel = "microphone"

// tabService is the default implementation of the Service interface.
type tabService struct {
	storage Storage
	log     Logger
	config  *Config
	key     tab.Key
}

func NewService(opts ...Option) (Service, error) {
	cfg, key, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.Microphone == nil {
		cfg.Microphone = OpenMicrophone
	}

	stor := cfg.Storage
	if stor == nil && cfg.DBPath != "" {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &tabService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
		key:     key,
	}, nil
}

// TranscribeFile transcribes a recording on disk. WAV files are decoded
// directly; anything else goes through ffmpeg first.
func (s *tabService) TranscribeFile(ctx context.Context, path string, sink Sink) (*Result, error) {
	s.log.Infof("Transcribing %s in key %s", path, s.key)

	src, cleanup, err := audio.OpenRecording(ctx, path, s.config.TempDir)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	defer src.Close()

	s.log.Debugf("%s: %d Hz, %d channel(s), %d-bit", path, src.SampleRate(), src.Channels(), src.BitDepth())
	return s.TranscribeSource(ctx, src, path, sink)
}

// TranscribeSource runs a session over src and saves the result when
// history is enabled. The caller keeps ownership of src.
func (s *tabService) TranscribeSource(ctx context.Context, src SampleSource, label string, sink Sink) (*Result, error) {
	sess := newSession(s.config, s.key)
	rec := NewRecordingSink()

	runErr := sess.Run(ctx, src, MultiSink{sink, rec})
	stats := sess.Stats()

	res := &Result{
		Source:     label,
		SampleRate: src.SampleRate(),
		Text:       rec.Text(),
		Notes:      rec.Notes(),
		Frames:     stats.Frames,
		Dropped:    stats.Dropped,
	}

	// A cancelled live session is a normal way to stop listening.
	stopped := errors.Is(runErr, context.Canceled)
	if runErr != nil && !stopped {
		return res, runErr
	}

	s.log.Infof("Emitted %d notes from %d frames", len(res.Notes), res.Frames)

	if s.storage != nil && s.config.SaveRecordings {
		id, err := s.storage.SaveRecording(s.recording(res))
		if err != nil {
			return res, fmt.Errorf("failed to save recording: %w", err)
		}
		res.RecordingID = id
		s.log.Infof("Saved recording ID=%s", id)
	}

	return res, runErr
}

// Listen transcribes the microphone until ctx is cancelled. Cancellation is
// reported as context.Canceled together with the result so far.
func (s *tabService) Listen(ctx context.Context, sink Sink) (*Result, error) {
	mic, err := s.config.Microphone(s.config.CaptureRate)
	if err != nil {
		return nil, fmt.Errorf("failed to open microphone: %w", err)
	}

	var src SampleSource = mic
	if s.config.RecordTo != "" {
		tee, err := audio.NewTeeSource(mic, s.config.RecordTo)
		if err != nil {
			mic.Close()
			return nil, fmt.Errorf("failed to create %s: %w", s.config.RecordTo, err)
		}
		src = tee
		s.log.Infof("Recording input to %s", s.config.RecordTo)
	}
	defer func() {
		if err := src.Close(); err != nil {
			s.log.Warnf("Closing input: %v", err)
		}
	}()

	s.log.Infof("Listening at %d Hz in key %s", src.SampleRate(), s.key)
	return s.TranscribeSource(ctx, src, microphoneLabel, sink)
}

// MeasureVolume reports the loudness of every frame of src, which helps
// choose a min volume above the background noise.
func (s *tabService) MeasureVolume(ctx context.Context, src SampleSource, fn func(VolumeReading)) (VolumeSummary, error) {
	return measureVolume(ctx, src, s.config.FrameSize, s.config.MinVolume, fn)
}

func measureVolume(ctx context.Context, src SampleSource, frameSize int, gate float64, fn func(VolumeReading)) (VolumeSummary, error) {
	var (
		sum     float64
		summary = VolumeSummary{Min: math.Inf(1)}
		buf     = make([]float64, frameSize)
		asm     = audio.NewFrameAssembler(frameSize)
	)

	for {
		n, err := src.ReadSamples(ctx, buf)
		asm.PushAll(buf[:n], func(f audio.Frame) {
			v := pitch.Volume(f)
			sum += v
			summary.Frames++
			summary.Peak = math.Max(summary.Peak, v)
			summary.Min = math.Min(summary.Min, v)
			summary.Mean = sum / float64(summary.Frames)
			if fn != nil {
				fn(VolumeReading{
					Frame:  summary.Frames - 1,
					Volume: v,
					Peak:   summary.Peak,
					Mean:   summary.Mean,
					Gated:  v <= gate,
				})
			}
		})

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return summary, fmt.Errorf("reading samples: %w", err)
		}
	}

	if summary.Frames == 0 {
		summary.Min = 0
	}
	return summary, ctx.Err()
}

func (s *tabService) ListRecordings() ([]models.Recording, error) {
	if s.storage == nil {
		return nil, ErrNoStorage
	}
	return s.storage.ListRecordings()
}

func (s *tabService) GetRecording(id string) (*models.Recording, error) {
	if s.storage == nil {
		return nil, ErrNoStorage
	}
	return s.storage.GetRecording(id)
}

func (s *tabService) DeleteRecording(id string) error {
	if s.storage == nil {
		return ErrNoStorage
	}
	return s.storage.DeleteRecording(id)
}

func (s *tabService) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}

func (s *tabService) recording(res *Result) models.Recording {
	return models.Recording{
		Source: res.Source,
		Settings: models.Settings{
			Key:        s.key.String(),
			FrameSize:  s.config.FrameSize,
			MinCount:   s.config.MinCount,
			MinVolume:  s.config.MinVolume,
			Full:       s.config.Full,
			SampleRate: res.SampleRate,
		},
		Text:      res.Text,
		NoteCount: len(res.Notes),
		Notes:     res.Notes,
	}
}
