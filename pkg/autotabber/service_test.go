package autotabber

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/AutoTabber/internal/audio"
	"github.com/himanishpuri/AutoTabber/internal/export"
)

func newTestService(t *testing.T, opts ...Option) Service {
	t.Helper()
	dir := t.TempDir()
	base := []Option{
		WithLogger(quietLogger()),
		WithDBPath(filepath.Join(dir, "history.sqlite3")),
		WithTempDir(dir),
	}
	svc, err := NewService(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func writeWAV(t *testing.T, samples []float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "take.wav")
	require.NoError(t, audio.WriteWAVFile(path, samples, testRate))
	return path
}

func TestTranscribeFileSavesRecording(t *testing.T) {
	svc := newTestService(t, WithKey("G"))
	path := writeWAV(t, concat(tone(middleC, 6), silence(6), tone(392, 6)))

	var sb strings.Builder
	res, err := svc.TranscribeFile(context.Background(), path, NewWriterSink(&sb))
	require.NoError(t, err)

	assert.Equal(t, sb.String(), res.Text)
	assert.Equal(t, "-2'' 4 ", res.Text)
	assert.Equal(t, int64(18), res.Frames)
	assert.Equal(t, testRate, res.SampleRate)
	require.NotEmpty(t, res.RecordingID)

	rec, err := svc.GetRecording(res.RecordingID)
	require.NoError(t, err)
	assert.Equal(t, path, rec.Source)
	assert.Equal(t, "G", rec.Settings.Key)
	assert.Equal(t, res.Text, rec.Text)
	assert.Equal(t, 2, rec.NoteCount)
	require.Len(t, rec.Notes, 2)
	assert.Equal(t, uint8(60), rec.Notes[0].MIDI)
	assert.Equal(t, uint8(67), rec.Notes[1].MIDI)
	assert.Equal(t, "4", rec.Notes[1].Symbol)

	list, err := svc.ListRecordings()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteRecording(res.RecordingID))
	_, err = svc.GetRecording(res.RecordingID)
	assert.ErrorIs(t, err, ErrRecordingNotFound)
}

func TestTranscribeWithoutHistory(t *testing.T) {
	svc, err := NewService(WithLogger(quietLogger()))
	require.NoError(t, err)
	defer svc.Close()

	res, err := svc.TranscribeSource(context.Background(), audio.NewSliceSource(tone(middleC, 4), testRate), "memory", nil)
	require.NoError(t, err)
	assert.Equal(t, "1 ", res.Text)
	assert.Empty(t, res.RecordingID)

	_, err = svc.ListRecordings()
	assert.ErrorIs(t, err, ErrNoStorage)
}

func TestSaveRecordingsDisabled(t *testing.T) {
	svc := newTestService(t, WithSaveRecordings(false))

	res, err := svc.TranscribeSource(context.Background(), audio.NewSliceSource(tone(middleC, 4), testRate), "memory", nil)
	require.NoError(t, err)
	assert.Empty(t, res.RecordingID)

	list, err := svc.ListRecordings()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNewServiceRejectsInvalidKey(t *testing.T) {
	_, err := NewService(WithKey("Z"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestTranscribeMissingFile(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.TranscribeFile(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), nil)
	assert.Error(t, err)
}

// liveSource plays samples and then waits for cancellation like a
// microphone in a quiet room.
type liveSource struct {
	*audio.SliceSource
	closed bool
}

func (l *liveSource) ReadSamples(ctx context.Context, dst []float64) (int, error) {
	n, err := l.SliceSource.ReadSamples(ctx, dst)
	if errors.Is(err, io.EOF) {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return n, err
}

func (l *liveSource) Close() error {
	l.closed = true
	return nil
}

func TestListenUntilCancelled(t *testing.T) {
	mic := &liveSource{SliceSource: audio.NewSliceSource(tone(middleC, 4), testRate)}
	recordTo := filepath.Join(t.TempDir(), "live.wav")

	svc := newTestService(t,
		WithMicrophone(func(int) (SampleSource, error) { return mic, nil }),
		WithRecordTo(recordTo),
		WithOverflow(OverflowDrop),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := SinkFunc(func(f Fragment) error {
		if f.IsNote() {
			cancel()
		}
		return nil
	})

	res, err := svc.Listen(ctx, sink)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, "1 ", res.Text)
	assert.NotEmpty(t, res.RecordingID)
	assert.True(t, mic.closed)

	src, err := audio.OpenWAV(recordTo)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, testRate, src.SampleRate())
}

func TestListenMicrophoneError(t *testing.T) {
	boom := errors.New("no input device")
	svc := newTestService(t, WithMicrophone(func(int) (SampleSource, error) { return nil, boom }))

	_, err := svc.Listen(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestMeasureVolume(t *testing.T) {
	svc := newTestService(t)
	src := audio.NewSliceSource(concat(silence(2), tone(middleC, 3)), testRate)

	var readings []VolumeReading
	sum, err := svc.MeasureVolume(context.Background(), src, func(r VolumeReading) {
		readings = append(readings, r)
	})
	require.NoError(t, err)

	require.Len(t, readings, 5)
	assert.Equal(t, int64(5), sum.Frames)
	assert.Zero(t, sum.Min)
	assert.True(t, readings[0].Gated)
	assert.False(t, readings[4].Gated)
	assert.Greater(t, sum.Peak, 100.0)
	assert.InDelta(t, readings[4].Mean, sum.Mean, 1e-9)
	assert.Equal(t, int64(4), readings[4].Frame)
}

func TestMIDISinkCollectsNotes(t *testing.T) {
	w := export.NewMIDIWriter()
	svc := newTestService(t, WithSaveRecordings(false))

	samples := concat(tone(middleC, 4), silence(4), tone(440, 4))
	_, err := svc.TranscribeSource(context.Background(), audio.NewSliceSource(samples, testRate), "memory", MIDISink{W: w})
	require.NoError(t, err)
	assert.Equal(t, 2, w.Len())
}

func TestMultiSinkStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	m := MultiSink{
		SinkFunc(func(Fragment) error { calls++; return boom }),
		SinkFunc(func(Fragment) error { calls++; return nil }),
	}
	assert.ErrorIs(t, m.WriteFragment(Fragment{}), boom)
	assert.Equal(t, 1, calls)
}

func TestChanSink(t *testing.T) {
	ch := make(chan Fragment, 1)
	done := make(chan struct{})
	s := ChanSink{C: ch, Done: done}

	require.NoError(t, s.WriteFragment(Fragment{}))
	close(done)
	assert.ErrorIs(t, s.WriteFragment(Fragment{}), ErrSinkClosed)
}
