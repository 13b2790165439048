package autotabber

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/himanishpuri/AutoTabber/internal/export"
	"github.com/himanishpuri/AutoTabber/pkg/models"
)

// ErrSinkClosed is returned by a ChanSink whose done channel is closed.
var ErrSinkClosed = errors.New("sink closed")

// WriterSink writes fragment text to an io.Writer. Writers with a Flush
// method are flushed after every fragment so notes appear as they are
// played.
type WriterSink struct {
	w io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteFragment(f Fragment) error {
	if _, err := io.WriteString(s.w, f.Text()); err != nil {
		return err
	}
	if fl, ok := s.w.(interface{ Flush() error }); ok {
		return fl.Flush()
	}
	return nil
}

// ChanSink sends fragments to a channel. Sends block until received or
// until done is closed.
type ChanSink struct {
	C    chan<- Fragment
	Done <-chan struct{}
}

func (s ChanSink) WriteFragment(f Fragment) error {
	select {
	case s.C <- f:
		return nil
	case <-s.Done:
		return ErrSinkClosed
	}
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Fragment) error

func (fn SinkFunc) WriteFragment(f Fragment) error {
	return fn(f)
}

// MultiSink writes every fragment to each sink in turn and stops at the
// first error.
type MultiSink []Sink

func (m MultiSink) WriteFragment(f Fragment) error {
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.WriteFragment(f); err != nil {
			return err
		}
	}
	return nil
}

// MIDISink feeds emitted notes into a MIDI writer. Silent frames in full
// mode become rests; line breaks are ignored.
type MIDISink struct {
	W *export.MIDIWriter
}

func (s MIDISink) WriteFragment(f Fragment) error {
	switch {
	case f.IsNote():
		s.W.AddNote(f.MIDI)
	case f.Kind == KindNote:
		s.W.AddRest()
	}
	return nil
}

// RecordingSink accumulates the text and notes of a run so it can be
// stored as a recording.
type RecordingSink struct {
	mu    sync.Mutex
	text  strings.Builder
	notes []models.Note
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) WriteFragment(f Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text.WriteString(f.Text())
	if f.IsNote() {
		s.notes = append(s.notes, models.Note{
			Seq:    len(s.notes),
			Symbol: f.Symbol,
			MIDI:   f.MIDI,
			Frame:  f.Frame,
		})
	}
	return nil
}

// Text returns everything written so far.
func (s *RecordingSink) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String()
}

// Notes returns a copy of the emitted notes.
func (s *RecordingSink) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Note, len(s.notes))
	copy(out, s.notes)
	return out
}
