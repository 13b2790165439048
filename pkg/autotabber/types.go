package autotabber

import (
	"github.com/himanishpuri/AutoTabber/internal/debounce"
	"github.com/himanishpuri/AutoTabber/pkg/models"
)

type Kind = debounce.Kind

const (
	KindNote  = debounce.KindNote
	KindBreak = debounce.KindBreak
)

// Fragment is one unit of output together with where it came from.
type Fragment struct {
	debounce.Fragment
	MIDI  uint8 // note number of Symbol; 0 for breaks and silence
	Frame int64 // index of the frame that produced the fragment
}

// IsNote reports whether f carries a non-empty tab symbol.
func (f Fragment) IsNote() bool {
	return f.Kind == KindNote && f.Symbol != ""
}

// Result summarises a finished session.
type Result struct {
	RecordingID string // empty when the run was not saved
	Source      string
	SampleRate  int
	Text        string
	Notes       []models.Note
	Frames      int64
	Dropped     int64
}

// Stats are counters kept by a running session.
type Stats struct {
	Frames   int64 // frames analysed
	Detected int64 // frames that mapped to a tab symbol
	Emitted  int64 // note fragments written
	Dropped  int64 // frames discarded by OverflowDrop
}

// VolumeReading is the loudness of one frame.
type VolumeReading struct {
	Frame  int64
	Volume float64
	Peak   float64 // loudest frame so far
	Mean   float64 // running mean
	Gated  bool    // at or below the configured min volume
}

// VolumeSummary is the outcome of a volume measurement.
type VolumeSummary struct {
	Frames int64
	Peak   float64
	Mean   float64
	Min    float64
}
