// Package export writes emitted tab notes to other formats.
package export

import (
	"fmt"
	"io"
	"os"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	DefaultBPM      = 120.0
	DefaultVelocity = 100
	trackName       = "autotabber"
)

type step struct {
	key  uint8
	rest uint32 // steps of silence before the note
}

// MIDIWriter collects notes and writes them as a Standard MIDI File. Note
// durations are not measured, so every note lasts one quarter note and every
// rest one quarter note.
type MIDIWriter struct {
	mu       sync.Mutex
	clock    smf.MetricTicks
	bpm      float64
	channel  uint8
	velocity uint8
	steps    []step
	rest     uint32
}

type MIDIOption func(*MIDIWriter)

func WithBPM(bpm float64) MIDIOption {
	return func(m *MIDIWriter) {
		if bpm > 0 {
			m.bpm = bpm
		}
	}
}

func WithChannel(ch uint8) MIDIOption {
	return func(m *MIDIWriter) {
		m.channel = ch & 0x0f
	}
}

func WithVelocity(v uint8) MIDIOption {
	return func(m *MIDIWriter) {
		if v > 0 && v < 128 {
			m.velocity = v
		}
	}
}

func NewMIDIWriter(opts ...MIDIOption) *MIDIWriter {
	m := &MIDIWriter{
		clock:    smf.MetricTicks(960),
		bpm:      DefaultBPM,
		velocity: DefaultVelocity,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddNote appends a note with the given MIDI key number.
func (m *MIDIWriter) AddNote(key uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step{key: key & 0x7f, rest: m.rest})
	m.rest = 0
}

// AddRest inserts one step of silence before the next note.
func (m *MIDIWriter) AddRest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rest++
}

// Len returns the number of notes collected.
func (m *MIDIWriter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.steps)
}

// StepTicks returns the length of one step in ticks.
func (m *MIDIWriter) StepTicks() uint32 {
	return m.clock.Ticks4th()
}

func (m *MIDIWriter) build() (*smf.SMF, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := smf.New()
	s.TimeFormat = m.clock

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(trackName))
	tr.Add(0, smf.MetaTempo(m.bpm))

	q := m.clock.Ticks4th()
	for _, st := range m.steps {
		tr.Add(st.rest*q, midi.NoteOn(m.channel, st.key, m.velocity))
		tr.Add(q, midi.NoteOff(m.channel, st.key))
	}
	tr.Close(m.rest * q)

	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("adding track: %w", err)
	}
	return s, nil
}

// WriteTo writes the collected notes as a Standard MIDI File.
func (m *MIDIWriter) WriteTo(w io.Writer) (int64, error) {
	s, err := m.build()
	if err != nil {
		return 0, err
	}
	return s.WriteTo(w)
}

// WriteFile writes the collected notes to path.
func (m *MIDIWriter) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := m.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
