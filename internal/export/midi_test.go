package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

type noteEvent struct {
	key  uint8
	tick int64
	on   bool
}

func readNotes(t *testing.T, data []byte) []noteEvent {
	t.Helper()
	s, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)

	var out []noteEvent
	for _, track := range s.Tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)
			var ch, key, vel uint8
			switch {
			case ev.Message.GetNoteOn(&ch, &key, &vel):
				out = append(out, noteEvent{key: key, tick: abs, on: true})
			case ev.Message.GetNoteOff(&ch, &key, &vel):
				out = append(out, noteEvent{key: key, tick: abs})
			}
		}
	}
	return out
}

func TestMIDIWriterNotesAndRests(t *testing.T) {
	w := NewMIDIWriter()
	q := int64(w.StepTicks())

	w.AddNote(60)
	w.AddRest()
	w.AddNote(62)
	w.AddNote(64)
	assert.Equal(t, 3, w.Len())

	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)

	got := readNotes(t, buf.Bytes())
	want := []noteEvent{
		{60, 0, true}, {60, q, false},
		{62, 2 * q, true}, {62, 3 * q, false},
		{64, 3 * q, true}, {64, 4 * q, false},
	}
	assert.Equal(t, want, got)
}

func TestMIDIWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewMIDIWriter().WriteTo(&buf)
	require.NoError(t, err)
	assert.Empty(t, readNotes(t, buf.Bytes()))
}

func TestMIDIWriterWriteFileRepeatable(t *testing.T) {
	w := NewMIDIWriter(WithBPM(90), WithChannel(2), WithVelocity(80))
	w.AddNote(67)

	dir := t.TempDir()
	for _, name := range []string{"a.mid", "b.mid"} {
		require.NoError(t, w.WriteFile(filepath.Join(dir, name)))
	}

	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)
	assert.Len(t, readNotes(t, buf.Bytes()), 2)
}
