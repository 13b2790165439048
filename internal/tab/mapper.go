package tab

import "math"

// rootMIDI is the MIDI number of hole 1 blow on a C harmonica (C4).
const rootMIDI = 60

// symbols lists the playable notes of a ten hole diatonic in key C, one entry
// per semitone starting at hole 1 blow. A leading '-' marks a draw note, each
// "'" a half step of bend and a trailing 'o' an overblow or overdraw.
var symbols = [...]string{
	"1", "-1'", "-1", "1o", "2", "-2''", "-2'", "-2", "-3'''", "-3''", "-3'", "-3",
	"4", "-4'", "-4", "4o", "5", "-5", "5o", "6", "-6'", "-6", "6o", "-7",
	"7", "-7o", "-8", "8'", "8", "-9", "9'", "9", "-9o", "-10", "10''", "10'",
	"10",
}

// NumSymbols is the size of the symbol table.
const NumSymbols = len(symbols)

// MIDI converts a frequency in Hz to the nearest equal tempered MIDI note
// number (A4 = 440 Hz = 69). The result is clamped to the MIDI range; freq
// must be positive.
func MIDI(freq float64) uint8 {
	n := math.Round(12*math.Log2(freq/440) + 69)
	switch {
	case math.IsNaN(n) || n < 0:
		return 0
	case n > 127:
		return 127
	}
	return uint8(n)
}

// Frequency returns the equal tempered frequency of a MIDI note.
func Frequency(midi uint8) float64 {
	return 440 * math.Pow(2, (float64(midi)-69)/12)
}

// Index returns the table position of midi on a harmonica in key k. The
// second result is false when the note is outside the instrument's range.
func Index(midi uint8, k Key) (int, bool) {
	idx := int(midi) - rootMIDI - k.Offset()
	if idx < 0 || idx >= NumSymbols {
		return idx, false
	}
	return idx, true
}

// Symbol returns the tab symbol for midi on a harmonica in key k, or "" when
// the instrument cannot play that note.
func Symbol(midi uint8, k Key) string {
	idx, ok := Index(midi, k)
	if !ok {
		return ""
	}
	return symbols[idx]
}

// Symbols returns a copy of the key C symbol table.
func Symbols() []string {
	out := make([]string, NumSymbols)
	copy(out, symbols[:])
	return out
}
