package tab

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKey is returned when a key name is not one of the supported tunings.
var ErrInvalidKey = errors.New("invalid key")

// Key is a harmonica tuning. Its offset is the semitone distance of the
// instrument's hole 1 blow note from C4.
type Key int

const (
	KeyC Key = iota
	KeyG
	KeyD
	KeyA
	KeyE
	KeyB
	KeyFSharp
	KeyDb
	KeyAb
	KeyEb
	KeyBb
	KeyF
	KeyLowF
	KeyLowC
	KeyLowD
	KeyHighG
	numKeys
)

type keyInfo struct {
	name   string
	offset int
}

var keyTable = [numKeys]keyInfo{
	KeyC:      {"C", 0},
	KeyG:      {"G", -5},
	KeyD:      {"D", 2},
	KeyA:      {"A", -3},
	KeyE:      {"E", 4},
	KeyB:      {"B", -1},
	KeyFSharp: {"F#", -6},
	KeyDb:     {"Db", 1},
	KeyAb:     {"Ab", -4},
	KeyEb:     {"Eb", 3},
	KeyBb:     {"Bb", -2},
	KeyF:      {"F", 5},
	KeyLowF:   {"LF", -7},
	KeyLowC:   {"LC", -12},
	KeyLowD:   {"LD", -10},
	KeyHighG:  {"HG", 7},
}

// Keys returns every supported key in canonical order.
func Keys() []Key {
	keys := make([]Key, numKeys)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// KeyNames returns the names accepted by ParseKey.
func KeyNames() []string {
	names := make([]string, numKeys)
	for i, info := range keyTable {
		names[i] = info.name
	}
	return names
}

// ParseKey looks up a key by name. Names are matched exactly, so "Bb" and
// "BB" are different; the only normalisation is surrounding whitespace.
func ParseKey(name string) (Key, error) {
	name = strings.TrimSpace(name)
	for i, info := range keyTable {
		if info.name == name {
			return Key(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q (available keys: %s)", ErrInvalidKey, name, strings.Join(KeyNames(), ", "))
}

// Valid reports whether k is one of the supported keys.
func (k Key) Valid() bool {
	return k >= 0 && k < numKeys
}

// Offset returns the semitone offset relative to the key of C.
func (k Key) Offset() int {
	if !k.Valid() {
		return 0
	}
	return keyTable[k].offset
}

func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyTable[k].name
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKey, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
