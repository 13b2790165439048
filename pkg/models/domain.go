package models

import "time"

// Settings are the transcription parameters a recording was made with.
type Settings struct {
	Key        string  `json:"key"`
	FrameSize  int     `json:"frame_size"`
	MinCount   int     `json:"min_count"`
	MinVolume  float64 `json:"min_volume"`
	Full       bool    `json:"full"`
	SampleRate int     `json:"sample_rate"`
}

// Recording is one saved transcription run.
type Recording struct {
	ID        string    `json:"id"`     // UUID
	Source    string    `json:"source"` // file path, "microphone" or upload name
	Settings  Settings  `json:"settings"`
	Text      string    `json:"text"`       // rendered tablature
	NoteCount int       `json:"note_count"` // emitted notes, line breaks excluded
	CreatedAt time.Time `json:"created_at"`
	Notes     []Note    `json:"notes,omitempty"`
}

// Note is a single emitted tab symbol, in emission order.
type Note struct {
	Seq    int    `json:"seq"`
	Symbol string `json:"symbol"`
	MIDI   uint8  `json:"midi"`
	Frame  int64  `json:"frame"` // index of the frame that completed the run
}
