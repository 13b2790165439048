//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"time"

	"github.com/himanishpuri/AutoTabber/pkg/models"
)

// MaxUploadBytes bounds multipart uploads to POST /api/transcribe
const MaxUploadBytes = 100 << 20

// TranscribeResponse is the response for POST /api/transcribe
type TranscribeResponse struct {
	RecordingID string        `json:"recording_id,omitempty"`
	Key         string        `json:"key"`
	SampleRate  int           `json:"sample_rate"`
	Frames      int64         `json:"frames"`
	Text        string        `json:"text"`
	Notes       []models.Note `json:"notes"`
}

// KeyDTO describes one supported harmonica key
type KeyDTO struct {
	Name      string  `json:"name"`
	Offset    int     `json:"offset"`
	HoleOneHz float64 `json:"hole_one_hz"`
}

// ListKeysResponse is the response for GET /api/keys
type ListKeysResponse struct {
	Keys  []KeyDTO `json:"keys"`
	Count int      `json:"count"`
	// Symbols is the tab table from hole 1 blow upward, one per semitone
	Symbols []string `json:"symbols"`
}

// RecordingDTO represents a recording in list responses
type RecordingDTO struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Key       string    `json:"key"`
	NoteCount int       `json:"note_count"`
	CreatedAt time.Time `json:"created_at"`
}

// ListRecordingsResponse is the response for GET /api/recordings
type ListRecordingsResponse struct {
	Recordings []RecordingDTO `json:"recordings"`
	Count      int            `json:"count"`
}

// DeleteRecordingResponse is the response for DELETE /api/recordings/{id}
type DeleteRecordingResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
