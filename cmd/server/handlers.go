//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/himanishpuri/AutoTabber/internal/audio"
	"github.com/himanishpuri/AutoTabber/internal/export"
	"github.com/himanishpuri/AutoTabber/internal/tab"
	"github.com/himanishpuri/AutoTabber/pkg/autotabber"
	"github.com/himanishpuri/AutoTabber/pkg/logger"
	"github.com/himanishpuri/AutoTabber/pkg/utils"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service autotabber.Service
	storage autotabber.Storage
	config  *ServerConfig
	log     autotabber.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	AllowedOrigins []string
}

// sharedStorage keeps per-request services from closing the server's
// database.
type sharedStorage struct {
	autotabber.Storage
}

func (sharedStorage) Close() error { return nil }

// NewServer creates a new server instance. The server owns storage and
// closes it on Close.
func NewServer(storage autotabber.Storage, config *ServerConfig) (*Server, error) {
	svc, err := autotabber.NewService(autotabber.WithStorage(sharedStorage{storage}))
	if err != nil {
		return nil, err
	}
	return &Server{
		service: svc,
		storage: storage,
		config:  config,
		log:     logger.GetLogger(),
	}, nil
}

func (s *Server) Close() error {
	return s.storage.Close()
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "AutoTabber API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":          "GET /health",
			"keys":            "GET /api/keys",
			"transcribe":      "POST /api/transcribe",
			"recordings":      "GET /api/recordings",
			"getRecording":    "GET /api/recordings/{id}",
			"recordingMIDI":   "GET /api/recordings/{id}/midi",
			"deleteRecording": "DELETE /api/recordings/{id}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleKeys handles GET /api/keys
func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	keys := tab.Keys()
	dtos := make([]KeyDTO, len(keys))
	for i, k := range keys {
		dtos[i] = KeyDTO{
			Name:      k.String(),
			Offset:    k.Offset(),
			HoleOneHz: tab.Frequency(uint8(60 + k.Offset())),
		}
	}
	s.respondJSON(w, http.StatusOK, ListKeysResponse{
		Keys:    dtos,
		Count:   len(dtos),
		Symbols: tab.Symbols(),
	})
}

// transcribeOptions reads pipeline settings from form fields. Missing fields
// keep the library defaults.
func transcribeOptions(r *http.Request) ([]autotabber.Option, error) {
	var opts []autotabber.Option

	if v := r.FormValue("key"); v != "" {
		opts = append(opts, autotabber.WithKey(v))
	}
	ints := []struct {
		field string
		opt   func(int) autotabber.Option
	}{
		{"count", autotabber.WithMinCount},
		{"buffer_size", autotabber.WithFrameSize},
		{"line_width", autotabber.WithLineWidth},
	}
	for _, f := range ints {
		v := r.FormValue(f.field)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.field, err)
		}
		opts = append(opts, f.opt(n))
	}
	if v := r.FormValue("min_volume"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("min_volume: %w", err)
		}
		opts = append(opts, autotabber.WithMinVolume(f))
	}
	bools := []struct {
		field string
		opt   func(bool) autotabber.Option
	}{
		{"full", autotabber.WithFull},
		{"break_on_silence", autotabber.WithBreakOnSilence},
		{"save", autotabber.WithSaveRecordings},
	}
	for _, f := range bools {
		v := r.FormValue(f.field)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.field, err)
		}
		opts = append(opts, f.opt(b))
	}
	if v := r.FormValue("peak_order"); v != "" {
		o, err := autotabber.ParsePeakOrder(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, autotabber.WithPeakOrder(o))
	}
	return opts, nil
}

// handleTranscribe handles POST /api/transcribe (multipart file upload)
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	opts, err := transcribeOptions(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts = append(opts,
		autotabber.WithStorage(sharedStorage{s.storage}),
		autotabber.WithTempDir(s.config.TempDir),
	)
	svc, err := autotabber.NewService(opts...)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.log.Errorf("Failed to get audio file: %v", err)
		s.respondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	// Keep the extension so non-WAV uploads are routed through ffmpeg
	tempFile, err := utils.SaveTemp(s.config.TempDir, "upload", filepath.Ext(header.Filename), file)
	if err != nil {
		s.log.Errorf("Failed to save upload: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to save uploaded file")
		return
	}
	defer utils.DeleteFile(tempFile)

	src, cleanup, err := audio.OpenRecording(ctx, tempFile, s.config.TempDir)
	if err != nil {
		s.log.Errorf("Failed to decode %s: %v", header.Filename, err)
		s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to decode audio: %v", err))
		return
	}
	defer cleanup()
	defer src.Close()

	res, err := svc.TranscribeSource(ctx, src, header.Filename, nil)
	if err != nil {
		s.log.Errorf("Failed to transcribe %s: %v", header.Filename, err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to transcribe: %v", err))
		return
	}

	key := r.FormValue("key")
	if key == "" {
		key = tab.KeyC.String()
	}
	s.respondJSON(w, http.StatusOK, TranscribeResponse{
		RecordingID: res.RecordingID,
		Key:         key,
		SampleRate:  res.SampleRate,
		Frames:      res.Frames,
		Text:        res.Text,
		Notes:       res.Notes,
	})
}

// handleListRecordings handles GET /api/recordings
func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.ListRecordings()
	if err != nil {
		s.log.Errorf("Failed to list recordings: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve recordings")
		return
	}

	dtos := make([]RecordingDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = RecordingDTO{
			ID:        rec.ID,
			Source:    rec.Source,
			Key:       rec.Settings.Key,
			NoteCount: rec.NoteCount,
			CreatedAt: rec.CreatedAt,
		}
	}

	s.respondJSON(w, http.StatusOK, ListRecordingsResponse{
		Recordings: dtos,
		Count:      len(dtos),
	})
}

// handleGetRecording handles GET /api/recordings/{id}
func (s *Server) handleGetRecording(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.service.GetRecording(id)
	if err != nil {
		s.recordingError(w, id, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

// handleRecordingMIDI handles GET /api/recordings/{id}/midi
func (s *Server) handleRecordingMIDI(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.service.GetRecording(id)
	if err != nil {
		s.recordingError(w, id, err)
		return
	}

	mw := export.NewMIDIWriter()
	for _, n := range rec.Notes {
		mw.AddNote(n.MIDI)
	}

	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".mid"))
	if _, err := mw.WriteTo(w); err != nil {
		s.log.Errorf("Failed to write MIDI for %s: %v", id, err)
	}
}

// handleDeleteRecording handles DELETE /api/recordings/{id}
func (s *Server) handleDeleteRecording(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.service.DeleteRecording(id); err != nil {
		s.recordingError(w, id, err)
		return
	}

	s.log.Infof("Deleted recording %s", id)
	s.respondJSON(w, http.StatusOK, DeleteRecordingResponse{
		Message: "Recording deleted successfully",
		ID:      id,
	})
}

func (s *Server) recordingError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, autotabber.ErrRecordingNotFound) {
		s.log.Warnf("Recording not found: %s", id)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Recording with ID %s not found", id))
		return
	}
	s.log.Errorf("Recording %s: %v", id, err)
	s.respondError(w, http.StatusInternalServerError, "Failed to access recording")
}
