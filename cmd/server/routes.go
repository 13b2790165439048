//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/himanishpuri/AutoTabber/pkg/logger"
)

// setupRoutes registers all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/", s.handleRoot).Methods("GET")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/keys", s.handleKeys).Methods("GET")
	api.HandleFunc("/transcribe", s.handleTranscribe).Methods("POST")
	api.HandleFunc("/recordings", s.handleListRecordings).Methods("GET")
	api.HandleFunc("/recordings/{id}", s.handleGetRecording).Methods("GET")
	api.HandleFunc("/recordings/{id}/midi", s.handleRecordingMIDI).Methods("GET")
	api.HandleFunc("/recordings/{id}", s.handleDeleteRecording).Methods("DELETE")

	router.Use(loggingMiddleware)

	return corsHandler(s.config.AllowedOrigins).Handler(router)
}

func corsHandler(allowedOrigins []string) *cors.Cors {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		MaxAge:           3600,
		AllowCredentials: true,
	})
}

// loggingMiddleware logs all HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		log := logger.GetLogger()
		log.Debugf("%s %s from %s", r.Method, r.URL.Path, getClientIP(r))

		next.ServeHTTP(wrapped, r)

		log.Infof("%s %s -> %d", r.Method, r.URL.Path, wrapped.statusCode)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// first hop is the client
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Start starts the HTTP server
func (s *Server) Start() error {
	handler := s.setupRoutes()

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Infof("🚀 AutoTabber server starting on %s", addr)
	s.log.Infof("   Database: %s", s.config.DBPath)
	s.log.Infof("   CORS Origins: %v", s.config.AllowedOrigins)
	s.log.Infof("Endpoints:")
	s.log.Infof("   GET    /health                     - Health check")
	s.log.Infof("   GET    /api/keys                   - Supported harmonica keys")
	s.log.Infof("   POST   /api/transcribe             - Transcribe an uploaded recording")
	s.log.Infof("   GET    /api/recordings             - List saved recordings")
	s.log.Infof("   GET    /api/recordings/{id}        - Get recording with notes")
	s.log.Infof("   GET    /api/recordings/{id}/midi   - Download recording as MIDI")
	s.log.Infof("   DELETE /api/recordings/{id}        - Delete recording")

	return http.ListenAndServe(addr, handler)
}
