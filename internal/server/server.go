// Package server provides the HTTP display surface for signscribe.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/signscribe/internal/app"
	"github.com/ayusman/signscribe/internal/server/api"
	"github.com/ayusman/signscribe/internal/speech"
	"github.com/ayusman/signscribe/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Controller is the part of the application the server drives.
type Controller interface {
	Snapshot() app.Snapshot
	Subscribe() (<-chan app.Snapshot, func())
	ApplySuggestion(i int) error
	Clear()
	Speak() error
	SetEnabled(enabled bool) error
	IsEnabled() bool
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       Controller
	Logger    zerolog.Logger
}

// Server represents the HTTP server for the signscribe application.
type Server struct {
	config Config
	mux    *http.ServeMux
	logger zerolog.Logger
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		logger: config.Logger.With().Str("component", "server").Logger(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())

	if s.config.Store != nil {
		transcripts := api.NewTranscriptHandler(s.config.Store)
		s.mux.Handle("/api/transcripts", transcripts)
		s.mux.Handle("/api/transcripts/", transcripts)

		words := api.NewWordHandler(s.config.Store)
		s.mux.Handle("/api/words", words)
		s.mux.Handle("/api/words/", words)
	}

	if s.config.App != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.HandleFunc("/api/clear", s.handleClear)
		s.mux.HandleFunc("/api/speak", s.handleSpeak)
		s.mux.HandleFunc("/api/enabled", s.handleEnabled)
		s.mux.HandleFunc("/api/suggestions/", s.handleSuggestion)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App))
		s.mux.Handle("/api/ws", NewSnapshotSocket(s.config.App, s.logger))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleState handles GET /api/state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.config.App.Snapshot())
}

// handleClear handles POST /api/clear.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.config.App.Clear()
	writeJSON(w, http.StatusOK, s.config.App.Snapshot())
}

// handleSpeak handles POST /api/speak. Speech runs in the background, so a
// started utterance answers 202.
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.config.App.Speak(); err != nil {
		if errors.Is(err, speech.ErrNothingToSpeak) {
			writeError(w, http.StatusUnprocessableEntity, speech.StatusEmpty)
			return
		}
		s.logger.Warn().Err(err).Msg("speak failed")
		writeError(w, http.StatusInternalServerError, "Failed to start speech")
		return
	}

	writeJSON(w, http.StatusAccepted, s.config.App.Snapshot())
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleEnabled handles GET and PUT /api/enabled.
func (s *Server) handleEnabled(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req enabledRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := s.config.App.SetEnabled(*req.Enabled); err != nil {
			s.logger.Warn().Err(err).Msg("set enabled failed")
			writeError(w, http.StatusInternalServerError, "Failed to save setting")
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"enabled": s.config.App.IsEnabled()})
}

// handleSuggestion handles POST /api/suggestions/{slot}.
func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slot, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/suggestions/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid suggestion slot")
		return
	}

	if err := s.config.App.ApplySuggestion(slot); err != nil {
		if errors.Is(err, app.ErrInvalidSuggestion) {
			writeError(w, http.StatusNotFound, "No suggestion in that slot")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to apply suggestion")
		return
	}

	writeJSON(w, http.StatusOK, s.config.App.Snapshot())
}

// HTTPServer returns an http.Server for addr, for callers that need a
// graceful shutdown.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
