// Package api provides the HTTP handlers backed by the signscribe store.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/signscribe/internal/store"
)

// TranscriptHandler handles HTTP requests for spoken transcripts.
type TranscriptHandler struct {
	store *store.Store
}

// NewTranscriptHandler creates a new TranscriptHandler with the given store.
func NewTranscriptHandler(s *store.Store) *TranscriptHandler {
	return &TranscriptHandler{store: s}
}

// ServeHTTP routes /api/transcripts and /api/transcripts/{id}.
func (h *TranscriptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/transcripts")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.clear(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type transcriptResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type listTranscriptsResponse struct {
	Transcripts []transcriptResponse `json:"transcripts"`
}

type clearResponse struct {
	Deleted int64 `json:"deleted"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(t *store.Transcript) transcriptResponse {
	return transcriptResponse{
		ID:        t.ID,
		SessionID: t.SessionID,
		Text:      t.Text,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/transcripts?limit=N, newest first.
func (h *TranscriptHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	transcripts, err := h.store.Transcripts().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transcripts")
		return
	}

	response := listTranscriptsResponse{
		Transcripts: make([]transcriptResponse, 0, len(transcripts)),
	}
	for _, t := range transcripts {
		response.Transcripts = append(response.Transcripts, toResponse(t))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/transcripts/{id}.
func (h *TranscriptHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	t, err := h.store.Transcripts().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Transcript not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get transcript")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(t))
}

// delete handles DELETE /api/transcripts/{id}.
func (h *TranscriptHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Transcripts().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Transcript not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete transcript")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// clear handles DELETE /api/transcripts.
func (h *TranscriptHandler) clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Transcripts().Clear()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear transcripts")
		return
	}

	writeJSON(w, http.StatusOK, clearResponse{Deleted: n})
}
