package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/signscribe/internal/store"
	"github.com/ayusman/signscribe/internal/suggest"
)

// WordHandler exposes the suggestion dictionary.
type WordHandler struct {
	store *store.Store
}

// NewWordHandler creates a new WordHandler with the given store.
func NewWordHandler(s *store.Store) *WordHandler {
	return &WordHandler{store: s}
}

// ServeHTTP routes /api/words and /api/words/{word}.
func (h *WordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimPrefix(r.URL.Path, "/api/words")
	word = strings.TrimPrefix(word, "/")

	if word == "" {
		switch r.Method {
		case http.MethodGet:
			h.count(w, r)
		case http.MethodPost:
			h.add(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.check(w, r, word)
}

type addWordRequest struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}

type checkWordResponse struct {
	Word        string   `json:"word"`
	Valid       bool     `json:"valid"`
	Suggestions []string `json:"suggestions"`
}

type countResponse struct {
	Words int `json:"words"`
}

// count handles GET /api/words.
func (h *WordHandler) count(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Words().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count words")
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Words: n})
}

// add handles POST /api/words.
func (h *WordHandler) add(w http.ResponseWriter, r *http.Request) {
	var req addWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Word == "" {
		writeError(w, http.StatusBadRequest, "Word is required")
		return
	}
	if req.Frequency <= 0 {
		req.Frequency = 1
	}

	if err := h.store.Words().Add(req.Word, req.Frequency); err != nil {
		if errors.Is(err, store.ErrInvalidWord) {
			writeError(w, http.StatusBadRequest, "Word must contain only letters a-z")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to add word")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// check handles GET /api/words/{word}.
func (h *WordHandler) check(w http.ResponseWriter, r *http.Request, word string) {
	words := h.store.Words()
	lower := strings.ToLower(word)

	valid, err := words.Check(lower)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check word")
		return
	}

	response := checkWordResponse{Word: lower, Valid: valid, Suggestions: []string{}}
	if !valid {
		suggestions, err := words.Suggest(lower, suggest.Slots)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to suggest words")
			return
		}
		response.Suggestions = append(response.Suggestions, suggestions...)
	}

	writeJSON(w, http.StatusOK, response)
}
