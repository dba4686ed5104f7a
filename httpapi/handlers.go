package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkobayashi/playdeck/deck"
	"github.com/mkobayashi/playdeck/playlist"
)

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	deckID, ok := deckParam(w, r)
	if !ok {
		return
	}
	account, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	var body struct {
		Link  string `json:"link"`
		Force bool   `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := s.engine.Add(r.Context(), deckID, body.Link, account, body.Force)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	deckID, ok := deckParam(w, r)
	if !ok {
		return
	}
	if _, ok := accountFromRequest(w, r); !ok {
		return
	}
	id, ok := itemIDFromBody(w, r)
	if !ok {
		return
	}

	if err := s.engine.Next(r.Context(), deckID, id); err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	deckID, ok := deckParam(w, r)
	if !ok {
		return
	}
	account, ok := accountFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := itemIDFromBody(w, r)
	if !ok {
		return
	}

	if err := s.engine.Skip(r.Context(), deckID, id, account); err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleGetQueue(w http.ResponseWriter, r *http.Request) {
	deckID, ok := deckParam(w, r)
	if !ok {
		return
	}

	items, err := s.engine.Queue(deckID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	if items == nil {
		items = []deck.QueueItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deck":  deckID,
		"queue": items,
	})
}

type deckConfigBody struct {
	WriteProtect         *bool `json:"writeProtect"`
	MaxAddCount          *int  `json:"maxAddCount"`
	MaxQueueSize         *int  `json:"maxQueueSize"`
	MaxSkipCount         *int  `json:"maxSkipCount"`
	SkipLimitTimeSeconds *int  `json:"skipLimitTimeSeconds"`
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := deckParam(w, r)
	if !ok {
		return
	}
	cfg, err := s.engine.Config(deckID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configResponse(deckID, cfg))
}

// handlePatchDeck updates deck settings. Admin only.
func (s *Server) handlePatchDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := deckParam(w, r)
	if !ok {
		return
	}
	account, ok := accountFromRequest(w, r)
	if !ok {
		return
	}
	if !account.Admin {
		writeError(w, http.StatusForbidden, "admin required")
		return
	}

	var body deckConfigBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cfg, err := s.engine.Config(deckID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	if body.WriteProtect != nil {
		cfg.WriteProtect = *body.WriteProtect
	}
	if body.MaxAddCount != nil {
		cfg.MaxAddCount = *body.MaxAddCount
	}
	if body.MaxQueueSize != nil {
		cfg.MaxQueueSize = *body.MaxQueueSize
	}
	if body.MaxSkipCount != nil {
		cfg.MaxSkipCount = *body.MaxSkipCount
	}
	if body.SkipLimitTimeSeconds != nil {
		cfg.SkipLimitTime = time.Duration(*body.SkipLimitTimeSeconds) * time.Second
	}
	if cfg.MaxAddCount < 0 || cfg.MaxQueueSize < 0 || cfg.MaxSkipCount < 0 || cfg.SkipLimitTime < 0 {
		writeError(w, http.StatusBadRequest, "settings must be non-negative")
		return
	}

	if err := s.engine.SetConfig(deckID, cfg); err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configResponse(deckID, cfg))
}

func configResponse(deckID int, cfg deck.Config) map[string]any {
	return map[string]any{
		"deck":                 deckID,
		"writeProtect":         cfg.WriteProtect,
		"maxAddCount":          cfg.MaxAddCount,
		"maxQueueSize":         cfg.MaxQueueSize,
		"maxSkipCount":         cfg.MaxSkipCount,
		"skipLimitTimeSeconds": int(cfg.SkipLimitTime / time.Second),
	}
}

func deckParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	deckID, err := strconv.Atoi(chi.URLParam(r, "deck"))
	if err != nil || deckID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid deck id")
		return 0, false
	}
	return deckID, true
}

func accountFromRequest(w http.ResponseWriter, r *http.Request) (playlist.Account, bool) {
	id := r.Header.Get("X-Account-Id")
	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing account context")
		return playlist.Account{}, false
	}
	admin := r.Header.Get("X-Account-Admin")
	return playlist.Account{
		ID:    id,
		Admin: admin == "true" || admin == "1",
	}, true
}

func itemIDFromBody(w http.ResponseWriter, r *http.Request) (deck.ItemID, bool) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return deck.ItemID{}, false
	}
	id, err := uuid.Parse(body.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return deck.ItemID{}, false
	}
	return id, true
}

func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, playlist.ErrMusicSourceNotFound):
		writeError(w, http.StatusUnprocessableEntity, "link does not resolve to playable media")
	case errors.Is(err, playlist.ErrPlaylistWriteProtection):
		writeError(w, http.StatusForbidden, "deck is write protected")
	case errors.Is(err, playlist.ErrPlayerControlLimit):
		writeError(w, http.StatusTooManyRequests, "player control limit reached")
	case errors.Is(err, playlist.ErrPlayerControlSkipLimitTime):
		writeError(w, http.StatusTooManyRequests, "skip limit time not reached")
	case errors.Is(err, playlist.ErrPlaylistSizeOver):
		writeError(w, http.StatusConflict, "queue is full")
	case errors.Is(err, playlist.ErrPlaylistItemNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, playlist.ErrDeckNotFound):
		writeError(w, http.StatusNotFound, "deck not found")
	default:
		slog.ErrorContext(r.Context(), "Unhandled engine error", slog.String("err", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Unable to encode response", slog.String("err", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
