// Package httpapi exposes the playlist engine over HTTP. The caller's
// identity arrives in X-Account-Id / X-Account-Admin headers set by
// the upstream auth layer; this package trusts them the way the
// engine trusts its Account argument.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkobayashi/playdeck/deck"
	"github.com/mkobayashi/playdeck/playlist"
)

// Engine is the subset of the playlist engine the API needs.
type Engine interface {
	Add(ctx context.Context, deckID int, link string, account playlist.Account, force bool) (deck.QueueItem, error)
	Next(ctx context.Context, deckID int, id deck.ItemID) error
	Skip(ctx context.Context, deckID int, id deck.ItemID, account playlist.Account) error
	Queue(deckID int) ([]deck.QueueItem, error)
	Config(deckID int) (deck.Config, error)
	SetConfig(deckID int, cfg deck.Config) error
}

type Server struct {
	engine Engine
}

func NewServer(engine Engine) *Server {
	return &Server{engine: engine}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Route("/decks/{deck}", func(r chi.Router) {
		r.Get("/", s.handleGetDeck)
		r.Patch("/", s.handlePatchDeck)

		r.Get("/queue", s.handleGetQueue)
		r.Post("/queue", s.handleAdd)
		r.Post("/next", s.handleNext)
		r.Post("/skip", s.handleSkip)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "playdeck",
	})
}
