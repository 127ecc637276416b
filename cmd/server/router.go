package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rotekit/rote/internal/api"
	apiMiddleware "github.com/rotekit/rote/internal/api/middleware"
	"github.com/rotekit/rote/internal/service/collection"
)

// newRouter configures the application router with all routes and
// middleware.
func newRouter(svc *collection.Service, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	cardHandler := api.NewCardHandler(svc, log)
	noteHandler := api.NewNoteHandler(svc, log)
	deckHandler := api.NewDeckHandler(svc, log)
	searchHandler := api.NewSearchHandler(svc, log)

	r.Route("/api", func(r chi.Router) {
		// Card endpoints
		r.Get("/cards/{id}", cardHandler.GetCard)
		r.Post("/cards/{id}/answer", cardHandler.Answer)
		r.Post("/cards/{id}/schedule", cardHandler.Schedule)
		r.Post("/cards/bury", cardHandler.Bury)
		r.Post("/cards/suspend", cardHandler.Suspend)
		r.Post("/cards/restore", cardHandler.Restore)
		r.Post("/cards/forget", cardHandler.Forget)
		r.Post("/cards/flag", cardHandler.SetFlag)
		r.Post("/cards/move", cardHandler.Move)
		r.Post("/cards/delete", cardHandler.Delete)

		// Note endpoints
		r.Post("/notes", noteHandler.AddNote)
		r.Get("/notes/{id}", noteHandler.GetNote)
		r.Patch("/notes/{id}", noteHandler.UpdateNote)

		// Deck endpoints
		r.Get("/decks", deckHandler.ListDecks)
		r.Post("/decks", deckHandler.CreateDeck)
		r.Get("/decks/{id}", deckHandler.GetDeck)
		r.Delete("/decks/{id}", deckHandler.DeleteDeck)

		// Notetype endpoints
		r.Get("/notetypes", deckHandler.ListNotetypes)
		r.Post("/notetypes", deckHandler.CreateNotetype)

		// Search endpoint
		r.Post("/search", searchHandler.Search)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
