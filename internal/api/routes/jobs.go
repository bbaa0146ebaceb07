package routes

import (
	"github.com/go-chi/chi/v5"

	"Aviary/internal/api/handlers/jobs"
)

// JobRoutes returns the cron-invoked posting job routes.
// Mounted behind the trigger-token middleware.
func JobRoutes(h *jobs.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/art", h.HandleArt)
	r.Post("/quotes", h.HandleQuotes)
	r.Post("/cards", h.HandleCards)
	r.Post("/sync/artworks", h.HandleSyncArtworks)

	return r
}
