package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/planservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *planservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Gap views.
	r.Get("/overview", h.Overview)
	r.Get("/goals", h.Goals)
	r.Get("/candidates/{capID}/{skillID}", h.Candidates)
	r.Get("/roadmap/{capID}/{skillID}/{empID}", h.Roadmap)
	r.Get("/coverage/{skillID}", h.Coverage)

	// Reasoning-service steps.
	r.Post("/strategy/reformat", h.ReformatStrategy)
	r.Get("/ranking/pool", h.Pool)
	r.Post("/ranking", h.Rank)
	r.Post("/mapping", h.Mapping)

	// History.
	r.Get("/history/coverage/{capID}/{skillID}", h.CoverageHistory)
	r.Get("/history/revisions", h.Revisions)
	r.Get("/history/calls", h.Calls)

	// Data directory.
	r.Get("/files", h.Files)
	r.Post("/reload", h.Reload)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
