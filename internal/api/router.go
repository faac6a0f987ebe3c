package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/halloran/medkit/internal/cardservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// throttle, when positive, caps concurrently processed requests.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group;
// events, if non-nil, is notified after each successful card mutation.
func NewRouter(svc *cardservice.Service, authEnabled bool, token string, throttle int, sseHandler http.Handler, events EventPublisher) chi.Router {
	h := NewHandler(svc, events)

	r := chi.NewRouter()
	if throttle > 0 {
		r.Use(middleware.Throttle(throttle))
	}
	r.Use(AuthMiddleware(authEnabled, token))

	// Cards CRUD.
	r.Get("/cards", h.ListCards)
	r.Post("/cards", h.CreateCard)
	r.Get("/cards/{id}", h.GetCard)
	r.Put("/cards/{id}", h.UpdateCard)
	r.Delete("/cards/{id}", h.DeleteCard)

	// Search and chapter summary.
	r.Get("/search", h.Search)
	r.Get("/chapters", h.Chapters)

	// Study flow.
	r.Post("/session", h.BuildSession)
	r.Post("/cards/{id}/review", h.RecordReview)
	r.Get("/due", h.DueCards)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
