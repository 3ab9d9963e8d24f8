package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/decisionlog/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/{kind}/{number}", h.GetDocument)
	r.Get("/search", h.Search)
	r.Get("/artifacts/{name}", h.GetArtifact)
	r.Post("/regenerate", h.Regenerate)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
