package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(h.recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/healthz", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/transmissions", h.handleListTransmissions)
		r.Post("/transmissions", h.handleCreateTransmission)
		r.Patch("/transmissions/{id}", h.handleUpdateStatus)
		r.Get("/audit-logs", h.handleListAuditLogs)
		r.Get("/keys", h.handleListKeyPairs)
		r.Get("/schema", h.handleGetSchema)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		h.respondWithError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		h.respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
