package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all target profile routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/targets", func(r chi.Router) {
		r.Get("/", h.HandleListPresets)
		r.Post("/validate", h.HandleValidate)
		r.Get("/{name}", h.HandleGetPreset)
	})
}
