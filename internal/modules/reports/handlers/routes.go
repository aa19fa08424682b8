package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all report routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/jobs/{id}", h.HandleJobReport)
		r.Get("/batch/{groupID}", h.HandleGroupReport)
	})
}
