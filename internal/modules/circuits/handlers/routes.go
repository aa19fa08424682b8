package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all circuit routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/circuits", func(r chi.Router) {
		r.Post("/ising", h.HandleBuildIsing)
	})
}
