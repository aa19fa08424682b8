package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all job routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/jobs", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)

		r.Post("/batch", h.HandleCreateBatch)
		r.Get("/batch/{groupID}", h.HandleGetGroup)
		r.Get("/batch/{groupID}/frontier", h.HandleGetFrontier)

		r.Get("/{id}", h.HandleGet)
		r.Get("/{id}/results", h.HandleGetResults)
		r.Post("/{id}/cancel", h.HandleCancel)
		r.Post("/{id}/poll", h.HandlePoll)
	})
}
