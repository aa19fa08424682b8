// Package handlers provides HTTP handlers for circuit construction.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/modules/circuits"
)

// Handler handles circuit HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new circuits handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "circuits").Logger(),
	}
}

// IsingRequest is the body for POST /api/circuits/ising
type IsingRequest struct {
	circuits.IsingModel
	IncludeGates bool `json:"include_gates,omitempty"`
}

// HandleBuildIsing handles POST /api/circuits/ising
func (h *Handler) HandleBuildIsing(w http.ResponseWriter, r *http.Request) {
	var req IsingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	circuit, err := circuits.GenerateIsing(req.IsingModel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := map[string]interface{}{
		"summary": circuit.Summarize(),
	}
	if req.IncludeGates {
		data["circuit"] = circuit
	}

	h.log.Info().
		Int("rows", req.Rows).
		Int("cols", req.Cols).
		Int("steps", req.Steps).
		Int("layers", circuit.LayerCount()).
		Int("gates", len(circuit.Gates)).
		Msg("Built Ising evolution circuit")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
