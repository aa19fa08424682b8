// Package handlers provides HTTP handlers for target profile operations.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/modules/targets"
)

// Handler handles target profile HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new targets handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "targets").Logger(),
	}
}

// HandleListPresets handles GET /api/targets
func (h *Handler) HandleListPresets(w http.ResponseWriter, r *http.Request) {
	names := targets.PresetNames()

	presets := make([]targets.TargetProfile, 0, len(names))
	for _, name := range names {
		profile, _ := targets.DefaultProfile(name)
		presets = append(presets, profile)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": presets,
		"metadata": map[string]interface{}{
			"count":     len(presets),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetPreset handles GET /api/targets/{name}
func (h *Handler) HandleGetPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	profile, ok := targets.DefaultProfile(name)
	if !ok {
		http.Error(w, "Unknown target preset", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": profile,
	})
}

// ValidateRequest is the body for POST /api/targets/validate. Either a full
// profile or a preset name plus overrides.
type ValidateRequest struct {
	Preset    string             `json:"preset,omitempty"`
	Overrides *targets.Overrides `json:"overrides,omitempty"`

	Profile *targets.TargetProfile `json:"profile,omitempty"`
}

// HandleValidate handles POST /api/targets/validate
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := resolveProfile(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := profile.Validate(); err != nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{
				"valid": false,
				"error": err.Error(),
			},
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"valid":   true,
			"profile": profile,
		},
	})
}

// resolveProfile turns a validate request into a concrete profile.
func resolveProfile(req ValidateRequest) (targets.TargetProfile, error) {
	if req.Profile != nil {
		return *req.Profile, nil
	}

	profile, ok := targets.DefaultProfile(req.Preset)
	if !ok {
		return targets.TargetProfile{}, fmt.Errorf("unknown target preset: %s", req.Preset)
	}

	if req.Overrides != nil {
		profile.Qubit = targets.Merge(profile.Qubit, *req.Overrides)
	}

	return profile, nil
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
