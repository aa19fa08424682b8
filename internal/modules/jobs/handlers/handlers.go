// Package handlers provides HTTP handlers for estimation job operations.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/modules/circuits"
	"github.com/helioncore/qrex/internal/modules/jobs"
	"github.com/helioncore/qrex/internal/modules/targets"
)

// Triggerer wakes up the work processor. Satisfied by *work.Processor.
type Triggerer interface {
	Trigger()
}

// Handler handles job HTTP requests
type Handler struct {
	service       *jobs.Service
	submitTrigger Triggerer
	log           zerolog.Logger
}

// NewHandler creates a new jobs handler. submitTrigger nudges the work
// processor so freshly created jobs are submitted without waiting for the
// next scheduled pass.
func NewHandler(service *jobs.Service, submitTrigger Triggerer, log zerolog.Logger) *Handler {
	return &Handler{
		service:       service,
		submitTrigger: submitTrigger,
		log:           log.With().Str("handler", "jobs").Logger(),
	}
}

// TargetSpec selects a target: either a preset name (with optional qubit
// overrides) or a full inline profile.
type TargetSpec struct {
	Preset    string                 `json:"preset,omitempty"`
	Overrides *targets.Overrides     `json:"overrides,omitempty"`
	Profile   *targets.TargetProfile `json:"profile,omitempty"`
}

func (t TargetSpec) resolve() (targets.TargetProfile, error) {
	if t.Profile != nil {
		return *t.Profile, nil
	}

	profile, ok := targets.DefaultProfile(t.Preset)
	if !ok {
		return targets.TargetProfile{}, fmt.Errorf("unknown target preset: %s", t.Preset)
	}
	if t.Overrides != nil {
		profile.Qubit = targets.Merge(profile.Qubit, *t.Overrides)
	}

	return profile, nil
}

// PayloadSpec selects the program to estimate: an Ising model to build a
// circuit from, or precompiled bitcode.
type PayloadSpec struct {
	Ising   *circuits.IsingModel `json:"ising,omitempty"`
	Bitcode string               `json:"bitcode,omitempty"`
}

func (p PayloadSpec) resolve() (circuits.Payload, error) {
	switch {
	case p.Ising != nil && p.Bitcode != "":
		return circuits.Payload{}, errors.New("payload must be either an ising model or bitcode, not both")
	case p.Ising != nil:
		circuit, err := circuits.GenerateIsing(*p.Ising)
		if err != nil {
			return circuits.Payload{}, err
		}
		return circuits.CircuitPayload(circuit)
	case p.Bitcode != "":
		return circuits.BitcodePayload(p.Bitcode)
	default:
		return circuits.Payload{}, errors.New("payload is required")
	}
}

// CreateRequest is the body for POST /api/jobs
type CreateRequest struct {
	Name    string      `json:"name"`
	Target  TargetSpec  `json:"target"`
	Payload PayloadSpec `json:"payload"`
}

// HandleCreate handles POST /api/jobs
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	target, err := req.Target.resolve()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload, err := req.Payload.resolve()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, deduped, err := h.service.Create(jobs.CreateRequest{
		Name:    req.Name,
		Target:  target,
		Payload: payload,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := http.StatusCreated
	if deduped {
		status = http.StatusOK
	} else {
		h.nudgeSubmit()
	}

	h.writeJSON(w, status, map[string]interface{}{
		"data": job,
		"metadata": map[string]interface{}{
			"deduplicated": deduped,
			"timestamp":    time.Now().Format(time.RFC3339),
		},
	})
}

// BatchRequest is the body for POST /api/jobs/batch
type BatchRequest struct {
	Name    string       `json:"name"`
	Targets []TargetSpec `json:"targets"`
	Payload PayloadSpec  `json:"payload"`
}

// HandleCreateBatch handles POST /api/jobs/batch
func (h *Handler) HandleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payload, err := req.Payload.resolve()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profiles := make([]targets.TargetProfile, 0, len(req.Targets))
	for i, spec := range req.Targets {
		profile, err := spec.resolve()
		if err != nil {
			http.Error(w, fmt.Sprintf("target %d: %s", i, err.Error()), http.StatusBadRequest)
			return
		}
		profiles = append(profiles, profile)
	}

	groupID, created, err := h.service.CreateBatch(jobs.BatchRequest{
		Name:    req.Name,
		Targets: profiles,
		Payload: payload,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.nudgeSubmit()

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{
			"group_id": groupID,
			"jobs":     created,
		},
		"metadata": map[string]interface{}{
			"count":     len(created),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleList handles GET /api/jobs
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var status jobs.Status
	if s := r.URL.Query().Get("status"); s != "" {
		status = jobs.Status(s)
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	list, err := h.service.List(status, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": list,
		"metadata": map[string]interface{}{
			"count":     len(list),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGet handles GET /api/jobs/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": job,
	})
}

// HandleGetResults handles GET /api/jobs/{id}/results
func (h *Handler) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Results(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
	})
}

// HandleCancel handles POST /api/jobs/{id}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": job,
	})
}

// HandlePoll handles POST /api/jobs/{id}/poll, forcing an immediate status
// refresh instead of waiting for the next scheduled poll.
func (h *Handler) HandlePoll(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Poll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": job,
	})
}

// HandleGetGroup handles GET /api/jobs/batch/{groupID}
func (h *Handler) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.service.Group(chi.URLParam(r, "groupID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if len(group) == 0 {
		http.Error(w, "Group not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": group,
		"metadata": map[string]interface{}{
			"count": len(group),
		},
	})
}

// HandleGetFrontier handles GET /api/jobs/batch/{groupID}/frontier
func (h *Handler) HandleGetFrontier(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Frontier(chi.URLParam(r, "groupID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": report,
	})
}

// nudgeSubmit signals the work processor without blocking.
func (h *Handler) nudgeSubmit() {
	if h.submitTrigger == nil {
		return
	}
	h.submitTrigger.Trigger()
}

// writeError maps service errors to HTTP status codes
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, jobs.ErrIllegalTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.Error().Err(err).Msg("Request failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
