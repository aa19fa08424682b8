// Package handlers provides HTTP handlers for result reports.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/modules/jobs"
	"github.com/helioncore/qrex/internal/modules/reports"
)

// Handler handles report HTTP requests
type Handler struct {
	jobsService *jobs.Service
	log         zerolog.Logger
}

// NewHandler creates a new reports handler
func NewHandler(jobsService *jobs.Service, log zerolog.Logger) *Handler {
	return &Handler{
		jobsService: jobsService,
		log:         log.With().Str("handler", "reports").Logger(),
	}
}

// HandleJobReport handles GET /api/reports/jobs/{id}?format=text|html|json
func (h *Handler) HandleJobReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.jobsService.Get(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	result, err := h.jobsService.Results(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	dashboard := reports.BuildDashboard(job.ID, job.TargetName, result)

	switch r.URL.Query().Get("format") {
	case "", "json":
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": dashboard,
		})
	case "text":
		var buf bytes.Buffer
		reports.RenderText(&buf, dashboard)
		h.writeRendered(w, "text/plain; charset=utf-8", buf.Bytes())
	case "html":
		var buf bytes.Buffer
		reports.RenderHTML(&buf, dashboard)
		h.writeRendered(w, "text/html; charset=utf-8", buf.Bytes())
	default:
		http.Error(w, "Unknown format, use text, html, or json", http.StatusBadRequest)
	}
}

// HandleGroupReport handles GET /api/reports/batch/{groupID}, a
// side-by-side comparison of every succeeded job in the group.
func (h *Handler) HandleGroupReport(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	group, err := h.jobsService.Group(groupID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if len(group) == 0 {
		http.Error(w, "Group not found", http.StatusNotFound)
		return
	}

	var comparison reports.Comparison
	for _, job := range group {
		if job.Status != jobs.StatusSucceeded {
			continue
		}
		result, err := h.jobsService.Results(job.ID)
		if err != nil {
			h.log.Warn().Err(err).Str("job_id", job.ID).Msg("Skipping group member without results")
			continue
		}
		comparison.Dashboards = append(comparison.Dashboards,
			reports.BuildDashboard(job.ID, job.TargetName, result))
	}
	if len(comparison.Dashboards) == 0 {
		http.Error(w, "Group has no succeeded jobs yet", http.StatusConflict)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": comparison,
		})
	case "text":
		var buf bytes.Buffer
		reports.RenderComparisonText(&buf, comparison)
		h.writeRendered(w, "text/plain; charset=utf-8", buf.Bytes())
	case "html":
		var buf bytes.Buffer
		reports.RenderComparisonHTML(&buf, comparison)
		h.writeRendered(w, "text/html; charset=utf-8", buf.Bytes())
	default:
		http.Error(w, "Unknown format, use text, html, or json", http.StatusBadRequest)
	}
}

func (h *Handler) writeRendered(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to write response")
	}
}

// writeError maps service errors to HTTP status codes
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, jobs.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.log.Error().Err(err).Msg("Request failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
