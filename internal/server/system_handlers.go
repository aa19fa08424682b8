package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/helioncore/qrex/internal/di"
	"github.com/helioncore/qrex/internal/version"
)

// SystemHandlers provides monitoring and operations endpoints: process
// stats, database stats, disk usage, and backup management.
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	container *di.Container
	startTime time.Time
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, container *di.Container) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		container: container,
		startTime: time.Now(),
	}
}

// HandleSystemStatus returns process health, estimation service
// reachability, and job queue depths in one response.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"version":        version.Version,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"system":         h.getSystemStats(),
	}

	estimatorStatus := map[string]interface{}{
		"reachable": h.container.ServiceMonitor.IsReachable(),
	}
	if stream := h.container.JobStatusStream; stream != nil {
		estimatorStatus["stream_connected"] = stream.IsConnected()
	}
	status["estimator"] = estimatorStatus

	jobsStatus := map[string]interface{}{}
	if pending, err := h.container.JobsService.PendingCount(); err == nil {
		jobsStatus["pending"] = pending
	}
	if active, err := h.container.JobsService.ActiveCount(); err == nil {
		jobsStatus["active"] = active
	}
	status["jobs"] = jobsStatus

	status["work_types"] = h.container.WorkRegistry.Count()
	status["backups_enabled"] = h.container.CloudBackupService != nil

	h.writeJSON(w, http.StatusOK, status)
}

// getSystemStats collects CPU and memory usage via gopsutil.
// Failures degrade to partial output rather than erroring the endpoint.
func (h *SystemHandlers) getSystemStats() map[string]interface{} {
	stats := map[string]interface{}{}

	if percentages, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(percentages) > 0 {
		stats["cpu_percent"] = percentages[0]
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		stats["ram_percent"] = vmStat.UsedPercent
		stats["ram_used_mb"] = vmStat.Used / 1024 / 1024
		stats["ram_total_mb"] = vmStat.Total / 1024 / 1024
	}

	return stats
}

// HandleDatabaseStats returns size and page statistics for each database
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	result := map[string]interface{}{}

	for name, db := range h.container.Databases() {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to collect database stats")
			result[name] = map[string]interface{}{"error": err.Error()}
			continue
		}
		result[name] = map[string]interface{}{
			"size_bytes":     stats.SizeBytes,
			"wal_size_bytes": stats.WALSizeBytes,
			"page_count":     stats.PageCount,
			"page_size":      stats.PageSize,
			"freelist_count": stats.FreelistCount,
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"databases": result})
}

// HandleDiskUsage returns the total size of the data directory
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	size, err := getDirSize(h.dataDir)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to calculate disk usage")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data_dir":   h.dataDir,
		"size_bytes": size,
		"size_mb":    float64(size) / 1024 / 1024,
	})
}

// HandleListBackups lists backup archives in remote storage, newest first
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.container.CloudBackupService == nil {
		h.writeError(w, http.StatusNotImplemented, "Backups are not configured")
		return
	}

	backups, err := h.container.CloudBackupService.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		h.writeError(w, http.StatusBadGateway, "Failed to list backups")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"backups": backups,
		"count":   len(backups),
	})
}

// HandleTriggerBackup runs a backup cycle immediately through the work
// processor so it shares the single-execution path with scheduled backups.
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.container.CloudBackupService == nil {
		h.writeError(w, http.StatusNotImplemented, "Backups are not configured")
		return
	}

	if err := h.container.WorkProcessor.ExecuteNow("backup:upload", ""); err != nil {
		h.log.Error().Err(err).Msg("Backup failed")
		h.writeError(w, http.StatusInternalServerError, "Backup failed: "+err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "completed"})
}

// HandleStageRestore downloads a backup archive and stages it for the next
// restart. Databases cannot be swapped under open connections, so the
// staged files are applied before they are opened.
func (h *SystemHandlers) HandleStageRestore(w http.ResponseWriter, r *http.Request) {
	if h.container.RestoreService == nil {
		h.writeError(w, http.StatusNotImplemented, "Backups are not configured")
		return
	}

	filename := chi.URLParam(r, "filename")
	if filename == "" {
		h.writeError(w, http.StatusBadRequest, "Missing backup filename")
		return
	}

	if err := h.container.RestoreService.StageRestore(r.Context(), filename); err != nil {
		h.log.Error().Err(err).Str("filename", filename).Msg("Failed to stage restore")
		h.writeError(w, http.StatusInternalServerError, "Failed to stage restore: "+err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "staged",
		"message": "Restore staged; restart the service to apply it",
	})
}

// getDirSize walks a directory and sums file sizes
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *SystemHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{"error": message})
}
