package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/database"
	"github.com/helioncore/qrex/internal/work"
)

// WorkTickJob wakes the work processor so interval-based work types
// (polling, quota refresh, cache cleanup) get a chance to run even when
// no event fires.
type WorkTickJob struct {
	processor *work.Processor
}

// NewWorkTickJob creates a new work tick job
func NewWorkTickJob(processor *work.Processor) *WorkTickJob {
	return &WorkTickJob{processor: processor}
}

// Name returns the job name
func (j *WorkTickJob) Name() string {
	return "work_tick"
}

// Run triggers the work processor
func (j *WorkTickJob) Run() error {
	j.processor.Trigger()
	return nil
}

// BackupJob runs the backup work type on its cron schedule.
type BackupJob struct {
	processor *work.Processor
}

// NewBackupJob creates a new backup job
func NewBackupJob(processor *work.Processor) *BackupJob {
	return &BackupJob{processor: processor}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup_upload"
}

// Run executes the backup work type immediately
func (j *BackupJob) Run() error {
	return j.processor.ExecuteNow("backup:upload", "")
}

// HealthCheckJob performs database integrity checks and WAL maintenance.
type HealthCheckJob struct {
	log zerolog.Logger
	dbs map[string]*database.DB
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(dbs map[string]*database.DB, log zerolog.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		log: log.With().Str("job", "health_check").Logger(),
		dbs: dbs,
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "health_check"
}

// Run executes the health check across all databases
func (j *HealthCheckJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var failed []string

	for name, db := range j.dbs {
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("Integrity check failed")
			failed = append(failed, name)
			continue
		}
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed")
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("integrity check failed for: %v", failed)
	}

	j.log.Debug().Int("databases", len(j.dbs)).Msg("Health check passed")
	return nil
}
