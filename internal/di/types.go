/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to handlers for access to services.
 */
package di

import (
	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/clientdata"
	"github.com/helioncore/qrex/internal/clients/estimator"
	"github.com/helioncore/qrex/internal/config"
	"github.com/helioncore/qrex/internal/database"
	"github.com/helioncore/qrex/internal/events"
	"github.com/helioncore/qrex/internal/modules/jobs"
	"github.com/helioncore/qrex/internal/reliability"
	"github.com/helioncore/qrex/internal/scheduler"
	"github.com/helioncore/qrex/internal/work"
)

/**
 * Container holds all dependencies for the application.
 *
 * This is the single source of truth for all service instances.
 * The container is created by Wire() and passed to the server for access to services.
 *
 * Architecture:
 * - Databases: 2-database architecture (jobs ledger, response cache)
 * - Clients: estimation service HTTP client plus optional status WebSocket
 * - Work components: background processor with event-driven execution
 * - Reliability: offsite backup and staged restore (nil when backups are disabled)
 */
type Container struct {
	// Databases
	JobsDB  *database.DB // Submitted jobs and stored results (ledger profile)
	CacheDB *database.DB // Ephemeral service response cache (cache profile)

	// Events
	EventBus *events.Bus

	// Clients - estimation service integration
	ClientDataRepo  *clientdata.Repository
	EstimatorClient *estimator.Client
	ServiceMonitor  *estimator.ServiceMonitor
	JobStatusStream *estimator.JobStatusStream // nil unless a stream URL is configured

	// Jobs module
	JobsRepo    *jobs.Repository
	JobsService *jobs.Service

	// Work processor components
	WorkRegistry   *work.Registry
	WorkCompletion *work.CompletionTracker
	WorkProcessor  *work.Processor
	WorkHandlers   *work.Handlers

	// Reliability - nil when BACKUP_ENABLED is false
	BackupService      *reliability.BackupService
	CloudBackupService *reliability.CloudBackupService
	RestoreService     *reliability.RestoreService

	// Scheduler for time-driven jobs
	Scheduler *scheduler.Scheduler

	Log zerolog.Logger
	Cfg *config.Config
}

// Databases returns the named database handles. Used by backup and
// health-check wiring, which operate on all databases uniformly.
func (c *Container) Databases() map[string]*database.DB {
	return map[string]*database.DB{
		"jobs":  c.JobsDB,
		"cache": c.CacheDB,
	}
}

// Close releases all database connections. Safe to call with a partially
// wired container.
func (c *Container) Close() {
	if c.JobsDB != nil {
		c.JobsDB.Close()
	}
	if c.CacheDB != nil {
		c.CacheDB.Close()
	}
}
