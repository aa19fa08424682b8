// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/clientdata"
	"github.com/helioncore/qrex/internal/clients/estimator"
	"github.com/helioncore/qrex/internal/config"
	"github.com/helioncore/qrex/internal/events"
	"github.com/helioncore/qrex/internal/modules/jobs"
	"github.com/helioncore/qrex/internal/reliability"
	"github.com/helioncore/qrex/internal/scheduler"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
// 1. Initialize databases
// 2. Initialize clients and repositories
// 3. Initialize services
// 4. Initialize the work processor and scheduler
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	// Step 1: Databases
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	// Step 2: Clients and repositories
	container.EventBus = events.NewBus(log)
	container.ClientDataRepo = clientdata.NewRepository(container.CacheDB.Conn())
	container.EstimatorClient = estimator.NewClient(
		cfg.EstimatorBaseURL,
		cfg.EstimatorAPIKey,
		container.ClientDataRepo,
		log,
	)
	container.ServiceMonitor = estimator.NewServiceMonitor(container.EstimatorClient)

	if cfg.EstimatorStreamURL != "" {
		container.JobStatusStream = estimator.NewJobStatusStream(
			cfg.EstimatorStreamURL,
			cfg.EstimatorAPIKey,
			container.EventBus,
			log,
		)
	}

	container.JobsRepo = jobs.NewRepository(container.JobsDB.Conn())
	container.JobsService = jobs.NewService(
		container.JobsRepo,
		container.EstimatorClient,
		container.EventBus,
		log,
	)

	// Step 3: Reliability (optional)
	if err := initializeReliability(container, cfg, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize backup services: %w", err)
	}

	// Step 4: Work processor and scheduler
	InitializeWork(container, log)

	if err := initializeScheduler(container, cfg, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, nil
}

// initializeReliability wires the backup and restore services when offsite
// backups are enabled. All three services stay nil otherwise.
func initializeReliability(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.BackupService = reliability.NewBackupService(container.Databases(), log)

	if cfg.Backup == nil {
		log.Info().Msg("Offsite backups disabled")
		return nil
	}

	s3Client, err := reliability.NewS3Client(
		cfg.Backup.S3Endpoint,
		cfg.Backup.S3Region,
		cfg.Backup.AccessKey,
		cfg.Backup.SecretKey,
		cfg.Backup.S3Bucket,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	container.CloudBackupService = reliability.NewCloudBackupService(
		s3Client,
		container.BackupService,
		container.EventBus,
		cfg.DataDir,
		cfg.Backup.Retention,
		log,
	)
	container.RestoreService = reliability.NewRestoreService(s3Client, cfg.DataDir, log)

	return nil
}

// initializeScheduler registers the time-driven jobs: work processor ticks,
// database health checks, and backup uploads.
func initializeScheduler(container *Container, cfg *config.Config, log zerolog.Logger) error {
	sched := scheduler.New(log)

	// Tick the processor so interval-based work types run without events
	if err := sched.AddJob("@every 30s", scheduler.NewWorkTickJob(container.WorkProcessor)); err != nil {
		return err
	}

	// Integrity checks and WAL checkpoints every 6 hours
	healthJob := scheduler.NewHealthCheckJob(container.Databases(), log)
	if err := sched.AddJob("0 0 */6 * * *", healthJob); err != nil {
		return err
	}

	if cfg.Backup != nil {
		if err := sched.AddJob(cfg.Backup.Schedule, scheduler.NewBackupJob(container.WorkProcessor)); err != nil {
			return err
		}
	}

	container.Scheduler = sched
	return nil
}
