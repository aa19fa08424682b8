// Package main is the entry point for the qrex resource estimation gateway.
// The gateway sits between notebooks and a remote quantum resource
// estimation service: it builds circuits and target profiles, submits
// estimation jobs, polls for results, stores them durably, and renders
// formatted reports.
//
// The application follows clean architecture principles:
// - Dependency injection via DI container
// - Repository pattern for data access
// - Service layer for business logic
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/helioncore/qrex/internal/config"
	"github.com/helioncore/qrex/internal/di"
	"github.com/helioncore/qrex/internal/reliability"
	"github.com/helioncore/qrex/internal/server"
	"github.com/helioncore/qrex/pkg/logger"
)

// main orchestrates the startup sequence:
// 1. Load configuration from environment variables
// 2. Initialize logging
// 3. Apply a staged restore if one is pending (before databases open)
// 4. Wire all dependencies via the DI container
// 5. Start the HTTP server, work processor, status stream, and scheduler
// 6. Wait for a shutdown signal and stop everything gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting qrex")

	// Apply a pending restore BEFORE opening any database connection.
	// Restores are staged by the API and applied on the next startup so
	// database files are never swapped under open connections.
	if reliability.HasStagedRestore(cfg.DataDir) {
		log.Warn().Msg("Staged restore detected, applying before startup")
		if err := reliability.ApplyStagedRestore(cfg.DataDir, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply staged restore")
		}
		log.Info().Msg("Restore applied, proceeding with normal startup")
	}

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Event-driven background job system: submission, polling, quota
	// refresh, cache cleanup, backups
	go container.WorkProcessor.Run()
	log.Info().Msg("Work processor started")

	// Optional live status stream from the estimation service. Polling
	// still runs as a safety net when the stream is connected.
	if container.JobStatusStream != nil {
		if err := container.JobStatusStream.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start job status stream, relying on polling")
		} else {
			log.Info().Msg("Job status stream started")
		}
	}

	container.Scheduler.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	if container.JobStatusStream != nil {
		if err := container.JobStatusStream.Stop(); err != nil {
			log.Error().Err(err).Msg("Status stream shutdown error")
		}
	}

	container.WorkProcessor.Stop()
	container.Scheduler.Stop()

	log.Info().Msg("Shutdown complete")
}
