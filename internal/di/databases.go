// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/config"
	"github.com/helioncore/qrex/internal/database"
)

// InitializeDatabases opens both databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{Log: log, Cfg: cfg}

	// 1. jobs.db - Submitted jobs and stored results
	jobsDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/jobs.db",
		Profile: database.ProfileLedger, // Maximum safety; results are expensive to recompute
		Name:    "jobs",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jobs database: %w", err)
	}
	container.JobsDB = jobsDB

	// 2. cache.db - Service response cache
	cacheDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/cache.db",
		Profile: database.ProfileCache, // Speed over durability; rows are reproducible
		Name:    "cache",
	})
	if err != nil {
		jobsDB.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	// Apply schemas
	if err := jobsDB.Migrate(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to migrate jobs database: %w", err)
	}
	if err := cacheDB.Migrate(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}

	log.Info().
		Str("data_dir", cfg.DataDir).
		Msg("Databases initialized")

	return container, nil
}
