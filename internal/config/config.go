// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir            string // Base directory for all databases (always absolute)
	Port               int
	DevMode            bool
	LogLevel           string
	EstimatorBaseURL   string // Base URL of the remote resource estimation service
	EstimatorAPIKey    string
	EstimatorStreamURL string        // Optional websocket URL for live job status updates
	PollInterval       time.Duration // Minimum time between job status polls
	Backup             *BackupConfig
}

// BackupConfig holds offsite backup configuration for the jobs ledger.
// The S3 endpoint is configurable so S3-compatible stores (R2, MinIO) work too.
type BackupConfig struct {
	Enabled     bool
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	AccessKey   string
	SecretKey   string
	Schedule    string // Six-field cron expression (with seconds) for periodic uploads
	Retention   int    // Days to keep backups in the bucket (newest 3 always kept)
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic:
	// 1. Check QREX_DATA_DIR environment variable
	// 2. If not set, default to /var/lib/qrex
	// 3. Always resolve to absolute path and ensure the directory exists
	dataDir := getEnv("QREX_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "/var/lib/qrex"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	pollSeconds := getEnvAsInt("ESTIMATOR_POLL_SECONDS", 30)
	if pollSeconds < 1 {
		return nil, fmt.Errorf("ESTIMATOR_POLL_SECONDS must be positive, got %d", pollSeconds)
	}

	cfg := &Config{
		DataDir:            absDataDir,
		Port:               getEnvAsInt("QREX_PORT", 8010),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		EstimatorBaseURL:   getEnv("ESTIMATOR_SERVICE_URL", "http://localhost:9100"),
		EstimatorAPIKey:    getEnv("ESTIMATOR_API_KEY", ""),
		EstimatorStreamURL: getEnv("ESTIMATOR_STREAM_URL", ""),
		PollInterval:       time.Duration(pollSeconds) * time.Second,
		Backup:             loadBackupConfig(),
	}

	return cfg, nil
}

// loadBackupConfig reads offsite backup settings from the environment.
// Returns nil when backups are disabled so callers can skip wiring entirely.
func loadBackupConfig() *BackupConfig {
	if !getEnvAsBool("BACKUP_ENABLED", false) {
		return nil
	}

	return &BackupConfig{
		Enabled:    true,
		S3Endpoint: getEnv("BACKUP_S3_ENDPOINT", ""),
		S3Region:   getEnv("BACKUP_S3_REGION", "auto"),
		S3Bucket:   getEnv("BACKUP_S3_BUCKET", "qrex-backups"),
		AccessKey:  getEnv("BACKUP_S3_ACCESS_KEY", ""),
		SecretKey:  getEnv("BACKUP_S3_SECRET_KEY", ""),
		Schedule:   getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
		Retention:  getEnvAsInt("BACKUP_RETENTION", 14),
	}
}

// getEnv retrieves an environment variable value, returning a fallback if
// the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer.
func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsBool retrieves an environment variable as a boolean.
func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
