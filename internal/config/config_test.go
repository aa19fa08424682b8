package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("QREX_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8010, cfg.Port)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:9100", cfg.EstimatorBaseURL)
	assert.Equal(t, "", cfg.EstimatorStreamURL)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Nil(t, cfg.Backup)
}

func TestLoad_DataDirIsAbsolute(t *testing.T) {
	t.Setenv("QREX_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.DirExists(t, cfg.DataDir)
}

func TestLoad_PollInterval(t *testing.T) {
	t.Setenv("QREX_DATA_DIR", t.TempDir())

	t.Run("custom value", func(t *testing.T) {
		t.Setenv("ESTIMATOR_POLL_SECONDS", "5")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.PollInterval)
	})

	t.Run("rejects non-positive", func(t *testing.T) {
		t.Setenv("ESTIMATOR_POLL_SECONDS", "0")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unparseable falls back to default", func(t *testing.T) {
		t.Setenv("ESTIMATOR_POLL_SECONDS", "soon")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.PollInterval)
	})
}

func TestLoad_BackupDisabledByDefault(t *testing.T) {
	t.Setenv("QREX_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Nil(t, cfg.Backup)
}

func TestLoad_BackupEnabled(t *testing.T) {
	t.Setenv("QREX_DATA_DIR", t.TempDir())
	t.Setenv("BACKUP_ENABLED", "true")
	t.Setenv("BACKUP_S3_ENDPOINT", "https://storage.example.com")
	t.Setenv("BACKUP_S3_ACCESS_KEY", "key")
	t.Setenv("BACKUP_S3_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Backup)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, "https://storage.example.com", cfg.Backup.S3Endpoint)
	assert.Equal(t, "auto", cfg.Backup.S3Region)
	assert.Equal(t, "qrex-backups", cfg.Backup.S3Bucket)
	assert.Equal(t, "0 0 3 * * *", cfg.Backup.Schedule)
	assert.Equal(t, 14, cfg.Backup.Retention)
}

func TestLoad_EstimatorSettings(t *testing.T) {
	t.Setenv("QREX_DATA_DIR", t.TempDir())
	t.Setenv("ESTIMATOR_SERVICE_URL", "https://estimator.example.com")
	t.Setenv("ESTIMATOR_API_KEY", "tok")
	t.Setenv("ESTIMATOR_STREAM_URL", "wss://estimator.example.com/stream")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://estimator.example.com", cfg.EstimatorBaseURL)
	assert.Equal(t, "tok", cfg.EstimatorAPIKey)
	assert.Equal(t, "wss://estimator.example.com/stream", cfg.EstimatorStreamURL)
}
