package reliability

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioncore/qrex/internal/database"
	qrextesting "github.com/helioncore/qrex/internal/testing"
)

func newBackupService(t *testing.T) (*BackupService, *database.DB) {
	t.Helper()

	jobsDB, cleanupJobs := qrextesting.NewTestDB(t, "jobs")
	t.Cleanup(cleanupJobs)
	cacheDB, cleanupCache := qrextesting.NewTestDB(t, "cache")
	t.Cleanup(cleanupCache)

	svc := NewBackupService(map[string]*database.DB{
		"jobs":  jobsDB,
		"cache": cacheDB,
	}, zerolog.Nop())

	return svc, jobsDB
}

func TestBackupService_GetDatabaseNames(t *testing.T) {
	svc, _ := newBackupService(t)

	assert.Equal(t, []string{"cache", "jobs"}, svc.GetDatabaseNames(true))

	// Cache contents can be re-fetched, archives skip it
	assert.Equal(t, []string{"jobs"}, svc.GetDatabaseNames(false))
}

func TestBackupService_BackupDatabase(t *testing.T) {
	svc, jobsDB := newBackupService(t)

	_, err := jobsDB.Exec(`
		INSERT INTO jobs (id, name, target_name, fingerprint, status, target_json, payload_kind, payload_json, created_at)
		VALUES ('job-1', 'ising 3x3', 'qubit_gate_ns_e3', 'fp-1', 'pending', '{}', 'circuit', '{}', strftime('%s','now'))
	`)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "jobs_snapshot.db")
	require.NoError(t, svc.BackupDatabase("jobs", dest))

	// Snapshot opens on its own and carries the data
	snap, err := database.New(database.Config{Path: dest, Name: "snapshot"})
	require.NoError(t, err)
	defer snap.Close()

	var count int
	require.NoError(t, snap.QueryRow("SELECT COUNT(*) FROM jobs").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestBackupService_BackupDatabase_Overwrites(t *testing.T) {
	svc, _ := newBackupService(t)

	dest := filepath.Join(t.TempDir(), "jobs_snapshot.db")
	require.NoError(t, svc.BackupDatabase("jobs", dest))

	// VACUUM INTO refuses existing files; the service clears them first
	require.NoError(t, svc.BackupDatabase("jobs", dest))
}

func TestBackupService_BackupDatabase_UnknownName(t *testing.T) {
	svc, _ := newBackupService(t)

	err := svc.BackupDatabase("ledger", filepath.Join(t.TempDir(), "x.db"))
	assert.ErrorContains(t, err, "unknown database")
}
