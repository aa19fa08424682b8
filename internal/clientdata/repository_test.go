package clientdata

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	schema := `
		CREATE TABLE estimator_results (
			fingerprint TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		);
		CREATE TABLE target_profiles (
			target TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		);
		CREATE TABLE service_quota (
			region TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		);`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return NewRepository(db)
}

type cachedDoc struct {
	Label string  `msgpack:"label"`
	Value float64 `msgpack:"value"`
}

func TestRepository_StoreAndGetIfFresh(t *testing.T) {
	repo := newTestRepo(t)

	doc := cachedDoc{Label: "physical_qubits", Value: 42}
	require.NoError(t, repo.Store("estimator_results", "fp-1", doc, time.Hour))

	var got cachedDoc
	found, err := repo.GetIfFresh("estimator_results", "fp-1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, doc, got)
}

func TestRepository_GetIfFresh_MissingKey(t *testing.T) {
	repo := newTestRepo(t)

	var got cachedDoc
	found, err := repo.GetIfFresh("estimator_results", "nope", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepository_ExpiredIsStaleButRetrievable(t *testing.T) {
	repo := newTestRepo(t)

	doc := cachedDoc{Label: "quota", Value: 3}
	require.NoError(t, repo.Store("service_quota", "eu", doc, -time.Minute))

	var fresh cachedDoc
	found, err := repo.GetIfFresh("service_quota", "eu", &fresh)
	require.NoError(t, err)
	assert.False(t, found, "expired data must not be served as fresh")

	// Stale reads are an explicit fallback for service outages
	var stale cachedDoc
	found, err = repo.Get("service_quota", "eu", &stale)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, doc, stale)
}

func TestRepository_StoreOverwrites(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Store("target_profiles", "qubit_gate_ns_e3", cachedDoc{Value: 1}, time.Hour))
	require.NoError(t, repo.Store("target_profiles", "qubit_gate_ns_e3", cachedDoc{Value: 2}, time.Hour))

	var got cachedDoc
	found, err := repo.GetIfFresh("target_profiles", "qubit_gate_ns_e3", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, float64(2), got.Value)
}

func TestRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Store("estimator_results", "fp-1", cachedDoc{}, time.Hour))
	require.NoError(t, repo.Delete("estimator_results", "fp-1"))

	var got cachedDoc
	found, err := repo.Get("estimator_results", "fp-1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepository_DeleteExpired(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Store("estimator_results", "stale", cachedDoc{}, -time.Minute))
	require.NoError(t, repo.Store("estimator_results", "fresh", cachedDoc{}, time.Hour))

	deleted, err := repo.DeleteExpired("estimator_results")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var got cachedDoc
	found, err := repo.Get("estimator_results", "fresh", &got)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRepository_DeleteAllExpired(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Store("estimator_results", "a", cachedDoc{}, -time.Minute))
	require.NoError(t, repo.Store("target_profiles", "b", cachedDoc{}, -time.Minute))
	require.NoError(t, repo.Store("service_quota", "c", cachedDoc{}, time.Hour))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)

	assert.Equal(t, int64(1), results["estimator_results"])
	assert.Equal(t, int64(1), results["target_profiles"])
	assert.Equal(t, int64(0), results["service_quota"])
}

func TestRepository_RejectsUnknownTable(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Store("users; DROP TABLE estimator_results", "k", cachedDoc{}, time.Hour)
	assert.Error(t, err)

	var got cachedDoc
	_, err = repo.Get("unknown_table", "k", &got)
	assert.Error(t, err)
}
