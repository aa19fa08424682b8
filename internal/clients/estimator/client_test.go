package estimator

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioncore/qrex/internal/clientdata"
	"github.com/helioncore/qrex/internal/modules/circuits"
	"github.com/helioncore/qrex/internal/modules/targets"
)

func newTestCache(t *testing.T) *clientdata.Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE estimator_results (
			fingerprint TEXT PRIMARY KEY,
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

	return clientdata.NewRepository(db)
}

func testJobRequest(t *testing.T) JobRequest {
	t.Helper()

	profile, ok := targets.DefaultProfile("qubit_gate_ns_e3")
	require.True(t, ok)

	payload, err := circuits.BitcodePayload(base64.StdEncoding.EncodeToString([]byte("BC\xc0\xde")))
	require.NoError(t, err)

	return JobRequest{
		Name:    "ising 3x3",
		Target:  profile,
		Payload: payload,
	}
}

func TestClient_SubmitJob(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method

		var req JobRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ising 3x3", req.Name)

		json.NewEncoder(w).Encode(JobRef{ID: "remote-42", Status: RemoteStatusWaiting})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key", nil, zerolog.Nop())

	ref, err := c.SubmitJob(context.Background(), testJobRequest(t))
	require.NoError(t, err)

	assert.Equal(t, "remote-42", ref.ID)
	assert.Equal(t, RemoteStatusWaiting, ref.Status)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "/v1/jobs", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
}

func TestClient_SubmitJob_InvalidTarget(t *testing.T) {
	c := NewClient("http://unused", "", nil, zerolog.Nop())

	req := testJobRequest(t)
	req.Target.Qubit.OneQubitGateTimeNs = -1

	_, err := c.SubmitJob(context.Background(), req)
	assert.ErrorContains(t, err, "invalid target")
}

func TestClient_GetJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/jobs/remote-42", r.URL.Path)
		json.NewEncoder(w).Encode(JobStatus{ID: "remote-42", Status: RemoteStatusExecuting})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, zerolog.Nop())

	status, err := c.GetJob(context.Background(), "remote-42")
	require.NoError(t, err)

	assert.Equal(t, RemoteStatusExecuting, status.Status)
	assert.False(t, status.IsTerminal())
}

func TestClient_GetJob_EmptyID(t *testing.T) {
	c := NewClient("http://unused", "", nil, zerolog.Nop())

	_, err := c.GetJob(context.Background(), "")
	assert.Error(t, err)
}

func TestClient_GetJob_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, zerolog.Nop())

	_, err := c.GetJob(context.Background(), "remote-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClient_GetResults(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v1/jobs/remote-42/results", r.URL.Path)
		w.Write([]byte(`{"physical_qubits": 25200, "runtime_ns": 6160000, "extra_field": true}`))
	}))
	defer srv.Close()

	cache := newTestCache(t)
	c := NewClient(srv.URL, "", cache, zerolog.Nop())

	result, err := c.GetResults(context.Background(), "remote-42", "fp-1")
	require.NoError(t, err)

	assert.Equal(t, int64(25200), result.PhysicalQubits)
	assert.Equal(t, 6.16e6, result.RuntimeNs)
	// Unknown fields survive in the raw document
	assert.Contains(t, string(result.RawJSON), "extra_field")

	// Second fetch is served from cache
	result2, err := c.GetResults(context.Background(), "remote-42", "fp-1")
	require.NoError(t, err)
	assert.Equal(t, int64(25200), result2.PhysicalQubits)
	assert.Equal(t, 1, calls)
}

func TestClient_GetResults_StaleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cache := newTestCache(t)

	// Seed an expired cache entry directly
	stale := Result{PhysicalQubits: 11616}
	require.NoError(t, cache.Store("estimator_results", "fp-stale", stale, -time.Hour))

	c := NewClient(srv.URL, "", cache, zerolog.Nop())

	result, err := c.GetResults(context.Background(), "remote-42", "fp-stale")
	require.NoError(t, err)
	assert.Equal(t, int64(11616), result.PhysicalQubits)
}

func TestClient_GetResults_NoCacheNoFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, zerolog.Nop())

	_, err := c.GetResults(context.Background(), "remote-42", "")
	assert.Error(t, err)
}

func TestClient_Cancel(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, zerolog.Nop())

	require.NoError(t, c.Cancel(context.Background(), "remote-42"))
	assert.Equal(t, "/v1/jobs/remote-42/cancel", gotPath)

	assert.Error(t, c.Cancel(context.Background(), ""))
}

func TestClient_GetQuota(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v1/quota", r.URL.Path)
		json.NewEncoder(w).Encode(Quota{Region: "westeurope", JobsSubmitted: 7, JobsRemaining: 93})
	}))
	defer srv.Close()

	cache := newTestCache(t)
	c := NewClient(srv.URL, "", cache, zerolog.Nop())

	quota, err := c.GetQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(93), quota.JobsRemaining)

	// Cached for subsequent calls
	_, err = c.GetQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, zerolog.Nop())
	assert.NoError(t, c.Ping(context.Background()))

	srv.Close()
	assert.Error(t, c.Ping(context.Background()))
}
