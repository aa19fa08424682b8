package jobs

import (
	"database/sql"
	"encoding/json"
	"fmt"
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
		CREATE TABLE jobs (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			group_id      TEXT,
			target_name   TEXT NOT NULL,
			fingerprint   TEXT NOT NULL,
			remote_id     TEXT,
			status        TEXT NOT NULL,
			error         TEXT,
			target_json   TEXT NOT NULL,
			payload_kind  TEXT NOT NULL,
			payload_json  TEXT NOT NULL,
			created_at    INTEGER NOT NULL,
			submitted_at  INTEGER,
			completed_at  INTEGER
		);
		CREATE TABLE job_groups (
			group_id  TEXT NOT NULL,
			job_id    TEXT NOT NULL REFERENCES jobs(id),
			PRIMARY KEY (group_id, job_id)
		);
		CREATE TABLE job_results (
			job_id       TEXT PRIMARY KEY REFERENCES jobs(id),
			result_json  TEXT NOT NULL,
			stored_at    INTEGER NOT NULL
		);`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return NewRepository(db)
}

func testJob(id string) *Job {
	return &Job{
		ID:          id,
		Name:        "ising 3x3",
		TargetName:  "qubit_gate_ns_e3",
		Fingerprint: "fp-" + id,
		Status:      StatusPending,
		TargetJSON:  `{"qubit":{}}`,
		PayloadKind: "circuit",
		PayloadJSON: `{"kind":"circuit"}`,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)

	job := testJob("j1")
	require.NoError(t, repo.Create(job))

	got, err := repo.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, "ising 3x3", got.Name)
	assert.Equal(t, StatusPending, got.Status)
	assert.Empty(t, got.RemoteID)
	assert.Nil(t, got.SubmittedAt)
	assert.Nil(t, got.CompletedAt)
}

func TestRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_GetByFingerprint(t *testing.T) {
	repo := newTestRepo(t)

	old := testJob("j1")
	old.Fingerprint = "same"
	old.Status = StatusSucceeded
	old.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(old))

	recent := testJob("j2")
	recent.Fingerprint = "same"
	recent.Status = StatusSucceeded
	require.NoError(t, repo.Create(recent))

	got, err := repo.GetByFingerprint("same", StatusSucceeded)
	require.NoError(t, err)
	assert.Equal(t, "j2", got.ID, "must return the most recent match")

	_, err = repo.GetByFingerprint("same", StatusFailed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_List(t *testing.T) {
	repo := newTestRepo(t)

	for i := 0; i < 5; i++ {
		j := testJob(fmt.Sprintf("j%d", i))
		j.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(j))
	}

	all, err := repo.List("", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "j4", all[0].ID, "newest first")

	limited, err := repo.List(StatusPending, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRepository_ListByGroup(t *testing.T) {
	repo := newTestRepo(t)

	for i := 0; i < 3; i++ {
		j := testJob(fmt.Sprintf("g%d", i))
		j.GroupID = "batch-1"
		j.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(j))
	}
	loner := testJob("solo")
	require.NoError(t, repo.Create(loner))

	group, err := repo.ListByGroup("batch-1")
	require.NoError(t, err)
	require.Len(t, group, 3)
	assert.Equal(t, "g0", group[0].ID, "oldest first")
}

func TestRepository_AddToGroup(t *testing.T) {
	repo := newTestRepo(t)

	member := testJob("m1")
	member.GroupID = "batch-1"
	member.CreatedAt = time.Now()
	require.NoError(t, repo.Create(member))

	outsider := testJob("m2")
	outsider.GroupID = "batch-0"
	outsider.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(outsider))

	require.NoError(t, repo.AddToGroup("batch-1", "m2"))
	require.NoError(t, repo.AddToGroup("batch-1", "m2"), "idempotent")

	group, err := repo.ListByGroup("batch-1")
	require.NoError(t, err)
	require.Len(t, group, 2)
	assert.Equal(t, "m2", group[0].ID, "linked member ordered like the rest")

	// The outsider's own group is unaffected.
	original, err := repo.ListByGroup("batch-0")
	require.NoError(t, err)
	require.Len(t, original, 1)
}

func TestRepository_ListActive(t *testing.T) {
	repo := newTestRepo(t)

	pending := testJob("p1")
	require.NoError(t, repo.Create(pending))

	executing := testJob("e1")
	executing.Status = StatusExecuting
	require.NoError(t, repo.Create(executing))

	done := testJob("d1")
	done.Status = StatusSucceeded
	require.NoError(t, repo.Create(done))

	active, err := repo.ListActive(StatusSubmitted, StatusExecuting)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "e1", active[0].ID)

	none, err := repo.ListActive()
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_Transition(t *testing.T) {
	repo := newTestRepo(t)

	j := testJob("j1")
	j.Status = StatusSubmitted
	require.NoError(t, repo.Create(j))

	require.NoError(t, repo.Transition("j1", StatusSubmitted, StatusExecuting))

	got, err := repo.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, StatusExecuting, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestRepository_TransitionToTerminalSetsCompletedAt(t *testing.T) {
	repo := newTestRepo(t)

	j := testJob("j1")
	j.Status = StatusExecuting
	require.NoError(t, repo.Create(j))

	require.NoError(t, repo.Transition("j1", StatusExecuting, StatusSucceeded))

	got, err := repo.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.WithinDuration(t, time.Now(), *got.CompletedAt, 5*time.Second)
}

func TestRepository_TransitionRejectsIllegalMoves(t *testing.T) {
	repo := newTestRepo(t)

	j := testJob("j1")
	j.Status = StatusSucceeded
	require.NoError(t, repo.Create(j))

	err := repo.Transition("j1", StatusSucceeded, StatusExecuting)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	got, _ := repo.Get("j1")
	assert.Equal(t, StatusSucceeded, got.Status, "terminal jobs are immutable")
}

func TestRepository_TransitionDetectsStaleFrom(t *testing.T) {
	repo := newTestRepo(t)

	j := testJob("j1")
	j.Status = StatusExecuting
	require.NoError(t, repo.Create(j))

	// A legal transition whose precondition no longer holds: the row is
	// not in the expected source state.
	err := repo.Transition("j1", StatusSubmitted, StatusExecuting)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestRepository_TransitionSelfIsNoop(t *testing.T) {
	repo := newTestRepo(t)

	j := testJob("j1")
	j.Status = StatusExecuting
	require.NoError(t, repo.Create(j))

	require.NoError(t, repo.Transition("j1", StatusExecuting, StatusExecuting))
}

func TestRepository_MarkSubmitted(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(testJob("j1")))
	require.NoError(t, repo.MarkSubmitted("j1", "remote-42"))

	got, err := repo.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, got.Status)
	assert.Equal(t, "remote-42", got.RemoteID)
	require.NotNil(t, got.SubmittedAt)

	// A second submission attempt must fail: the job is no longer pending
	err = repo.MarkSubmitted("j1", "remote-43")
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestRepository_StoreAndGetResult(t *testing.T) {
	repo := newTestRepo(t)

	j := testJob("j1")
	j.Status = StatusSucceeded
	require.NoError(t, repo.Create(j))

	doc := json.RawMessage(`{"physicalCounts":{"physicalQubits":25200}}`)
	require.NoError(t, repo.StoreResult("j1", doc))

	got, err := repo.GetResult("j1")
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(got))

	_, err = repo.GetResult("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_SetError(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(testJob("j1")))
	require.NoError(t, repo.SetError("j1", "quota exhausted"))

	got, err := repo.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, "quota exhausted", got.Error)
}
