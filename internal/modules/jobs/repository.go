package jobs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a job does not exist in the ledger.
var ErrNotFound = errors.New("job not found")

// ErrIllegalTransition is returned for status updates that violate the
// lifecycle DAG, including any attempt to mutate a terminal job.
var ErrIllegalTransition = errors.New("illegal status transition")

// Repository provides ledger access for jobs and their results.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new jobs repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const jobColumns = `id, name, group_id, target_name, fingerprint, remote_id, status, error,
	target_json, payload_kind, payload_json, created_at, submitted_at, completed_at`

// Create inserts a new job record.
func (r *Repository) Create(job *Job) error {
	_, err := r.db.Exec(`
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.Name,
		nullString(job.GroupID),
		job.TargetName,
		job.Fingerprint,
		nullString(job.RemoteID),
		string(job.Status),
		nullString(job.Error),
		job.TargetJSON,
		job.PayloadKind,
		job.PayloadJSON,
		job.CreatedAt.Unix(),
		nullTime(job.SubmittedAt),
		nullTime(job.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job %s: %w", job.ID, err)
	}
	return nil
}

// Get returns a job by its local ID.
func (r *Repository) Get(id string) (*Job, error) {
	row := r.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

// GetByFingerprint returns the most recent job with the given fingerprint
// and status, or ErrNotFound.
func (r *Repository) GetByFingerprint(fingerprint string, status Status) (*Job, error) {
	row := r.db.QueryRow(`
		SELECT `+jobColumns+` FROM jobs
		WHERE fingerprint = ? AND status = ?
		ORDER BY created_at DESC LIMIT 1`,
		fingerprint, string(status))
	return scanJob(row)
}

// List returns jobs, newest first, optionally filtered by status.
// A limit of 0 means no limit.
func (r *Repository) List(status Status, limit int) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := []interface{}{}

	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// ListByGroup returns all jobs of a batch group, oldest first. Membership
// comes from the group a job was created under plus any job_groups links
// added when an existing job satisfied a batch member.
func (r *Repository) ListByGroup(groupID string) ([]*Job, error) {
	rows, err := r.db.Query(`
		SELECT `+jobColumns+` FROM jobs
		WHERE group_id = ?
		   OR id IN (SELECT job_id FROM job_groups WHERE group_id = ?)
		ORDER BY created_at ASC`, groupID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group %s: %w", groupID, err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// AddToGroup records an extra group membership for an existing job.
// Idempotent: adding a job to a group it is already in is a no-op.
func (r *Repository) AddToGroup(groupID, jobID string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO job_groups (group_id, job_id) VALUES (?, ?)`,
		groupID, jobID)
	if err != nil {
		return fmt.Errorf("failed to add job %s to group %s: %w", jobID, groupID, err)
	}
	return nil
}

// ListActive returns jobs in the given non-terminal statuses.
func (r *Repository) ListActive(statuses ...Status) ([]*Job, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status IN (`
	args := make([]interface{}, len(statuses))
	for i, s := range statuses {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args[i] = string(s)
	}
	query += `) ORDER BY created_at ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active jobs: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// Transition updates a job's status, enforcing the lifecycle DAG in the
// same statement so concurrent updates cannot race a terminal job back to
// life. Returns ErrIllegalTransition when the guard rejects the update.
func (r *Repository) Transition(id string, from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	if from == to {
		return nil
	}

	var completedAt interface{}
	if to.IsTerminal() {
		completedAt = time.Now().Unix()
	}

	result, err := r.db.Exec(`
		UPDATE jobs SET status = ?, completed_at = COALESCE(?, completed_at)
		WHERE id = ? AND status = ?`,
		string(to), completedAt, id, string(from))
	if err != nil {
		return fmt.Errorf("failed to transition job %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check transition of job %s: %w", id, err)
	}
	if affected == 0 {
		// Either the job is gone or its status moved underneath us.
		if _, getErr := r.Get(id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: job %s is no longer %s", ErrIllegalTransition, id, from)
	}

	return nil
}

// MarkSubmitted records the remote ID and flips the job to submitted.
func (r *Repository) MarkSubmitted(id, remoteID string) error {
	now := time.Now().Unix()

	result, err := r.db.Exec(`
		UPDATE jobs SET status = ?, remote_id = ?, submitted_at = ?
		WHERE id = ? AND status = ?`,
		string(StatusSubmitted), remoteID, now, id, string(StatusPending))
	if err != nil {
		return fmt.Errorf("failed to mark job %s submitted: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check submission of job %s: %w", id, err)
	}
	if affected == 0 {
		if _, getErr := r.Get(id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: job %s is not pending", ErrIllegalTransition, id)
	}

	return nil
}

// SetError records a failure reason. The status transition is separate.
func (r *Repository) SetError(id, errMsg string) error {
	_, err := r.db.Exec(`UPDATE jobs SET error = ? WHERE id = ?`, errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to set error for job %s: %w", id, err)
	}
	return nil
}

// StoreResult persists the raw result document for a job.
func (r *Repository) StoreResult(jobID string, resultJSON json.RawMessage) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO job_results (job_id, result_json, stored_at)
		VALUES (?, ?, ?)`,
		jobID, string(resultJSON), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store result for job %s: %w", jobID, err)
	}
	return nil
}

// GetResult returns the stored result document for a job, or ErrNotFound.
func (r *Repository) GetResult(jobID string) (json.RawMessage, error) {
	var resultJSON string
	err := r.db.QueryRow(`SELECT result_json FROM job_results WHERE job_id = ?`, jobID).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result for job %s: %w", jobID, err)
	}
	return json.RawMessage(resultJSON), nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanJob.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scanner) (*Job, error) {
	var (
		job         Job
		groupID     sql.NullString
		remoteID    sql.NullString
		errMsg      sql.NullString
		status      string
		createdAt   int64
		submittedAt sql.NullInt64
		completedAt sql.NullInt64
	)

	err := row.Scan(
		&job.ID, &job.Name, &groupID, &job.TargetName, &job.Fingerprint,
		&remoteID, &status, &errMsg, &job.TargetJSON, &job.PayloadKind,
		&job.PayloadJSON, &createdAt, &submittedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	job.GroupID = groupID.String
	job.RemoteID = remoteID.String
	job.Error = errMsg.String
	job.Status = Status(status)
	job.CreatedAt = time.Unix(createdAt, 0).UTC()
	if submittedAt.Valid {
		t := time.Unix(submittedAt.Int64, 0).UTC()
		job.SubmittedAt = &t
	}
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0).UTC()
		job.CompletedAt = &t
	}

	return &job, nil
}

func scanJobs(rows *sql.Rows) ([]*Job, error) {
	var result []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return result, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}
