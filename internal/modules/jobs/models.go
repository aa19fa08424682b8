// Package jobs owns the estimation job lifecycle: creation, submission to
// the remote service, status tracking, result persistence, and batch
// (frontier) runs. The jobs ledger is the system of record; the remote
// service is the source of truth only while a job is in flight.
package jobs

import (
	"fmt"
	"time"

	"github.com/helioncore/qrex/internal/clients/estimator"
)

// Status is the local lifecycle state of a job.
type Status string

const (
	// StatusPending - created locally, not yet accepted by the service.
	StatusPending Status = "pending"
	// StatusSubmitted - accepted by the service, waiting to execute.
	StatusSubmitted Status = "submitted"
	// StatusExecuting - running on the service.
	StatusExecuting Status = "executing"
	// StatusSucceeded - finished with results stored in the ledger.
	StatusSucceeded Status = "succeeded"
	// StatusFailed - finished unsuccessfully.
	StatusFailed Status = "failed"
	// StatusCancelled - cancelled before completion.
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the status is final. Terminal jobs are
// immutable: no transition out of a terminal state is ever legal.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// legalTransitions is the job lifecycle DAG.
var legalTransitions = map[Status][]Status{
	StatusPending:   {StatusSubmitted, StatusFailed, StatusCancelled},
	StatusSubmitted: {StatusExecuting, StatusSucceeded, StatusFailed, StatusCancelled},
	StatusExecuting: {StatusSucceeded, StatusFailed, StatusCancelled},
}

// CanTransition reports whether moving from one status to another is legal.
// Self-transitions are allowed (idempotent poll updates).
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// mapRemoteStatus translates the service's job state into the local one.
func mapRemoteStatus(remote string) (Status, error) {
	switch remote {
	case estimator.RemoteStatusWaiting:
		return StatusSubmitted, nil
	case estimator.RemoteStatusExecuting:
		return StatusExecuting, nil
	case estimator.RemoteStatusSucceeded:
		return StatusSucceeded, nil
	case estimator.RemoteStatusFailed:
		return StatusFailed, nil
	case estimator.RemoteStatusCancelled:
		return StatusCancelled, nil
	default:
		return "", fmt.Errorf("unknown remote status: %q", remote)
	}
}

// Job is a ledger record for one estimation run.
type Job struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	GroupID     string     `json:"group_id,omitempty"`
	TargetName  string     `json:"target_name"`
	Fingerprint string     `json:"fingerprint"`
	RemoteID    string     `json:"remote_id,omitempty"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	TargetJSON  string     `json:"-"`
	PayloadKind string     `json:"payload_kind"`
	PayloadJSON string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
