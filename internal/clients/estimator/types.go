// Package estimator provides the HTTP client for the remote quantum
// resource estimation service. The service owns the actual estimation
// algorithm; this client submits jobs, polls status, and fetches results.
package estimator

import (
	"encoding/json"

	"github.com/helioncore/qrex/internal/modules/circuits"
	"github.com/helioncore/qrex/internal/modules/targets"
)

// Remote job states reported by the service.
const (
	RemoteStatusWaiting   = "Waiting"
	RemoteStatusExecuting = "Executing"
	RemoteStatusSucceeded = "Succeeded"
	RemoteStatusFailed    = "Failed"
	RemoteStatusCancelled = "Cancelled"
)

// JobRequest is the submission body for a single estimation job.
type JobRequest struct {
	Name    string                `json:"name"`
	Target  targets.TargetProfile `json:"target"`
	Payload circuits.Payload      `json:"payload"`
}

// JobRef identifies a submitted job on the service.
type JobRef struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// JobStatus is the service's view of a job.
type JobStatus struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	BeganAt string `json:"began_at,omitempty"`
	EndedAt string `json:"ended_at,omitempty"`
}

// IsTerminal reports whether the remote status is final.
func (s JobStatus) IsTerminal() bool {
	switch s.Status {
	case RemoteStatusSucceeded, RemoteStatusFailed, RemoteStatusCancelled:
		return true
	default:
		return false
	}
}

// Result is the estimation result document. Known fields are typed for
// report formatting; the raw document is preserved so unknown fields
// survive round trips into reports.
type Result struct {
	PhysicalQubits         int64   `json:"physical_qubits"`
	AlgorithmicQubits      int64   `json:"algorithmic_physical_qubits"`
	LogicalQubits          int64   `json:"logical_qubits"`
	CodeDistance           int64   `json:"code_distance"`
	PhysicalPerLogical     int64   `json:"physical_qubits_per_logical_qubit"`
	LogicalCycleTimeNs     float64 `json:"logical_cycle_time_ns"`
	LogicalErrorRate       float64 `json:"logical_error_rate"`
	TFactoryCount          int64   `json:"t_factory_count"`
	TFactoryQubits         int64   `json:"physical_qubits_per_t_factory"`
	TFactoryRuntimeNs      float64 `json:"t_factory_runtime_ns"`
	TStatesPerInvocation   int64   `json:"t_states_per_invocation"`
	TCount                 int64   `json:"t_count"`
	RotationCount          int64   `json:"rotation_count"`
	RuntimeNs              float64 `json:"runtime_ns"`
	ErrorBudgetLogical     float64 `json:"error_budget_logical"`
	ErrorBudgetTStates     float64 `json:"error_budget_t_states"`
	ErrorBudgetRotations   float64 `json:"error_budget_rotations"`

	// RawJSON is the unmodified result document from the service.
	RawJSON json.RawMessage `json:"raw,omitempty"`
}

// Quota is the service's per-region usage counters.
type Quota struct {
	Region        string `json:"region"`
	JobsSubmitted int64  `json:"jobs_submitted"`
	JobsRemaining int64  `json:"jobs_remaining"`
	ResetAt       string `json:"reset_at,omitempty"`
}
