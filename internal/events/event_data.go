package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// JobSubmittedData contains data for JobSubmitted events
type JobSubmittedData struct {
	JobID    string `json:"job_id"`
	RemoteID string `json:"remote_id"`
	Target   string `json:"target"`
}

// EventType returns the event type for JobSubmittedData
func (d *JobSubmittedData) EventType() EventType {
	return JobSubmitted
}

// JobStatusChangedData contains data for JobStatusChanged events
type JobStatusChangedData struct {
	JobID     string `json:"job_id"`
	RemoteID  string `json:"remote_id,omitempty"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// EventType returns the event type for JobStatusChangedData
func (d *JobStatusChangedData) EventType() EventType {
	return JobStatusChanged
}

// JobCompletedData contains data for JobCompleted events
type JobCompletedData struct {
	JobID          string  `json:"job_id"`
	Target         string  `json:"target"`
	PhysicalQubits int64   `json:"physical_qubits"`
	RuntimeSeconds float64 `json:"runtime_seconds"`
}

// EventType returns the event type for JobCompletedData
func (d *JobCompletedData) EventType() EventType {
	return JobCompleted
}

// JobFailedData contains data for JobFailed events
type JobFailedData struct {
	JobID  string `json:"job_id"`
	Reason string `json:"reason"`
}

// EventType returns the event type for JobFailedData
func (d *JobFailedData) EventType() EventType {
	return JobFailed
}

// ResultsStoredData contains data for ResultsStored events
type ResultsStoredData struct {
	JobID       string `json:"job_id"`
	Fingerprint string `json:"fingerprint"`
}

// EventType returns the event type for ResultsStoredData
func (d *ResultsStoredData) EventType() EventType {
	return ResultsStored
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// CacheCleanedData contains data for CacheCleaned events
type CacheCleanedData struct {
	RowsDeleted int64 `json:"rows_deleted"`
}

// EventType returns the event type for CacheCleanedData
func (d *CacheCleanedData) EventType() EventType {
	return CacheCleaned
}
