package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/clientdata"
	"github.com/helioncore/qrex/internal/clients/estimator"
	"github.com/helioncore/qrex/internal/events"
	"github.com/helioncore/qrex/internal/modules/circuits"
	"github.com/helioncore/qrex/internal/modules/targets"
)

// Service coordinates the job lifecycle between the local ledger and the
// remote estimation service.
type Service struct {
	repo     *Repository
	client   *estimator.Client
	eventBus *events.Bus
	log      zerolog.Logger
}

// NewService creates a new jobs service.
func NewService(repo *Repository, client *estimator.Client, eventBus *events.Bus, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		client:   client,
		eventBus: eventBus,
		log:      log.With().Str("service", "jobs").Logger(),
	}
}

// CreateRequest is the input for creating a single job.
type CreateRequest struct {
	Name    string
	GroupID string
	Target  targets.TargetProfile
	Payload circuits.Payload
}

// Create validates the request, fingerprints it, and inserts a pending job.
// If a succeeded job with the same fingerprint already exists, that job is
// returned instead and no new work is created.
func (s *Service) Create(req CreateRequest) (*Job, bool, error) {
	if req.Name == "" {
		return nil, false, fmt.Errorf("job name is required")
	}
	if err := req.Target.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid target: %w", err)
	}
	if err := req.Payload.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid payload: %w", err)
	}

	fingerprint, err := clientdata.Fingerprint(req.Target, req.Payload)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fingerprint job: %w", err)
	}

	existing, err := s.repo.GetByFingerprint(fingerprint, StatusSucceeded)
	if err == nil {
		// The existing job stands in for this request, so it must show up
		// in the requested group's result set alongside fresh members.
		if req.GroupID != "" && existing.GroupID != req.GroupID {
			if err := s.repo.AddToGroup(req.GroupID, existing.ID); err != nil {
				return nil, false, err
			}
		}
		s.log.Debug().
			Str("job_id", existing.ID).
			Str("fingerprint", fingerprint).
			Msg("Reusing succeeded job for identical request")
		return existing, true, nil
	}
	if err != ErrNotFound {
		return nil, false, err
	}

	targetJSON, err := json.Marshal(req.Target)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal target: %w", err)
	}
	payloadJSON, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job := &Job{
		ID:          uuid.New().String(),
		Name:        req.Name,
		GroupID:     req.GroupID,
		TargetName:  req.Target.Name(),
		Fingerprint: fingerprint,
		Status:      StatusPending,
		TargetJSON:  string(targetJSON),
		PayloadKind: req.Payload.Kind,
		PayloadJSON: string(payloadJSON),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(job); err != nil {
		return nil, false, err
	}

	s.log.Info().
		Str("job_id", job.ID).
		Str("target", job.TargetName).
		Str("payload_kind", job.PayloadKind).
		Msg("Job created")

	return job, false, nil
}

// BatchRequest creates one job per target against a shared payload.
type BatchRequest struct {
	Name    string
	Targets []targets.TargetProfile
	Payload circuits.Payload
}

// CreateBatch creates a job group for frontier comparisons across targets.
// Deduplicated members join the group result set without new work.
func (s *Service) CreateBatch(req BatchRequest) (string, []*Job, error) {
	if len(req.Targets) == 0 {
		return "", nil, fmt.Errorf("batch requires at least one target")
	}

	groupID := uuid.New().String()
	created := make([]*Job, 0, len(req.Targets))

	for i, target := range req.Targets {
		job, deduped, err := s.Create(CreateRequest{
			Name:    fmt.Sprintf("%s [%s]", req.Name, target.Name()),
			GroupID: groupID,
			Target:  target,
			Payload: req.Payload,
		})
		if err != nil {
			return "", nil, fmt.Errorf("batch member %d (%s): %w", i, target.Name(), err)
		}
		if deduped {
			s.log.Debug().
				Str("group_id", groupID).
				Str("job_id", job.ID).
				Msg("Batch member satisfied by existing results")
		}
		created = append(created, job)
	}

	return groupID, created, nil
}

// Submit sends a pending job to the remote service and records its remote
// ID. Submission failures leave the job pending so the work processor can
// retry; the error is recorded on the job for visibility.
func (s *Service) Submit(ctx context.Context, id string) (*Job, error) {
	job, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if job.Status != StatusPending {
		return nil, fmt.Errorf("%w: job %s is %s, not pending", ErrIllegalTransition, id, job.Status)
	}

	var target targets.TargetProfile
	if err := json.Unmarshal([]byte(job.TargetJSON), &target); err != nil {
		return nil, fmt.Errorf("failed to decode stored target for job %s: %w", id, err)
	}
	var payload circuits.Payload
	if err := json.Unmarshal([]byte(job.PayloadJSON), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode stored payload for job %s: %w", id, err)
	}

	ref, err := s.client.SubmitJob(ctx, estimator.JobRequest{
		Name:    job.Name,
		Target:  target,
		Payload: payload,
	})
	if err != nil {
		if setErr := s.repo.SetError(id, err.Error()); setErr != nil {
			s.log.Error().Err(setErr).Str("job_id", id).Msg("Failed to record submission error")
		}
		return nil, fmt.Errorf("failed to submit job %s: %w", id, err)
	}

	if err := s.repo.MarkSubmitted(id, ref.ID); err != nil {
		return nil, err
	}

	s.eventBus.Publish(events.JobSubmitted, &events.JobSubmittedData{
		JobID:    id,
		RemoteID: ref.ID,
		Target:   job.TargetName,
	})

	s.log.Info().
		Str("job_id", id).
		Str("remote_id", ref.ID).
		Msg("Job submitted")

	return s.repo.Get(id)
}

// Poll fetches the remote status of a job and advances the local record.
// Terminal jobs are returned as-is without contacting the service.
func (s *Service) Poll(ctx context.Context, id string) (*Job, error) {
	job, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		return job, nil
	}
	if job.RemoteID == "" {
		return job, nil
	}

	remote, err := s.client.GetJob(ctx, job.RemoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to poll job %s: %w", id, err)
	}

	newStatus, err := mapRemoteStatus(remote.Status)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", id, err)
	}
	if newStatus == job.Status {
		return job, nil
	}

	if err := s.repo.Transition(id, job.Status, newStatus); err != nil {
		return nil, err
	}

	s.eventBus.Publish(events.JobStatusChanged, &events.JobStatusChangedData{
		JobID:     id,
		RemoteID:  job.RemoteID,
		OldStatus: string(job.Status),
		NewStatus: string(newStatus),
	})

	switch newStatus {
	case StatusSucceeded:
		if err := s.storeResults(ctx, job); err != nil {
			// The job is already marked succeeded; results can be
			// re-fetched later via the result cache or the service.
			s.log.Error().Err(err).Str("job_id", id).Msg("Failed to store results")
		}
	case StatusFailed:
		reason := remote.Error
		if reason == "" {
			reason = "job failed on the estimation service"
		}
		if err := s.repo.SetError(id, reason); err != nil {
			s.log.Error().Err(err).Str("job_id", id).Msg("Failed to record failure reason")
		}
		s.eventBus.Publish(events.JobFailed, &events.JobFailedData{
			JobID:  id,
			Reason: reason,
		})
	}

	s.log.Info().
		Str("job_id", id).
		Str("old_status", string(job.Status)).
		Str("new_status", string(newStatus)).
		Msg("Job status changed")

	return s.repo.Get(id)
}

// PollActive polls every non-terminal submitted or executing job. Used by
// the work processor on its poll tick. Returns the number of jobs whose
// status changed.
func (s *Service) PollActive(ctx context.Context) (int, error) {
	active, err := s.repo.ListActive(StatusSubmitted, StatusExecuting)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, job := range active {
		before := job.Status
		after, err := s.Poll(ctx, job.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("job_id", job.ID).Msg("Poll failed")
			continue
		}
		if after.Status != before {
			changed++
		}
	}

	return changed, nil
}

// storeResults pulls the result document for a succeeded job, persists it
// in the ledger, and announces it.
func (s *Service) storeResults(ctx context.Context, job *Job) error {
	result, err := s.client.GetResults(ctx, job.RemoteID, job.Fingerprint)
	if err != nil {
		return err
	}

	doc := result.RawJSON
	if len(doc) == 0 {
		doc, err = json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal results for job %s: %w", job.ID, err)
		}
	}

	if err := s.repo.StoreResult(job.ID, doc); err != nil {
		return err
	}

	s.eventBus.Publish(events.ResultsStored, &events.ResultsStoredData{
		JobID:       job.ID,
		Fingerprint: job.Fingerprint,
	})
	s.eventBus.Publish(events.JobCompleted, &events.JobCompletedData{
		JobID:          job.ID,
		Target:         job.TargetName,
		PhysicalQubits: result.PhysicalQubits,
		RuntimeSeconds: result.RuntimeNs / 1e9,
	})

	return nil
}

// Cancel stops a job. Pending jobs are cancelled locally; in-flight jobs
// are cancelled on the service first. Terminal jobs cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (*Job, error) {
	job, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: job %s is already %s", ErrIllegalTransition, id, job.Status)
	}

	if job.Status != StatusPending && job.RemoteID != "" {
		if err := s.client.Cancel(ctx, job.RemoteID); err != nil {
			return nil, fmt.Errorf("failed to cancel job %s on service: %w", id, err)
		}
	}

	if err := s.repo.Transition(id, job.Status, StatusCancelled); err != nil {
		return nil, err
	}

	s.eventBus.Publish(events.JobStatusChanged, &events.JobStatusChangedData{
		JobID:     id,
		RemoteID:  job.RemoteID,
		OldStatus: string(job.Status),
		NewStatus: string(StatusCancelled),
	})

	s.log.Info().Str("job_id", id).Msg("Job cancelled")

	return s.repo.Get(id)
}

// Get returns a single job.
func (s *Service) Get(id string) (*Job, error) {
	return s.repo.Get(id)
}

// List returns jobs, optionally filtered by status.
func (s *Service) List(status Status, limit int) ([]*Job, error) {
	return s.repo.List(status, limit)
}

// Group returns all jobs in a batch group.
func (s *Service) Group(groupID string) ([]*Job, error) {
	return s.repo.ListByGroup(groupID)
}

// Results returns the stored result document for a job, parsed into the
// typed result alongside the raw JSON.
func (s *Service) Results(id string) (*estimator.Result, error) {
	job, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if job.Status != StatusSucceeded {
		return nil, fmt.Errorf("job %s has no results (status %s)", id, job.Status)
	}

	doc, err := s.repo.GetResult(id)
	if err != nil {
		return nil, err
	}

	var result estimator.Result
	if err := json.Unmarshal(doc, &result); err != nil {
		return nil, fmt.Errorf("failed to decode results for job %s: %w", id, err)
	}
	result.RawJSON = doc

	return &result, nil
}

// PendingCount returns how many jobs are waiting for submission. Used by
// the work processor to decide whether a submit pass is needed.
func (s *Service) PendingCount() (int, error) {
	pending, err := s.repo.List(StatusPending, 0)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// ActiveCount returns how many jobs are in flight on the service.
func (s *Service) ActiveCount() (int, error) {
	active, err := s.repo.ListActive(StatusSubmitted, StatusExecuting)
	if err != nil {
		return 0, err
	}
	return len(active), nil
}

// SubmitPending submits every pending job, oldest first. Returns the
// number submitted; individual failures are logged and skipped so one bad
// job cannot block the queue.
func (s *Service) SubmitPending(ctx context.Context) (int, error) {
	pending, err := s.repo.ListActive(StatusPending)
	if err != nil {
		return 0, err
	}

	submitted := 0
	for _, job := range pending {
		if _, err := s.Submit(ctx, job.ID); err != nil {
			s.log.Warn().Err(err).Str("job_id", job.ID).Msg("Submission failed, will retry")
			continue
		}
		submitted++
	}

	return submitted, nil
}
