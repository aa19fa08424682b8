package work

import (
	"context"
	"fmt"
	"time"
)

// JobsServiceInterface defines the jobs service surface the work types need.
type JobsServiceInterface interface {
	PendingCount() (int, error)
	ActiveCount() (int, error)
	SubmitPending(ctx context.Context) (int, error)
	PollActive(ctx context.Context) (int, error)
}

// QuotaRefresherInterface refreshes the cached service quota.
type QuotaRefresherInterface interface {
	RefreshQuota(ctx context.Context) error
}

// EstimationDeps contains all dependencies for estimation work types
type EstimationDeps struct {
	Jobs         JobsServiceInterface
	Quota        QuotaRefresherInterface
	PollInterval time.Duration
}

// RegisterEstimationWorkTypes registers the job submission and polling
// work types with the registry.
func RegisterEstimationWorkTypes(registry *Registry, deps *EstimationDeps) {
	// job:submit - Push pending jobs to the estimation service
	registry.Register(&WorkType{
		ID:       "job:submit",
		Priority: PriorityCritical,
		Gating:   QuotaAvailable,
		FindSubjects: func() []string {
			count, err := deps.Jobs.PendingCount()
			if err != nil || count == 0 {
				return nil
			}
			return []string{""}
		},
		Execute: func(ctx context.Context, subject string) error {
			submitted, err := deps.Jobs.SubmitPending(ctx)
			if err != nil {
				return fmt.Errorf("failed to submit pending jobs: %w", err)
			}
			if submitted == 0 {
				return fmt.Errorf("no pending jobs could be submitted")
			}
			return nil
		},
	})

	// job:poll - Refresh status of in-flight jobs
	registry.Register(&WorkType{
		ID:       "job:poll",
		Priority: PriorityHigh,
		Gating:   ServiceReachable,
		Interval: deps.PollInterval,
		FindSubjects: func() []string {
			count, err := deps.Jobs.ActiveCount()
			if err != nil || count == 0 {
				return nil
			}
			return []string{""}
		},
		Execute: func(ctx context.Context, subject string) error {
			if _, err := deps.Jobs.PollActive(ctx); err != nil {
				return fmt.Errorf("failed to poll active jobs: %w", err)
			}
			return nil
		},
	})

	// quota:refresh - Keep the cached service quota current
	registry.Register(&WorkType{
		ID:       "quota:refresh",
		Priority: PriorityMedium,
		Gating:   ServiceReachable,
		Interval: time.Hour,
		FindSubjects: func() []string {
			return []string{""}
		},
		Execute: func(ctx context.Context, subject string) error {
			if err := deps.Quota.RefreshQuota(ctx); err != nil {
				return fmt.Errorf("failed to refresh quota: %w", err)
			}
			return nil
		},
	})
}
