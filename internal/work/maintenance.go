package work

import (
	"context"
	"fmt"
	"time"
)

// ClientDataInterface defines the cache repository surface for maintenance work.
type ClientDataInterface interface {
	DeleteAllExpired() (map[string]int64, error)
}

// BackupRunnerInterface runs a full backup cycle.
type BackupRunnerInterface interface {
	Run(ctx context.Context) error
}

// EventPublisherInterface publishes maintenance events.
type EventPublisherInterface interface {
	PublishCacheCleaned(rowsDeleted int64)
}

// MaintenanceDeps contains all dependencies for maintenance work types
type MaintenanceDeps struct {
	ClientData ClientDataInterface
	Backup     BackupRunnerInterface
	Events     EventPublisherInterface
}

// RegisterMaintenanceWorkTypes registers cache cleanup and backup work types.
func RegisterMaintenanceWorkTypes(registry *Registry, deps *MaintenanceDeps) {
	// cache:cleanup - Purge expired cache rows daily
	registry.Register(&WorkType{
		ID:       "cache:cleanup",
		Priority: PriorityLow,
		Gating:   AnyTime,
		Interval: 24 * time.Hour,
		FindSubjects: func() []string {
			return []string{""}
		},
		Execute: func(ctx context.Context, subject string) error {
			deleted, err := deps.ClientData.DeleteAllExpired()
			if err != nil {
				return fmt.Errorf("failed to clean up cache: %w", err)
			}

			var total int64
			for _, n := range deleted {
				total += n
			}
			if deps.Events != nil {
				deps.Events.PublishCacheCleaned(total)
			}
			return nil
		},
	})

	// backup:upload - On-demand only; the scheduler and the API call
	// ExecuteNow so backups never compete with estimation work.
	if deps.Backup != nil {
		registry.Register(&WorkType{
			ID:       "backup:upload",
			Priority: PriorityLow,
			Gating:   AnyTime,
			FindSubjects: func() []string {
				return nil
			},
			Execute: func(ctx context.Context, subject string) error {
				if err := deps.Backup.Run(ctx); err != nil {
					return fmt.Errorf("failed to run backup: %w", err)
				}
				return nil
			},
		})
	}
}
