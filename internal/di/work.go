// Package di provides dependency injection for the work processor.
package di

import (
	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/events"
	"github.com/helioncore/qrex/internal/work"
)

// eventPublisherAdapter adapts events.Bus to work.EventPublisherInterface
type eventPublisherAdapter struct {
	bus *events.Bus
}

func (a *eventPublisherAdapter) PublishCacheCleaned(rowsDeleted int64) {
	if a.bus == nil {
		return
	}
	a.bus.Publish(events.CacheCleaned, &events.CacheCleanedData{RowsDeleted: rowsDeleted})
}

// InitializeWork creates and wires up all work processor components
func InitializeWork(container *Container, log zerolog.Logger) {
	registry := work.NewRegistry()
	completion := work.NewCompletionTracker()
	gate := work.NewServiceGate(container.ServiceMonitor)
	processor := work.NewProcessor(registry, completion, gate)

	// Register estimation work types (submission and polling)
	work.RegisterEstimationWorkTypes(registry, &work.EstimationDeps{
		Jobs:         container.JobsService,
		Quota:        container.ServiceMonitor,
		PollInterval: container.Cfg.PollInterval,
	})

	// Register maintenance work types. Backup is nil when offsite backups
	// are disabled, which keeps the backup:upload work type unregistered.
	maintenanceDeps := &work.MaintenanceDeps{
		ClientData: container.ClientDataRepo,
		Events:     &eventPublisherAdapter{bus: container.EventBus},
	}
	if container.CloudBackupService != nil {
		maintenanceDeps.Backup = container.CloudBackupService
	}
	work.RegisterMaintenanceWorkTypes(registry, maintenanceDeps)

	// Wire event-driven triggers so the processor reacts to job lifecycle
	// events instead of waiting for the next tick
	work.RegisterTriggers(&work.TriggerDeps{
		EventBus:   container.EventBus,
		Processor:  processor,
		Completion: completion,
	})

	container.WorkRegistry = registry
	container.WorkCompletion = completion
	container.WorkProcessor = processor
	container.WorkHandlers = work.NewHandlers(processor, registry)

	log.Info().
		Int("work_types", registry.Count()).
		Msg("Work processor initialized")
}
