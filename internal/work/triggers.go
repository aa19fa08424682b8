package work

import (
	"github.com/helioncore/qrex/internal/events"
)

// TriggerDeps contains all dependencies for triggers
type TriggerDeps struct {
	EventBus   *events.Bus
	Processor  *Processor
	Completion *CompletionTracker
}

// RegisterTriggers registers event handlers that trigger work processing
func RegisterTriggers(deps *TriggerDeps) {
	// JobSubmitted -> the poll interval should not delay the first status
	// check of a fresh job
	deps.EventBus.Subscribe(events.JobSubmitted, func(event *events.Event) {
		deps.Completion.Clear("job:poll", "")
		deps.Processor.Trigger()
	})

	// JobStatusChanged -> the stream saw movement; poll to pick up results
	deps.EventBus.Subscribe(events.JobStatusChanged, func(event *events.Event) {
		deps.Completion.Clear("job:poll", "")
		deps.Processor.Trigger()
	})

	// JobCompleted -> submission slots may have freed up
	deps.EventBus.Subscribe(events.JobCompleted, func(event *events.Event) {
		deps.Processor.Trigger()
	})

	// JobFailed -> same; pending work may now be submittable
	deps.EventBus.Subscribe(events.JobFailed, func(event *events.Event) {
		deps.Processor.Trigger()
	})
}
