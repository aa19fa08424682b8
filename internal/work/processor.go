package work

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Processor executes work items one at a time. It sleeps until triggered
// (by an event, the scheduler tick, or its own completion signal), then
// walks the registered work types in priority order and runs the first
// eligible item: gating satisfied, interval elapsed, dependencies met.
type Processor struct {
	registry   *Registry
	completion *CompletionTracker
	gate       *ServiceGate
	timeout    time.Duration

	trigger chan struct{}
	done    chan struct{}
	stop    chan struct{}
	stopped chan struct{}

	mu         sync.Mutex
	busy       bool // An item is currently executing
	retryQueue []*WorkItem
}

// NewProcessor creates a new work processor.
func NewProcessor(registry *Registry, completion *CompletionTracker, gate *ServiceGate) *Processor {
	return NewProcessorWithTimeout(registry, completion, gate, WorkTimeout)
}

// NewProcessorWithTimeout creates a new work processor with a custom timeout.
// This is primarily used for testing.
func NewProcessorWithTimeout(registry *Registry, completion *CompletionTracker, gate *ServiceGate, timeout time.Duration) *Processor {
	return &Processor{
		registry:   registry,
		completion: completion,
		gate:       gate,
		timeout:    timeout,
		trigger:    make(chan struct{}, 1),
		done:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Run starts the processor loop. This blocks until Stop() is called.
func (p *Processor) Run() {
	defer close(p.stopped)

	for {
		select {
		case <-p.stop:
			return
		case <-p.trigger:
			p.processOne()
		case <-p.done:
			p.processOne()
		}
	}
}

// Stop stops the processor.
func (p *Processor) Stop() {
	close(p.stop)
	<-p.stopped
}

// Trigger wakes up the processor to check for work.
// This is non-blocking and can be called from any goroutine.
func (p *Processor) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
		// Trigger already pending
	}
}

// ExecuteNow immediately executes a specific work type, bypassing gating
// checks. This is used for manual triggers via the API and the backup cron.
func (p *Processor) ExecuteNow(workTypeID string, subject string) error {
	wt := p.registry.Get(workTypeID)
	if wt == nil {
		return fmt.Errorf("unknown work type: %s", workTypeID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	return wt.Execute(ctx, subject)
}

// processOne finds the next eligible work item and starts it. At most one
// item runs at a time; completion signals the loop to look for more work.
func (p *Processor) processOne() {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return
	}

	item, wt := p.findNextWork()
	if item == nil {
		item, wt = p.popRetryQueueLocked()
	}
	if item == nil {
		p.mu.Unlock()
		return
	}

	p.busy = true
	p.mu.Unlock()

	go p.runItem(item, wt)
}

// runItem executes one work item, records the outcome, and signals the loop.
func (p *Processor) runItem(item *WorkItem, wt *WorkType) {
	defer func() {
		p.mu.Lock()
		p.busy = false
		p.mu.Unlock()

		select {
		case p.done <- struct{}{}:
		default:
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err := wt.Execute(ctx, item.Subject)
	if err == nil {
		p.completion.MarkCompleted(item)
		return
	}

	if ctx.Err() == context.DeadlineExceeded {
		log.Error().Str("work", item.ID).Msg("work timed out")
	} else {
		log.Error().Err(err).Str("work", item.ID).Msg("work failed")
	}

	item.Retries++
	if item.Retries >= MaxRetries {
		log.Warn().Str("work", item.ID).Int("retries", item.Retries).Msg("max retries reached, skipping")
		return
	}

	p.mu.Lock()
	p.retryQueue = append(p.retryQueue, item)
	p.mu.Unlock()
}

// findNextWork returns the highest-priority eligible work item, or nil.
func (p *Processor) findNextWork() (*WorkItem, *WorkType) {
	for _, wt := range p.registry.ByPriority() {
		subjects := wt.FindSubjects()

		for _, subject := range subjects {
			if !p.gate.CanExecute(wt.Gating, subject) {
				continue
			}

			if wt.Interval > 0 && !p.completion.IsStale(wt.ID, subject, wt.Interval) {
				continue
			}

			if !p.dependenciesMet(wt, subject) {
				continue
			}

			return NewWorkItem(wt, subject), wt
		}
	}

	return nil, nil
}

// dependenciesMet checks if all dependencies for a work type have been
// completed. For per-job work, dependencies are scoped to the same subject.
func (p *Processor) dependenciesMet(wt *WorkType, subject string) bool {
	for _, depID := range wt.DependsOn {
		if _, exists := p.completion.GetCompletion(depID, subject); !exists {
			return false
		}
	}

	return true
}

// popRetryQueueLocked takes the oldest retry item. Caller holds p.mu.
func (p *Processor) popRetryQueueLocked() (*WorkItem, *WorkType) {
	for len(p.retryQueue) > 0 {
		item := p.retryQueue[0]
		p.retryQueue = p.retryQueue[1:]

		// Work types can be unregistered while items wait for retry
		if wt := p.registry.Get(item.TypeID); wt != nil {
			return item, wt
		}
	}

	return nil, nil
}
