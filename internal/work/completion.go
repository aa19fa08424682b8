package work

import (
	"sync"
	"time"
)

// CompletionTracker records when each work type/subject pair last finished.
// The processor consults it to decide whether interval work is due again and
// whether a work type's dependencies have run for a given job.
type CompletionTracker struct {
	completions map[CompletionKey]time.Time
	mu          sync.RWMutex
}

// NewCompletionTracker creates a new completion tracker.
func NewCompletionTracker() *CompletionTracker {
	return &CompletionTracker{
		completions: make(map[CompletionKey]time.Time),
	}
}

// MarkCompleted records that a work item has been completed.
func (t *CompletionTracker) MarkCompleted(item *WorkItem) {
	t.MarkCompletedAt(item, time.Now())
}

// MarkCompletedAt records that a work item was completed at a specific time.
// This is primarily used for testing.
func (t *CompletionTracker) MarkCompletedAt(item *WorkItem, completedAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.completions[NewCompletionKey(item)] = completedAt
}

// GetCompletion returns when a work type/subject combination was last
// completed, and whether it has completed at all.
func (t *CompletionTracker) GetCompletion(typeID, subject string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	completedAt, exists := t.completions[CompletionKey{TypeID: typeID, Subject: subject}]
	return completedAt, exists
}

// IsStale returns true if the work should be re-executed based on the interval.
// Returns true if:
// - Work has never been completed
// - Interval is zero (on-demand work, always eligible)
// - Time since last completion exceeds the interval
func (t *CompletionTracker) IsStale(typeID, subject string, interval time.Duration) bool {
	if interval == 0 {
		return true
	}

	completedAt, exists := t.GetCompletion(typeID, subject)
	if !exists {
		return true
	}

	return time.Since(completedAt) > interval
}

// Clear removes the completion record for a specific work type/subject.
// Used when a job is resubmitted so its polling work becomes due again.
func (t *CompletionTracker) Clear(typeID, subject string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.completions, CompletionKey{TypeID: typeID, Subject: subject})
}

// ClearByTypeID removes completion records for every subject of a work type.
func (t *CompletionTracker) ClearByTypeID(typeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key := range t.completions {
		if key.TypeID == typeID {
			delete(t.completions, key)
		}
	}
}
