package work

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompletionTracker(t *testing.T) {
	tracker := NewCompletionTracker()

	require.NotNil(t, tracker)
}

func TestCompletionTracker_MarkCompleted(t *testing.T) {
	tracker := NewCompletionTracker()

	item := &WorkItem{
		ID:      "quota:refresh",
		TypeID:  "quota:refresh",
		Subject: "",
	}

	tracker.MarkCompleted(item)

	completed, exists := tracker.GetCompletion(item.TypeID, item.Subject)
	require.True(t, exists)
	assert.WithinDuration(t, time.Now(), completed, time.Second)
}

func TestCompletionTracker_MarkCompleted_PerJob(t *testing.T) {
	tracker := NewCompletionTracker()

	item1 := &WorkItem{
		ID:      "job:poll:8f2c1a9e",
		TypeID:  "job:poll",
		Subject: "8f2c1a9e",
	}
	item2 := &WorkItem{
		ID:      "job:poll:4b7d3c2f",
		TypeID:  "job:poll",
		Subject: "4b7d3c2f",
	}

	tracker.MarkCompleted(item1)

	completed, exists := tracker.GetCompletion(item1.TypeID, item1.Subject)
	require.True(t, exists)
	assert.WithinDuration(t, time.Now(), completed, time.Second)

	// Completions are scoped per subject
	_, exists = tracker.GetCompletion(item2.TypeID, item2.Subject)
	assert.False(t, exists)
}

func TestCompletionTracker_IsStale(t *testing.T) {
	t.Run("returns true when never completed", func(t *testing.T) {
		tracker := NewCompletionTracker()

		stale := tracker.IsStale("quota:refresh", "", time.Hour)
		assert.True(t, stale)
	})

	t.Run("returns false when recently completed", func(t *testing.T) {
		tracker := NewCompletionTracker()
		item := &WorkItem{
			ID:      "quota:refresh",
			TypeID:  "quota:refresh",
			Subject: "",
		}
		tracker.MarkCompleted(item)

		stale := tracker.IsStale("quota:refresh", "", time.Hour)
		assert.False(t, stale)
	})

	t.Run("returns true when interval exceeded", func(t *testing.T) {
		tracker := NewCompletionTracker()
		item := &WorkItem{
			ID:      "cache:cleanup",
			TypeID:  "cache:cleanup",
			Subject: "",
		}

		tracker.MarkCompletedAt(item, time.Now().Add(-25*time.Hour))

		stale := tracker.IsStale("cache:cleanup", "", 24*time.Hour)
		assert.True(t, stale)
	})

	t.Run("returns false when within interval", func(t *testing.T) {
		tracker := NewCompletionTracker()
		item := &WorkItem{
			ID:      "cache:cleanup",
			TypeID:  "cache:cleanup",
			Subject: "",
		}

		tracker.MarkCompletedAt(item, time.Now().Add(-12*time.Hour))

		stale := tracker.IsStale("cache:cleanup", "", 24*time.Hour)
		assert.False(t, stale)
	})

	t.Run("zero interval always returns true", func(t *testing.T) {
		tracker := NewCompletionTracker()
		item := &WorkItem{
			ID:      "backup:upload",
			TypeID:  "backup:upload",
			Subject: "",
		}
		tracker.MarkCompleted(item)

		// On-demand work stays eligible regardless of completions
		stale := tracker.IsStale("backup:upload", "", 0)
		assert.True(t, stale)
	})
}

func TestCompletionTracker_Clear(t *testing.T) {
	tracker := NewCompletionTracker()

	item := &WorkItem{
		ID:      "job:poll:8f2c1a9e",
		TypeID:  "job:poll",
		Subject: "8f2c1a9e",
	}
	tracker.MarkCompleted(item)

	_, exists := tracker.GetCompletion("job:poll", "8f2c1a9e")
	require.True(t, exists)

	tracker.Clear("job:poll", "8f2c1a9e")

	_, exists = tracker.GetCompletion("job:poll", "8f2c1a9e")
	assert.False(t, exists)
}

func TestCompletionTracker_ClearByTypeID(t *testing.T) {
	tracker := NewCompletionTracker()

	tracker.MarkCompleted(&WorkItem{ID: "job:poll:a", TypeID: "job:poll", Subject: "a"})
	tracker.MarkCompleted(&WorkItem{ID: "job:poll:b", TypeID: "job:poll", Subject: "b"})
	tracker.MarkCompleted(&WorkItem{ID: "job:poll", TypeID: "job:poll", Subject: ""})
	tracker.MarkCompleted(&WorkItem{ID: "quota:refresh", TypeID: "quota:refresh", Subject: ""})

	tracker.ClearByTypeID("job:poll")

	_, exists := tracker.GetCompletion("job:poll", "a")
	assert.False(t, exists)
	_, exists = tracker.GetCompletion("job:poll", "b")
	assert.False(t, exists)
	_, exists = tracker.GetCompletion("job:poll", "")
	assert.False(t, exists)

	// Other work types are untouched
	_, exists = tracker.GetCompletion("quota:refresh", "")
	assert.True(t, exists)
}
