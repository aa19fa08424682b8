package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusSubmitted.IsTerminal())
	assert.False(t, StatusExecuting.IsTerminal())
	assert.True(t, StatusSucceeded.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusSubmitted, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusExecuting, false},
		{StatusPending, StatusSucceeded, false},
		{StatusSubmitted, StatusExecuting, true},
		// A fast job can finish between polls, skipping the executing state
		{StatusSubmitted, StatusSucceeded, true},
		{StatusSubmitted, StatusFailed, true},
		{StatusExecuting, StatusSucceeded, true},
		{StatusExecuting, StatusCancelled, true},
		{StatusExecuting, StatusSubmitted, false},
		// Terminal states are immutable
		{StatusSucceeded, StatusFailed, false},
		{StatusFailed, StatusPending, false},
		{StatusCancelled, StatusSubmitted, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestCanTransition_SelfTransitionsAreIdempotent(t *testing.T) {
	for _, s := range []Status{
		StatusPending, StatusSubmitted, StatusExecuting,
		StatusSucceeded, StatusFailed, StatusCancelled,
	} {
		assert.True(t, CanTransition(s, s), "%s -> %s", s, s)
	}
}

func TestMapRemoteStatus(t *testing.T) {
	tests := []struct {
		remote string
		want   Status
	}{
		{"Waiting", StatusSubmitted},
		{"Executing", StatusExecuting},
		{"Succeeded", StatusSucceeded},
		{"Failed", StatusFailed},
		{"Cancelled", StatusCancelled},
	}

	for _, tt := range tests {
		got, err := mapRemoteStatus(tt.remote)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := mapRemoteStatus("Paused")
	assert.Error(t, err)
}
