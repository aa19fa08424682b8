package estimator

import (
	"context"
	"sync"
	"time"
)

// reachabilityTTL bounds how often the monitor pings the service. The
// work processor calls IsReachable on every pass, so results are cached.
const reachabilityTTL = 30 * time.Second

// ServiceMonitor answers reachability and quota questions about the
// estimation service. It satisfies the work processor's gating interface.
type ServiceMonitor struct {
	client *Client

	mu           sync.Mutex
	lastCheck    time.Time
	wasReachable bool
}

// NewServiceMonitor creates a monitor over an estimator client.
func NewServiceMonitor(client *Client) *ServiceMonitor {
	return &ServiceMonitor{client: client}
}

// IsReachable returns true if the service answered a recent health check.
func (m *ServiceMonitor) IsReachable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCheck) < reachabilityTTL {
		return m.wasReachable
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m.wasReachable = m.client.Ping(ctx) == nil
	m.lastCheck = time.Now()
	return m.wasReachable
}

// HasQuota returns true if the service reports remaining submission quota.
// Unknown quota counts as available; the service enforces the real limit
// on submission.
func (m *ServiceMonitor) HasQuota() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	quota, err := m.client.GetQuota(ctx)
	if err != nil {
		return true
	}
	return quota.JobsRemaining > 0
}

// RefreshQuota forces a quota fetch so the cached copy stays current.
func (m *ServiceMonitor) RefreshQuota(ctx context.Context) error {
	_, err := m.client.GetQuota(ctx)
	return err
}
