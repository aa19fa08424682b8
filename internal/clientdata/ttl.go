package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Results of a succeeded job never change upstream, so the TTL here is
	// generous. It only bounds how long we keep them in cache.db; the jobs
	// ledger keeps them forever.
	TTLEstimatorResult = 30 * 24 * time.Hour

	// Target profiles (qubit model presets published by the service)
	// change with service releases, not daily.
	TTLTargetProfile = 7 * 24 * time.Hour

	// Quota counters move with every submission.
	TTLServiceQuota = time.Hour
)
