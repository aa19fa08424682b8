package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/clientdata"
)

// Client for the resource estimation service HTTP API.
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new estimation service client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL, apiKey string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log.With().Str("client", "estimator").Logger(),
		cacheRepo: cacheRepo,
	}
}

// SubmitJob submits an estimation job. The client makes a single attempt;
// retry policy lives in the work processor.
func (c *Client) SubmitJob(ctx context.Context, req JobRequest) (*JobRef, error) {
	if err := req.Target.Validate(); err != nil {
		return nil, fmt.Errorf("invalid target: %w", err)
	}
	if err := req.Payload.Validate(); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}

	var ref JobRef
	if err := c.doJSON(ctx, http.MethodPost, "/v1/jobs", req, &ref); err != nil {
		return nil, err
	}

	c.log.Info().
		Str("remote_id", ref.ID).
		Str("target", req.Target.Name()).
		Str("payload_kind", req.Payload.Kind).
		Msg("Submitted estimation job")

	return &ref, nil
}

// GetJob fetches the current status of a job. Status is never served from
// cache - a stale status is worse than an error.
func (c *Client) GetJob(ctx context.Context, id string) (*JobStatus, error) {
	if id == "" {
		return nil, fmt.Errorf("job id is empty")
	}

	var status JobStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/jobs/"+id, nil, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// GetResults fetches the result document for a succeeded job. Results are
// immutable once a job is terminal, so they are served cache-first keyed by
// the request fingerprint; on API failure a stale cached copy is returned
// if available (stale data > no data).
func (c *Client) GetResults(ctx context.Context, id, fingerprint string) (*Result, error) {
	if id == "" {
		return nil, fmt.Errorf("job id is empty")
	}

	// Check persistent cache for fresh data
	if c.cacheRepo != nil && fingerprint != "" {
		var cached Result
		ok, err := c.cacheRepo.GetIfFresh("estimator_results", fingerprint, &cached)
		if err == nil && ok {
			c.log.Debug().Str("fingerprint", fingerprint).Msg("Cache hit")
			return &cached, nil
		}
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/v1/jobs/"+id+"/results", nil, &raw); err != nil {
		// API failed - try stale cached results as fallback
		if stale, ok := c.getStaleResults(fingerprint); ok {
			c.log.Warn().
				Err(err).
				Str("remote_id", id).
				Msg("API failed, using stale cached results")
			return stale, nil
		}
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	result.RawJSON = raw

	// Cache persistently
	if c.cacheRepo != nil && fingerprint != "" {
		if err := c.cacheRepo.Store("estimator_results", fingerprint, result, clientdata.TTLEstimatorResult); err != nil {
			c.log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Failed to cache results")
		}
	}

	c.log.Info().
		Str("remote_id", id).
		Int64("physical_qubits", result.PhysicalQubits).
		Msg("Fetched results")

	return &result, nil
}

// Cancel requests cancellation of a running job.
func (c *Client) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("job id is empty")
	}

	return c.doJSON(ctx, http.MethodPost, "/v1/jobs/"+id+"/cancel", nil, nil)
}

// GetQuota fetches per-region usage counters, cached for an hour.
func (c *Client) GetQuota(ctx context.Context) (*Quota, error) {
	if c.cacheRepo != nil {
		var cached Quota
		ok, err := c.cacheRepo.GetIfFresh("service_quota", "default", &cached)
		if err == nil && ok {
			return &cached, nil
		}
	}

	var quota Quota
	if err := c.doJSON(ctx, http.MethodGet, "/v1/quota", nil, &quota); err != nil {
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("service_quota", "default", quota, clientdata.TTLServiceQuota); err != nil {
			c.log.Warn().Err(err).Msg("Failed to cache quota")
		}
	}

	return &quota, nil
}

// Ping reports whether the service answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/v1/health", nil, nil)
}

// getStaleResults retrieves cached results even if expired.
func (c *Client) getStaleResults(fingerprint string) (*Result, bool) {
	if c.cacheRepo == nil || fingerprint == "" {
		return nil, false
	}

	var cached Result
	ok, err := c.cacheRepo.Get("estimator_results", fingerprint, &cached)
	if err != nil || !ok {
		return nil, false
	}

	return &cached, true
}

// doJSON performs a JSON request/response round trip against the service.
// A nil out discards the response body.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Include a bounded slice of the body for diagnostics.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d for %s %s: %s", resp.StatusCode, method, path, snippet)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
