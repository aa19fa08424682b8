package estimator

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/helioncore/qrex/internal/events"
)

const (
	// WebSocket connection constants
	writeWait   = 10 * time.Second
	dialTimeout = 30 * time.Second

	// Reconnection constants
	baseReconnectDelay   = 5 * time.Second
	maxReconnectDelay    = 5 * time.Minute
	maxReconnectAttempts = 10
)

// JobStatusStream receives live job status updates from the estimation
// service over a websocket, so pending jobs surface transitions without
// waiting for the next poll cycle.
type JobStatusStream struct {
	// Connection
	url        string
	apiKey     string
	httpClient *http.Client // Reusable HTTP client configured for HTTP/1.1
	conn       *websocket.Conn
	connCtx    context.Context
	cancelFunc context.CancelFunc
	mu         sync.RWMutex

	// Dependencies
	eventBus *events.Bus
	log      zerolog.Logger

	// State
	connected    bool
	reconnecting bool
	stopChan     chan struct{}
	stopped      bool

	// Last seen status per remote job ID (thread-safe)
	statusCache map[string]string
	cacheMu     sync.RWMutex
}

// createHTTP1Client creates an HTTP client that forces HTTP/1.1.
// WebSocket requires HTTP/1.1 for the upgrade handshake, but front
// proxies often negotiate HTTP/2 via TLS ALPN.
func createHTTP1Client() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSClientConfig: &tls.Config{
				// Force HTTP/1.1 by only advertising http/1.1 in ALPN
				NextProtos: []string{"http/1.1"},
			},
			ForceAttemptHTTP2: false,
		},
	}
}

// NewJobStatusStream creates a new job status stream client.
func NewJobStatusStream(url, apiKey string, eventBus *events.Bus, log zerolog.Logger) *JobStatusStream {
	return &JobStatusStream{
		url:         url,
		apiKey:      apiKey,
		httpClient:  createHTTP1Client(),
		eventBus:    eventBus,
		log:         log.With().Str("component", "job_status_stream").Logger(),
		statusCache: make(map[string]string),
		stopChan:    make(chan struct{}),
	}
}

// Start initializes the WebSocket connection and starts the read loop
func (ws *JobStatusStream) Start() error {
	ws.log.Info().Msg("Starting job status stream")

	if err := ws.Connect(); err != nil {
		ws.log.Warn().Err(err).Msg("Initial WebSocket connection failed, will retry in background")
		go ws.reconnectLoop()
		return err
	}

	ws.mu.RLock()
	ctx := ws.connCtx
	ws.mu.RUnlock()
	go ws.readMessages(ctx)

	ws.log.Info().Msg("Job status stream started successfully")
	return nil
}

// Stop gracefully shuts down the WebSocket connection
func (ws *JobStatusStream) Stop() error {
	ws.mu.Lock()
	if ws.stopped {
		ws.mu.Unlock()
		return nil
	}
	ws.stopped = true
	ws.mu.Unlock()

	ws.log.Info().Msg("Stopping job status stream")

	close(ws.stopChan)

	return ws.Disconnect()
}

// Connect establishes the WebSocket connection and subscribes to the jobs channel
func (ws *JobStatusStream) Connect() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.log.Info().Str("url", ws.url).Msg("Connecting to estimator status stream")

	dialCtx, dialCancel := context.WithTimeout(context.Background(), dialTimeout)
	defer dialCancel()

	opts := &websocket.DialOptions{
		HTTPClient: ws.httpClient,
	}
	if ws.apiKey != "" {
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + ws.apiKey}}
	}

	conn, _, err := websocket.Dial(dialCtx, ws.url, opts)
	if err != nil {
		return fmt.Errorf("failed to dial WebSocket: %w", err)
	}

	// Long-lived context for the connection, cancelled on disconnect
	connCtx, connCancel := context.WithCancel(context.Background())
	ws.conn = conn
	ws.connCtx = connCtx
	ws.cancelFunc = connCancel
	ws.connected = true

	if err := ws.subscribe(connCtx); err != nil {
		connCancel()
		conn.Close(websocket.StatusNormalClosure, "subscribe failed")
		ws.conn = nil
		ws.connCtx = nil
		ws.cancelFunc = nil
		ws.connected = false
		return fmt.Errorf("failed to subscribe to jobs channel: %w", err)
	}

	ws.log.Info().Msg("Connected to estimator status stream")
	return nil
}

// Disconnect closes the WebSocket connection
func (ws *JobStatusStream) Disconnect() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.conn == nil {
		return nil
	}

	// Cancel the connection context to unblock any pending Read operations
	if ws.cancelFunc != nil {
		ws.cancelFunc()
		ws.cancelFunc = nil
	}

	err := ws.conn.Close(websocket.StatusNormalClosure, "")

	ws.conn = nil
	ws.connCtx = nil
	ws.connected = false

	if err != nil {
		return fmt.Errorf("error closing WebSocket: %w", err)
	}

	return nil
}

// IsConnected reports whether the stream currently has a live connection.
func (ws *JobStatusStream) IsConnected() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.connected
}

// LastStatus returns the last streamed status for a remote job ID.
func (ws *JobStatusStream) LastStatus(remoteID string) (string, bool) {
	ws.cacheMu.RLock()
	defer ws.cacheMu.RUnlock()
	status, ok := ws.statusCache[remoteID]
	return status, ok
}

// subscribe sends the subscription message for the jobs channel
func (ws *JobStatusStream) subscribe(ctx context.Context) error {
	subscribeMsg := map[string]string{"subscribe": "jobs"}

	data, err := json.Marshal(subscribeMsg)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription message: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	if err := ws.conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to send subscription message: %w", err)
	}

	return nil
}

// statusFrame is a single update on the jobs channel.
type statusFrame struct {
	Channel string `json:"channel"`
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// readMessages continuously reads messages from the WebSocket
func (ws *JobStatusStream) readMessages(ctx context.Context) {
	defer func() {
		ws.log.Info().Msg("Read loop stopped")
		// Attempt reconnection if not intentionally stopped
		ws.mu.RLock()
		stopped := ws.stopped
		ws.mu.RUnlock()
		if !stopped {
			go ws.reconnectLoop()
		}
	}()

	for {
		select {
		case <-ws.stopChan:
			return
		case <-ctx.Done():
			ws.log.Debug().Msg("Read loop context cancelled")
			return
		default:
		}

		ws.mu.RLock()
		conn := ws.conn
		ws.mu.RUnlock()

		if conn == nil {
			ws.log.Warn().Msg("Connection is nil, stopping read loop")
			return
		}

		msgType, message, err := conn.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				ws.log.Info().Int("status", int(closeStatus)).Msg("WebSocket closed normally")
			} else if ctx.Err() != nil {
				ws.log.Debug().Msg("Read cancelled by context")
			} else {
				ws.log.Error().Err(err).Msg("Unexpected WebSocket read error")
			}
			return
		}

		if msgType != websocket.MessageText {
			ws.log.Debug().Int("type", int(msgType)).Msg("Ignoring non-text message")
			continue
		}

		if err := ws.handleMessage(message); err != nil {
			ws.log.Error().Err(err).Str("message", string(message)).Msg("Failed to handle WebSocket message")
			// Continue reading despite parse errors
		}
	}
}

// handleMessage parses and processes a status frame
func (ws *JobStatusStream) handleMessage(message []byte) error {
	var frame statusFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		return fmt.Errorf("failed to parse status frame: %w", err)
	}

	if frame.Channel != "jobs" {
		ws.log.Debug().Str("channel", frame.Channel).Msg("Ignoring non-jobs message")
		return nil
	}

	if frame.JobID == "" || frame.Status == "" {
		return fmt.Errorf("status frame missing job_id or status")
	}

	ws.cacheMu.Lock()
	old := ws.statusCache[frame.JobID]
	ws.statusCache[frame.JobID] = frame.Status
	ws.cacheMu.Unlock()

	if old == frame.Status {
		return nil
	}

	ws.log.Debug().
		Str("remote_id", frame.JobID).
		Str("old_status", old).
		Str("new_status", frame.Status).
		Msg("Streamed job status update")

	if ws.eventBus != nil {
		ws.eventBus.Publish(events.JobStatusChanged, &events.JobStatusChangedData{
			RemoteID:  frame.JobID,
			OldStatus: old,
			NewStatus: frame.Status,
		})
	}

	return nil
}

// reconnectLoop attempts to reconnect with exponential backoff
func (ws *JobStatusStream) reconnectLoop() {
	ws.mu.Lock()
	if ws.reconnecting || ws.stopped {
		ws.mu.Unlock()
		return
	}
	ws.reconnecting = true
	ws.mu.Unlock()

	defer func() {
		ws.mu.Lock()
		ws.reconnecting = false
		ws.mu.Unlock()
	}()

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		// Exponential backoff capped at maxReconnectDelay
		delay := time.Duration(float64(baseReconnectDelay) * math.Pow(2, float64(attempt-1)))
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}

		ws.log.Info().
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Scheduling WebSocket reconnection")

		select {
		case <-ws.stopChan:
			ws.log.Info().Msg("Reconnect loop stopped")
			return
		case <-time.After(delay):
		}

		if err := ws.Connect(); err != nil {
			ws.log.Warn().Err(err).Int("attempt", attempt).Msg("Reconnection attempt failed")
			continue
		}

		ws.mu.RLock()
		ctx := ws.connCtx
		ws.mu.RUnlock()
		go ws.readMessages(ctx)

		ws.log.Info().Int("attempt", attempt).Msg("Reconnected to estimator status stream")
		return
	}

	ws.log.Error().
		Int("max_attempts", maxReconnectAttempts).
		Msg("Giving up on WebSocket reconnection; falling back to polling only")
}
