package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Poll metrics
	PollCyclesTotal  int64
	PollErrorsTotal  int64
	ReconnectsTotal  int64
	MessagesTotal    int64
	lastPollDuration time.Duration

	// Entity metrics
	InteractionChangesTotal int64
	AgentChangesTotal       int64
	liveInteractions        int
	trackedAgents           int

	// Persistence metrics
	PersistWritesTotal int64
	PersistErrorsTotal int64

	// Push metrics
	PushEnqueuedTotal  int64
	PushAttemptsTotal  int64
	PushFailuresTotal  int64
	PushDeliveredTotal int64

	// Stats metrics
	StatsRecomputesTotal int64
	StatsBroadcastsTotal int64

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	WebSocketErrorsTotal         int64
	activeConnections            int64

	// HTTP metrics
	httpRequestsTotal map[string]map[int]int64 // endpoint -> status -> count

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			httpRequestsTotal: make(map[string]map[int]int64),
			startTime:         time.Now(),
		}
	})
	return instance
}

// RecordPollCycle records a completed poll cycle and its message count
func (m *Metrics) RecordPollCycle(duration time.Duration, messageCount int) {
	m.mu.Lock()
	m.PollCyclesTotal++
	m.MessagesTotal += int64(messageCount)
	m.lastPollDuration = duration
	m.mu.Unlock()
}

// RecordPollError increments the poll error counter
func (m *Metrics) RecordPollError() {
	m.mu.Lock()
	m.PollErrorsTotal++
	m.mu.Unlock()
}

// RecordReconnect increments the reconnect counter
func (m *Metrics) RecordReconnect() {
	m.mu.Lock()
	m.ReconnectsTotal++
	m.mu.Unlock()
}

// RecordEntityChanges adds drained change-log counts
func (m *Metrics) RecordEntityChanges(interactions, agents int) {
	m.mu.Lock()
	m.InteractionChangesTotal += int64(interactions)
	m.AgentChangesTotal += int64(agents)
	m.mu.Unlock()
}

// UpdateEntityCounts updates the live entity gauges
func (m *Metrics) UpdateEntityCounts(liveInteractions, trackedAgents int) {
	m.mu.Lock()
	m.liveInteractions = liveInteractions
	m.trackedAgents = trackedAgents
	m.mu.Unlock()
}

// RecordPersistWrite increments the persistence write counter
func (m *Metrics) RecordPersistWrite() {
	m.mu.Lock()
	m.PersistWritesTotal++
	m.mu.Unlock()
}

// RecordPersistError increments the persistence error counter
func (m *Metrics) RecordPersistError() {
	m.mu.Lock()
	m.PersistErrorsTotal++
	m.mu.Unlock()
}

// RecordPushEnqueued increments the push enqueue counter
func (m *Metrics) RecordPushEnqueued() {
	m.mu.Lock()
	m.PushEnqueuedTotal++
	m.mu.Unlock()
}

// RecordPushAttempt increments the push attempt counter
func (m *Metrics) RecordPushAttempt() {
	m.mu.Lock()
	m.PushAttemptsTotal++
	m.mu.Unlock()
}

// RecordPushFailure increments the push failure counter
func (m *Metrics) RecordPushFailure() {
	m.mu.Lock()
	m.PushFailuresTotal++
	m.mu.Unlock()
}

// RecordPushDelivered adds delivered row counts
func (m *Metrics) RecordPushDelivered(rows int) {
	m.mu.Lock()
	m.PushDeliveredTotal += int64(rows)
	m.mu.Unlock()
}

// RecordStatsRecompute records a stats recompute cycle
func (m *Metrics) RecordStatsRecompute(broadcast bool) {
	m.mu.Lock()
	m.StatsRecomputesTotal++
	if broadcast {
		m.StatsBroadcastsTotal++
	}
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordWebSocketError increments WebSocket error counter
func (m *Metrics) RecordWebSocketError() {
	m.mu.Lock()
	m.WebSocketErrorsTotal++
	m.mu.Unlock()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("icwsmon_uptime_seconds", time.Since(m.startTime).Seconds())

		// Poll metrics
		write("icwsmon_poll_cycles_total", m.PollCyclesTotal)
		write("icwsmon_poll_errors_total", m.PollErrorsTotal)
		write("icwsmon_reconnects_total", m.ReconnectsTotal)
		write("icwsmon_messages_total", m.MessagesTotal)
		write("icwsmon_poll_duration_seconds", m.lastPollDuration.Seconds())

		// Entity metrics
		write("icwsmon_interaction_changes_total", m.InteractionChangesTotal)
		write("icwsmon_agent_changes_total", m.AgentChangesTotal)
		write("icwsmon_live_interactions", m.liveInteractions)
		write("icwsmon_tracked_agents", m.trackedAgents)

		// Persistence metrics
		write("icwsmon_persist_writes_total", m.PersistWritesTotal)
		write("icwsmon_persist_errors_total", m.PersistErrorsTotal)

		// Push metrics
		write("icwsmon_push_enqueued_total", m.PushEnqueuedTotal)
		write("icwsmon_push_attempts_total", m.PushAttemptsTotal)
		write("icwsmon_push_failures_total", m.PushFailuresTotal)
		write("icwsmon_push_delivered_total", m.PushDeliveredTotal)

		// Stats metrics
		write("icwsmon_stats_recomputes_total", m.StatsRecomputesTotal)
		write("icwsmon_stats_broadcasts_total", m.StatsBroadcastsTotal)

		// WebSocket metrics
		write("icwsmon_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("icwsmon_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("icwsmon_websocket_active_connections", m.activeConnections)
		write("icwsmon_websocket_errors_total", m.WebSocketErrorsTotal)

		// HTTP metrics
		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("icwsmon_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
	}
}
