package api

import (
	"encoding/json"
	"net/http"

	"github.com/dialview/icws-monitor/internal/stats"
	"github.com/rs/zerolog"
)

// StatsHandler serves the cached statistics snapshot over REST
type StatsHandler struct {
	stats  *stats.Aggregator
	logger zerolog.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(agg *stats.Aggregator, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  agg,
		logger: logger.With().Str("component", "stats_handler").Logger(),
	}
}

// GetQueueStats returns the queue statistics for one span
// GET /api/stats/queue?span=daily|weekly
func (h *StatsHandler) GetQueueStats(w http.ResponseWriter, r *http.Request) {
	span := stats.Span(r.URL.Query().Get("span"))
	if span == "" {
		span = stats.SpanDaily
	}
	if span != stats.SpanDaily && span != stats.SpanWeekly {
		http.Error(w, "span must be daily or weekly", http.StatusBadRequest)
		return
	}

	snapshot := h.stats.Snapshot()
	payload := snapshot.Queue[span]
	if payload == nil {
		payload = map[string]stats.QueueStats{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"span":      span,
		"timestamp": snapshot.Timestamp,
		"queue":     payload,
	})
}

// GetAgentStats returns the agent availability statistics
// GET /api/stats/agents
func (h *StatsHandler) GetAgentStats(w http.ResponseWriter, r *http.Request) {
	snapshot := h.stats.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"timestamp": snapshot.Timestamp,
		"agents":    snapshot.Agents,
	})
}

// GetSnapshot returns the full statistics snapshot as broadcast to dashboards
// GET /api/stats
func (h *StatsHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats.Snapshot())
}
