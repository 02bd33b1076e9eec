package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dialview/icws-monitor/internal/stats"
	"github.com/dialview/icws-monitor/internal/store"
	"github.com/dialview/icws-monitor/internal/types"
	"github.com/rs/zerolog"
)

func newTestHandler(t *testing.T) *StatsHandler {
	t.Helper()
	interactions := store.NewCollection[types.Interaction]("interactions")
	agents := store.NewCollection[types.Agent]("agents")

	interactions.Upsert(types.Interaction{
		ID:                 "i-1",
		Workgroup:          types.WorkgroupCSA,
		IsCurrent:          true,
		InQueue:            true,
		CorrectedQueueTime: 42,
	})
	agents.Upsert(types.Agent{
		ID:        "a-1",
		IsCurrent: true,
		Workgroups: []types.Workgroup{
			{ID: "wg-1", Name: types.WorkgroupCSA},
		},
	})

	agg := stats.New(interactions, agents, zerolog.Nop())
	agg.Recompute()
	return NewStatsHandler(agg, zerolog.Nop())
}

func TestGetQueueStatsDefaultsToDaily(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/queue", nil)
	rec := httptest.NewRecorder()
	h.GetQueueStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Span  string                      `json:"span"`
		Queue map[string]stats.QueueStats `json:"queue"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Span != string(stats.SpanDaily) {
		t.Fatalf("span = %s, want daily", body.Span)
	}
	csa := body.Queue[types.WorkgroupCSA]
	if csa.QueueLength != 1 || csa.QueueTime != 42 {
		t.Fatalf("csa queue = %+v", csa)
	}
}

func TestGetQueueStatsRejectsUnknownSpan(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/queue?span=hourly", nil)
	rec := httptest.NewRecorder()
	h.GetQueueStats(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetAgentStats(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/agents", nil)
	rec := httptest.NewRecorder()
	h.GetAgentStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Agents stats.AgentStats `json:"agents"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Agents.CSA.Total != 1 {
		t.Fatalf("csa total = %d, want 1", body.Agents.CSA.Total)
	}
}

func TestGetSnapshotIsBroadcastShape(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	h.GetSnapshot(rec, req)

	var snapshot stats.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snapshot.Type != "stats" {
		t.Fatalf("type = %q, want stats", snapshot.Type)
	}
}
