package stats

import (
	"testing"
	"time"

	"github.com/dialview/icws-monitor/internal/store"
	"github.com/dialview/icws-monitor/internal/types"
	"github.com/rs/zerolog"
)

func newTestAggregator() (*Aggregator, *store.Collection[types.Interaction], *store.Collection[types.Agent]) {
	interactions := store.NewCollection[types.Interaction]("interactions")
	agents := store.NewCollection[types.Agent]("agents")
	a := New(interactions, agents, zerolog.Nop())
	return a, interactions, agents
}

func TestQueueStatsEmpty(t *testing.T) {
	a, _, _ := newTestAggregator()
	a.Recompute()

	snap := a.Snapshot()
	got := snap.Queue[SpanDaily][types.WorkgroupCSA]
	if got.LongestID != nil {
		t.Errorf("expected null longest id, got %v", *got.LongestID)
	}
	if got.QueueTime != 0 || got.QueueLength != 0 {
		t.Errorf("expected zeroed queue stats, got %+v", got)
	}
	if got.AbandonRate != 0 || got.AbandonedLength != 0 || got.CompletedLength != 0 {
		t.Errorf("expected zeroed rate fields, got %+v", got)
	}
}

func TestQueueStatsLongestWaiting(t *testing.T) {
	a, interactions, _ := newTestAggregator()

	interactions.Insert(types.Interaction{
		ID: "short", Workgroup: types.WorkgroupCSA,
		IsCurrent: true, InQueue: true, CorrectedQueueTime: 10,
	})
	interactions.Insert(types.Interaction{
		ID: "long", Workgroup: types.WorkgroupCSA,
		IsCurrent: true, InQueue: true, CorrectedQueueTime: 90,
	})
	interactions.Insert(types.Interaction{
		ID: "other-wg", Workgroup: types.WorkgroupPartnerService,
		IsCurrent: true, InQueue: true, CorrectedQueueTime: 500,
	})

	a.Recompute()
	got := a.Snapshot().Queue[SpanDaily][types.WorkgroupCSA]

	if got.LongestID == nil || *got.LongestID != "long" {
		t.Errorf("expected longest waiting id long, got %v", got.LongestID)
	}
	if got.QueueTime != 90 {
		t.Errorf("expected queue time 90, got %d", got.QueueTime)
	}
	if got.QueueLength != 2 {
		t.Errorf("expected queue length 2, got %d", got.QueueLength)
	}
}

func TestAbandonRateRounding(t *testing.T) {
	a, interactions, _ := newTestAggregator()
	now := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	a.SetClock(func() time.Time { return now })

	end := now.Add(-time.Hour)
	interactions.Insert(types.Interaction{
		ID: "ab1", Workgroup: types.WorkgroupCSA, EndDate: &end, IsAbandoned: true,
	})
	for _, id := range []string{"c1", "c2", "c3"} {
		interactions.Insert(types.Interaction{
			ID: id, Workgroup: types.WorkgroupCSA, EndDate: &end, IsCompleted: true,
		})
	}

	a.Recompute()
	got := a.Snapshot().Queue[SpanDaily][types.WorkgroupCSA]

	// 1 abandoned / 3 completed
	if got.AbandonRate != 33.33 {
		t.Errorf("expected abandon rate 33.33, got %v", got.AbandonRate)
	}
	if got.AbandonedLength != 1 || got.CompletedLength != 3 {
		t.Errorf("expected 1 abandoned, 3 completed, got %+v", got)
	}
}

func TestDailyWindowExcludesYesterday(t *testing.T) {
	a, interactions, _ := newTestAggregator()
	now := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	a.SetClock(func() time.Time { return now })

	yesterday := now.AddDate(0, 0, -1)
	interactions.Insert(types.Interaction{
		ID: "old", Workgroup: types.WorkgroupCSA, EndDate: &yesterday, IsCompleted: true,
	})

	a.Recompute()
	snap := a.Snapshot()

	if got := snap.Queue[SpanDaily][types.WorkgroupCSA]; got.CompletedLength != 0 {
		t.Errorf("daily window should exclude yesterday, got %d", got.CompletedLength)
	}
	if got := snap.Queue[SpanWeekly][types.WorkgroupCSA]; got.CompletedLength != 1 {
		t.Errorf("weekly window should include yesterday, got %d", got.CompletedLength)
	}
}

func TestEndedCountsTrackNewRecords(t *testing.T) {
	a, interactions, _ := newTestAggregator()
	now := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	a.SetClock(func() time.Time { return now })

	end := now.Add(-time.Hour)
	interactions.Insert(types.Interaction{
		ID: "c1", Workgroup: types.WorkgroupCSA, EndDate: &end, IsCompleted: true,
	})
	a.Recompute()
	if got := a.Snapshot().Queue[SpanDaily][types.WorkgroupCSA]; got.CompletedLength != 1 {
		t.Fatalf("expected 1 completed, got %d", got.CompletedLength)
	}

	// A record ending after the first recompute shows up on the next one
	interactions.Insert(types.Interaction{
		ID: "c2", Workgroup: types.WorkgroupCSA, EndDate: &end, IsCompleted: true,
	})
	a.Recompute()
	if got := a.Snapshot().Queue[SpanDaily][types.WorkgroupCSA]; got.CompletedLength != 2 {
		t.Errorf("expected 2 completed after insert, got %d", got.CompletedLength)
	}
}

func TestAgentStats(t *testing.T) {
	a, _, agents := newTestAggregator()

	csaWG := types.Workgroup{ID: "1", Name: types.WorkgroupCSA}
	psWG := types.Workgroup{ID: "2", Name: types.WorkgroupPartnerService}

	agents.Insert(types.Agent{
		ID: "a1", IsCurrent: true, Workgroups: []types.Workgroup{csaWG},
		IsAvailable: true, IsAvailableCsa: true,
	})
	agents.Insert(types.Agent{
		ID: "a2", IsCurrent: true, Workgroups: []types.Workgroup{psWG},
	})
	// Dual member counts for Partner Service, not CSA
	agents.Insert(types.Agent{
		ID: "a3", IsCurrent: true, Workgroups: []types.Workgroup{csaWG, psWG},
		IsAvailable: true, IsAvailablePartnerService: true,
	})
	// Not current: invisible
	agents.Insert(types.Agent{
		ID: "gone", IsCurrent: false, Workgroups: []types.Workgroup{csaWG},
	})

	a.Recompute()
	got := a.Snapshot().Agents

	if got.CSA.Total != 1 || got.CSA.Available != 1 {
		t.Errorf("expected CSA 1/1, got %+v", got.CSA)
	}
	if got.PartnerService.Total != 2 || got.PartnerService.Available != 1 {
		t.Errorf("expected Partner Service 2/1, got %+v", got.PartnerService)
	}
	if got.Overall.Total != 3 || got.Overall.Available != 2 {
		t.Errorf("expected overall 3/2, got %+v", got.Overall)
	}
}

func TestDirtyFlagAndDebounce(t *testing.T) {
	a, interactions, _ := newTestAggregator()

	if changed := a.Recompute(); !changed {
		t.Error("first recompute should report a change")
	}
	if !a.Dirty() {
		t.Error("expected dirty after change")
	}
	a.ClearDirty()

	// Nothing mutated: recompute is a no-op and stays clean
	if changed := a.Recompute(); changed {
		t.Error("recompute without mutation should not report a change")
	}
	if a.Dirty() {
		t.Error("expected clean after no-op recompute")
	}

	interactions.Insert(types.Interaction{
		ID: "x", Workgroup: types.WorkgroupCSA, IsCurrent: true, InQueue: true,
	})
	if changed := a.Recompute(); !changed {
		t.Error("recompute after mutation should report a change")
	}
	if !a.Dirty() {
		t.Error("expected dirty after mutation")
	}
}
