// Package stats derives queue and agent-availability statistics from the
// working set. The aggregator recomputes on the poll tick and caches a
// snapshot for dashboard consumers, which only ever read.
package stats

import (
	"math"
	"reflect"
	"sync"
	"time"

	"github.com/dialview/icws-monitor/internal/alerts"
	"github.com/dialview/icws-monitor/internal/engine"
	"github.com/dialview/icws-monitor/internal/store"
	"github.com/dialview/icws-monitor/internal/timeutil"
	"github.com/dialview/icws-monitor/internal/types"
	"github.com/rs/zerolog"
)

// Span selects the reporting window for queue statistics
type Span string

const (
	SpanDaily  Span = "daily"
	SpanWeekly Span = "weekly"
)

// QueueStats summarizes one workgroup's queue for one span
type QueueStats struct {
	// LongestID identifies the longest-waiting interaction, null when the
	// queue is empty
	LongestID       *string `json:"id"`
	QueueTime       int     `json:"queueTime"`
	QueueLength     int     `json:"queueLength"`
	AbandonRate     float64 `json:"abandonRate"`
	AbandonedLength int     `json:"abandonedLength"`
	CompletedLength int     `json:"completedLength"`
}

// Availability is a total/available pair for one reporting bucket
type Availability struct {
	Total     int `json:"total"`
	Available int `json:"available"`
}

// AgentStats summarizes agent availability per tracked workgroup
type AgentStats struct {
	CSA            Availability `json:"csa"`
	PartnerService Availability `json:"partnerService"`
	Overall        Availability `json:"overall"`
}

// Snapshot is the cached statistics payload served to the dashboard
type Snapshot struct {
	Type      string                         `json:"type"`
	Timestamp time.Time                      `json:"timestamp"`
	Queue     map[Span]map[string]QueueStats `json:"queue"`
	Agents    AgentStats                     `json:"agents"`
	Alerts    []alerts.Alert                 `json:"alerts,omitempty"`
}

// Aggregator computes and caches statistics snapshots
type Aggregator struct {
	inQueue      *store.View[types.Interaction]
	ended        *store.View[types.Interaction]
	currentAgent *store.View[types.Agent]
	disallowed   []string
	now          func() time.Time
	logger       zerolog.Logger

	mu    sync.RWMutex
	last  Snapshot
	dirty bool
}

// New creates an aggregator over the engine's collections
func New(interactions *store.Collection[types.Interaction], agents *store.Collection[types.Agent], logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		inQueue: interactions.NewSortedView("in_queue_by_wait",
			func(i types.Interaction) bool { return i.IsCurrent && i.InQueue },
			func(a, b types.Interaction) bool { return a.CorrectedQueueTime > b.CorrectedQueueTime },
			store.RefreshLazy),
		ended: interactions.NewView("ended",
			func(i types.Interaction) bool { return i.EndDate != nil },
			store.RefreshLazy),
		currentAgent: agents.NewView("current_agents",
			func(a types.Agent) bool { return a.IsCurrent },
			store.RefreshLazy),
		now:    time.Now,
		logger: logger.With().Str("component", "stats").Logger(),
	}
}

// SetDisallowedWorkgroups mirrors the engine's exclusion list
func (a *Aggregator) SetDisallowedWorkgroups(names []string) {
	a.disallowed = names
}

// SetClock overrides the wall clock (tests)
func (a *Aggregator) SetClock(now func() time.Time) {
	a.now = now
}

// Recompute rebuilds the snapshot from the current views. Must run on the
// tick goroutine after the engine's recompute pass. Returns true, and marks
// the snapshot dirty, only when the computed values actually changed.
func (a *Aggregator) Recompute() bool {
	next := a.compute()

	a.mu.Lock()
	defer a.mu.Unlock()

	changed := !reflect.DeepEqual(next.Queue, a.last.Queue) ||
		!reflect.DeepEqual(next.Agents, a.last.Agents) ||
		!reflect.DeepEqual(next.Alerts, a.last.Alerts)
	if changed {
		a.last = next
		a.dirty = true
	}
	return changed
}

// Snapshot returns the last computed statistics
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Dirty reports whether the snapshot changed since the last ClearDirty
func (a *Aggregator) Dirty() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dirty
}

// ClearDirty acknowledges the current snapshot
func (a *Aggregator) ClearDirty() {
	a.mu.Lock()
	a.dirty = false
	a.mu.Unlock()
}

func (a *Aggregator) compute() Snapshot {
	now := a.now()

	queue := make(map[Span]map[string]QueueStats, 2)
	for _, span := range []Span{SpanDaily, SpanWeekly} {
		perWorkgroup := make(map[string]QueueStats, len(types.TrackedWorkgroups))
		for _, wg := range types.TrackedWorkgroups {
			perWorkgroup[wg] = a.queueStats(span, wg, now)
		}
		queue[span] = perWorkgroup
	}

	snap := Snapshot{
		Type:      "stats",
		Timestamp: now,
		Queue:     queue,
		Agents:    a.agentStats(),
	}
	snap.Alerts = alerts.CheckQueueAlerts(a.inQueue.Items())
	return snap
}

// queueStats takes the longest-waiting in-queue interaction of the workgroup
// as the head, then merges in the abandon/complete counts of the span window.
func (a *Aggregator) queueStats(span Span, workgroup string, now time.Time) QueueStats {
	stats := QueueStats{}

	// The view is sorted by corrected queue time descending, ties in
	// insertion order; the first workgroup match is the longest waiting.
	for _, i := range a.inQueue.Items() {
		if i.Workgroup != workgroup {
			continue
		}
		if stats.LongestID == nil {
			id := i.ID
			stats.LongestID = &id
			stats.QueueTime = i.CorrectedQueueTime
		}
		stats.QueueLength++
	}

	// The span windows are wall-clock relative, so the time bound stays a
	// read-side check over the ended view rather than a view predicate.
	windowStart := a.windowStart(span, now)
	for _, i := range a.ended.Items() {
		if i.Workgroup != workgroup || i.EndDate.Before(windowStart) || i.EndDate.After(now) {
			continue
		}
		if i.IsAbandoned {
			stats.AbandonedLength++
		}
		if i.IsCompleted {
			stats.CompletedLength++
		}
	}

	denominator := stats.CompletedLength
	if denominator == 0 {
		denominator = 1
	}
	stats.AbandonRate = round2(float64(stats.AbandonedLength) / float64(denominator) * 100)
	return stats
}

func (a *Aggregator) windowStart(span Span, now time.Time) time.Time {
	if span == SpanWeekly {
		return now.AddDate(0, 0, -7)
	}
	return timeutil.StartOfDay(now)
}

func (a *Aggregator) agentStats() AgentStats {
	var stats AgentStats

	csa := []string{types.WorkgroupCSA}
	partner := []string{types.WorkgroupPartnerService}

	for _, agent := range a.currentAgent.Items() {
		if engine.HasWorkgroupsSpecial(types.TrackedWorkgroups, agent, a.disallowed) {
			stats.Overall.Total++
			if agent.IsAvailable {
				stats.Overall.Available++
			}
		}
		if engine.HasWorkgroupsSpecial(csa, agent, a.disallowed) {
			stats.CSA.Total++
			if agent.IsAvailableCsa {
				stats.CSA.Available++
			}
		}
		if engine.HasWorkgroupsSpecial(partner, agent, a.disallowed) {
			stats.PartnerService.Total++
			if agent.IsAvailablePartnerService {
				stats.PartnerService.Available++
			}
		}
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
