// Package poller drives the 1-second poll cycle: fetch telephony batches,
// feed them to the reconciliation engine, persist the resulting changes and
// publish fresh statistics.
package poller

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/dialview/icws-monitor/internal/engine"
	"github.com/dialview/icws-monitor/internal/metrics"
	"github.com/dialview/icws-monitor/internal/stats"
	"github.com/dialview/icws-monitor/internal/storage"
	"github.com/dialview/icws-monitor/internal/types"
	"github.com/rs/zerolog"
)

// Source is a connected telephony session that yields message batches
type Source interface {
	Connect(ctx context.Context) error
	Poll(ctx context.Context) ([]types.Message, error)
}

// Broadcaster publishes a stats snapshot to connected dashboards
type Broadcaster interface {
	Broadcast(message []byte)
}

// RetentionDays is how long non-current records stay in memory
const RetentionDays = 7

// Poller owns the tick loop. All engine and collection mutations happen on
// this goroutine; other goroutines only read through the aggregator
// snapshot and the push ledger.
type Poller struct {
	source    Source
	engine    *engine.Engine
	stats     *stats.Aggregator
	store     storage.Store
	hub       Broadcaster
	interval  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
	connected bool

	cleanupRequested atomic.Bool
}

// New creates a poller over the given source and engine
func New(source Source, eng *engine.Engine, agg *stats.Aggregator, st storage.Store, hub Broadcaster, interval time.Duration, logger zerolog.Logger) *Poller {
	return &Poller{
		source:   source,
		engine:   eng,
		stats:    agg,
		store:    st,
		hub:      hub,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Logger(),
		now:      time.Now,
	}
}

// SetClock overrides the wall clock (tests)
func (p *Poller) SetClock(now func() time.Time) { p.now = now }

// RequestCleanup asks the tick loop to run an in-memory retention sweep on
// its next cycle. Safe to call from any goroutine.
func (p *Poller) RequestCleanup() {
	p.cleanupRequested.Store(true)
}

// Run polls until the context is cancelled
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", p.interval).Msg("poller started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if !p.connected {
		if err := p.source.Connect(ctx); err != nil {
			metrics.Get().RecordPollError()
			p.logger.Warn().Err(err).Msg("source connect failed")
			return
		}
		p.connected = true
		p.logger.Info().Msg("source connected")
	}

	started := p.now()
	msgs, err := p.source.Poll(ctx)
	if err != nil {
		// Drop the session and reconnect on the next tick. ICWS sessions
		// expire server-side, so any poll error is treated as fatal to the
		// session rather than inspected.
		metrics.Get().RecordPollError()
		metrics.Get().RecordReconnect()
		p.connected = false
		p.logger.Warn().Err(err).Msg("poll failed, reconnecting next tick")
		return
	}

	p.engine.Tick(msgs)

	if p.cleanupRequested.CompareAndSwap(true, false) {
		cutoff := p.now().AddDate(0, 0, -RetentionDays)
		removedI, removedA := p.engine.Cleanup(cutoff)
		p.logger.Info().
			Int("interactions", removedI).
			Int("agents", removedA).
			Msg("in-memory retention sweep completed")
	}

	p.persistChanges()
	p.publishStats()

	metrics.Get().RecordPollCycle(p.now().Sub(started), len(msgs))
	metrics.Get().UpdateEntityCounts(p.engine.LiveCount(), p.engine.Agents().Len())
}

// persistChanges drains the change logs and writes each changed entity in
// the background. Persistence is best effort: a failed write is logged and
// the in-memory state stays authoritative.
func (p *Poller) persistChanges() {
	interactionChanges := p.engine.FlushInteractionChanges()
	agentChanges := p.engine.FlushAgentChanges()
	if len(interactionChanges) == 0 && len(agentChanges) == 0 {
		return
	}
	metrics.Get().RecordEntityChanges(len(interactionChanges), len(agentChanges))

	for _, change := range interactionChanges {
		if change.After == nil {
			continue
		}
		i := *change.After
		go func() {
			if err := p.store.UpsertInteraction(i); err != nil {
				metrics.Get().RecordPersistError()
				p.logger.Error().Err(err).Str("interaction_id", i.ID).Msg("failed to persist interaction")
				return
			}
			metrics.Get().RecordPersistWrite()
		}()
	}

	for _, change := range agentChanges {
		if change.After == nil {
			continue
		}
		a := *change.After
		go func() {
			if err := p.store.UpsertAgent(a); err != nil {
				metrics.Get().RecordPersistError()
				p.logger.Error().Err(err).Str("agent_id", a.ID).Msg("failed to persist agent")
				return
			}
			metrics.Get().RecordPersistWrite()
		}()
	}
}

// publishStats recomputes the aggregate snapshot and broadcasts it when it
// actually changed
func (p *Poller) publishStats() {
	p.stats.Recompute()
	if !p.stats.Dirty() {
		metrics.Get().RecordStatsRecompute(false)
		return
	}

	snapshot := p.stats.Snapshot()
	p.stats.ClearDirty()

	data, err := json.Marshal(snapshot)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to marshal stats snapshot")
		return
	}
	if p.hub != nil {
		p.hub.Broadcast(data)
	}
	metrics.Get().RecordStatsRecompute(true)
}
