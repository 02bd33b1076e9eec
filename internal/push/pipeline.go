// Package push batches terminal interactions and delivers them to the BI
// sink with bounded retries and exponential backoff.
package push

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dialview/icws-monitor/internal/metrics"
	"github.com/dialview/icws-monitor/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BI table names fed by this pipeline
const (
	TableAgentDaily  = "icws_agent_daily"
	TableAgentWeekly = "icws_agent_weekly"
)

// MaxAttempts bounds the flush retry counter: attempts 0..MaxAttempts
// inclusive each perform a send, so a permanently failing flush makes
// MaxAttempts+1 sink calls per batch.
const MaxAttempts = 10

// ErrTooManyAttempts signals an exhausted flush retry budget
var ErrTooManyAttempts = errors.New("push: too many attempts")

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// Row is one field-keyed record matching a pre-declared BI table schema
type Row map[string]any

// Sink delivers rows to the BI service
type Sink interface {
	// Authenticate prepares credentials; forceRefresh bypasses the cached
	// credential path
	Authenticate(ctx context.Context, forceRefresh bool) error
	AddRows(ctx context.Context, table string, rows []Row) error
}

// Pipeline queues terminal interactions and pushes them in the background.
// Enqueue snapshots the row at enqueue time: a flush never reads back
// through the store, so it cannot race the next tick's mutations.
type Pipeline struct {
	ledger *Ledger
	sink   Sink
	logger zerolog.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error

	mu           sync.Mutex
	pending      map[string]Row
	pendingOrder []string

	persistEntry func(types.PushLedgerEntry)
}

// NewPipeline creates a pipeline over the given ledger and sink
func NewPipeline(ledger *Ledger, sink Sink, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		ledger:  ledger,
		sink:    sink,
		logger:  logger.With().Str("component", "push").Logger(),
		now:     time.Now,
		sleep:   sleepCtx,
		pending: make(map[string]Row),
	}
}

// SetClock overrides the wall clock (tests)
func (p *Pipeline) SetClock(now func() time.Time) { p.now = now }

// SetSleep overrides the backoff sleeper (tests)
func (p *Pipeline) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	p.sleep = sleep
}

// SetEntryPersist installs a fire-and-forget hook for durably recording
// ledger entries
func (p *Pipeline) SetEntryPersist(persist func(types.PushLedgerEntry)) {
	p.persistEntry = persist
}

// Ledger returns the pipeline's push ledger
func (p *Pipeline) Ledger() *Ledger { return p.ledger }

// Enqueue registers a newly terminal interaction for delivery. Idempotent:
// an id already pushed, or already pending, is not queued again.
func (p *Pipeline) Enqueue(i types.Interaction) {
	entry, recorded := p.ledger.Record(i.ID, p.now())
	if !recorded {
		return
	}
	if p.persistEntry != nil {
		p.persistEntry(entry)
	}

	p.mu.Lock()
	if _, exists := p.pending[i.ID]; !exists {
		p.pendingOrder = append(p.pendingOrder, i.ID)
	}
	p.pending[i.ID] = rowFor(i)
	p.mu.Unlock()

	metrics.Get().RecordPushEnqueued()
	p.logger.Debug().Str("interaction_id", i.ID).Msg("interaction queued for push")
}

// PendingCount returns the number of rows awaiting delivery
func (p *Pipeline) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Run drains the pending set at the given cadence until the context is
// cancelled. Runs independently of the poll tick.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", interval).Msg("push pipeline started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("push pipeline stopped")
			return
		case <-ticker.C:
			rows := p.collect()
			if len(rows) == 0 {
				continue
			}
			if _, err := p.Flush(ctx, rows, rows); err != nil {
				p.logger.Error().Err(err).Int("rows", len(rows)).Msg("push flush failed")
			}
		}
	}
}

// collect drains the pending set and marks the drained entries pushed.
// Marking happens at snapshot time, before delivery, which keeps delivery
// at most once per record.
func (p *Pipeline) collect() []Row {
	p.mu.Lock()
	ids := p.pendingOrder
	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, p.pending[id])
	}
	p.pending = make(map[string]Row)
	p.pendingOrder = nil
	p.mu.Unlock()

	p.ledger.MarkPushed(ids)
	return rows
}

type namedBatch struct {
	table string
	rows  []Row
}

// Flush delivers the daily and weekly batches under one shared retry
// budget. Batches are sent independently per attempt; an attempt fails only
// when every batch in it fails. A partial success resolves the flush,
// returning the tables that were delivered.
func (p *Pipeline) Flush(ctx context.Context, daily, weekly []Row) ([]string, error) {
	if len(daily) == 0 && len(weekly) == 0 {
		return nil, nil
	}

	var batches []namedBatch
	if len(daily) > 0 {
		batches = append(batches, namedBatch{TableAgentDaily, daily})
	}
	if len(weekly) > 0 {
		batches = append(batches, namedBatch{TableAgentWeekly, weekly})
	}

	flushID := uuid.New().String()
	logger := p.logger.With().Str("flush_id", flushID).Logger()

	for attempt := 0; ; attempt++ {
		metrics.Get().RecordPushAttempt()
		delivered := p.attempt(ctx, logger, batches, attempt)
		if len(delivered) > 0 {
			if len(delivered) < len(batches) {
				logger.Warn().
					Int("delivered", len(delivered)).
					Int("batches", len(batches)).
					Msg("flush resolved with partial success")
			}
			return delivered, nil
		}

		metrics.Get().RecordPushFailure()
		if attempt >= MaxAttempts {
			logger.Error().Int("attempts", attempt+1).Msg("flush retry budget exhausted")
			return nil, ErrTooManyAttempts
		}
		if err := p.sleep(ctx, backoff(attempt)); err != nil {
			return nil, err
		}
	}
}

// attempt authenticates and sends every batch once, returning the tables
// that were delivered
func (p *Pipeline) attempt(ctx context.Context, logger zerolog.Logger, batches []namedBatch, attempt int) []string {
	// First attempt uses the cached credential path; retries force refresh
	if err := p.sink.Authenticate(ctx, attempt > 0); err != nil {
		logger.Warn().Err(err).Int("attempt", attempt).Msg("sink authentication failed")
		return nil
	}

	var delivered []string
	for _, batch := range batches {
		if err := p.sink.AddRows(ctx, batch.table, batch.rows); err != nil {
			logger.Warn().Err(err).
				Int("attempt", attempt).
				Str("table", batch.table).
				Int("rows", len(batch.rows)).
				Msg("batch delivery failed")
			continue
		}
		metrics.Get().RecordPushDelivered(len(batch.rows))
		delivered = append(delivered, batch.table)
	}
	return delivered
}

func backoff(attempt int) time.Duration {
	d := initialBackoff << uint(attempt)
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
