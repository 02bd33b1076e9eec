// Package retention runs the weekly sweep that drops records older than the
// retention window from durable storage, the push ledger and memory.
package retention

import (
	"time"

	"github.com/dialview/icws-monitor/internal/push"
	"github.com/dialview/icws-monitor/internal/storage"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Schedule runs the sweep early Sunday morning, outside call-center hours
const Schedule = "0 3 * * 0"

// Days is the retention window
const Days = 7

// CleanupRequester asks the poll loop to sweep its in-memory collections
type CleanupRequester interface {
	RequestCleanup()
}

// Job owns the weekly retention sweep
type Job struct {
	store  storage.Store
	ledger *push.Ledger
	poller CleanupRequester
	cron   *cron.Cron
	logger zerolog.Logger
	now    func() time.Time
}

// NewJob creates the retention job. Start must be called to schedule it.
func NewJob(store storage.Store, ledger *push.Ledger, poller CleanupRequester, logger zerolog.Logger) *Job {
	return &Job{
		store:  store,
		ledger: ledger,
		poller: poller,
		cron:   cron.New(cron.WithLocation(time.Local)),
		logger: logger.With().Str("component", "retention").Logger(),
		now:    time.Now,
	}
}

// SetClock overrides the wall clock (tests)
func (j *Job) SetClock(now func() time.Time) { j.now = now }

// Start schedules the weekly sweep
func (j *Job) Start() error {
	if _, err := j.cron.AddFunc(Schedule, j.Sweep); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info().Str("schedule", Schedule).Msg("retention job scheduled")
	return nil
}

// Stop stops the scheduler, waiting for a running sweep to finish
func (j *Job) Stop() {
	<-j.cron.Stop().Done()
}

// Sweep deletes everything older than the retention window. Durable deletes
// run here; the in-memory sweep is delegated to the poll loop so collection
// mutations stay on one goroutine.
func (j *Job) Sweep() {
	cutoff := j.now().AddDate(0, 0, -Days)
	j.logger.Info().Time("cutoff", cutoff).Msg("retention sweep started")

	if n, err := j.store.DeleteInteractionsBefore(cutoff); err != nil {
		j.logger.Error().Err(err).Msg("failed to delete expired interactions")
	} else if n > 0 {
		j.logger.Info().Int("deleted", n).Msg("expired interactions deleted")
	}

	if n, err := j.store.DeleteAgentsBefore(cutoff); err != nil {
		j.logger.Error().Err(err).Msg("failed to delete expired agents")
	} else if n > 0 {
		j.logger.Info().Int("deleted", n).Msg("expired agents deleted")
	}

	if n, err := j.store.DeleteLedgerBefore(cutoff); err != nil {
		j.logger.Error().Err(err).Msg("failed to delete expired ledger entries")
	} else if n > 0 {
		j.logger.Info().Int("deleted", n).Msg("expired ledger entries deleted")
	}

	removed := j.ledger.RemoveOlderThan(cutoff)
	if removed > 0 {
		j.logger.Info().Int("removed", removed).Msg("expired in-memory ledger entries removed")
	}

	if j.poller != nil {
		j.poller.RequestCleanup()
	}

	j.logger.Info().Msg("retention sweep finished")
}
