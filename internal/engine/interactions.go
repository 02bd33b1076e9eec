package engine

import (
	"errors"
	"math"
	"reflect"
	"time"

	"github.com/dialview/icws-monitor/internal/store"
	"github.com/dialview/icws-monitor/internal/timeutil"
	"github.com/dialview/icws-monitor/internal/types"
)

func (e *Engine) applyInteractionBatch(batch *types.InteractionBatch, now time.Time) {
	for _, raw := range batch.Added {
		e.applyInteractionAdded(raw, now)
	}
	for _, raw := range batch.Changed {
		e.applyInteractionChanged(raw, now)
	}
	e.applyInteractionsRemoved(batch.Removed, now)
}

// applyInteractionAdded upserts a freshly reported record. The switch can
// re-deliver "added" for records the store already knows (e.g. after a
// restart), so an existing record is merge-patched, never duplicated.
func (e *Engine) applyInteractionAdded(raw types.RawInteraction, now time.Time) {
	if raw.InteractionID == "" {
		e.logger.Warn().Msg("added interaction without id, dropping")
		return
	}
	patch := decodeInteractionPatch(raw)

	cur, exists := e.interactions.Get(raw.InteractionID)
	base := cur
	if !exists {
		base = types.Interaction{ID: raw.InteractionID, ReferenceDate: now}
	}

	next := patch.Apply(base)
	next.IsCurrent = true
	next = computeQueueTime(next)
	next = classify(next)

	if !exists || !reflect.DeepEqual(cur, next) {
		next.UpdatedAt = now
		e.interactions.Upsert(next)
		e.noteTransition(cur, next, now)
	}
	e.markLive(next.ID)
}

// applyInteractionChanged merge-patches an existing record. A changed event
// for an unknown id is dropped with a warning, never an error.
func (e *Engine) applyInteractionChanged(raw types.RawInteraction, now time.Time) {
	patch := decodeInteractionPatch(raw)

	cur, exists := e.interactions.Get(raw.InteractionID)
	if !exists {
		e.logger.Warn().Str("interaction_id", raw.InteractionID).Msg("changed event for unknown interaction, dropping")
		return
	}

	next := patch.Apply(cur)
	next = computeQueueTime(next)
	next = classify(next)

	if reflect.DeepEqual(cur, next) {
		return
	}
	next.UpdatedAt = now
	if _, err := e.interactions.Update(next.ID, func(types.Interaction) types.Interaction { return next }); err != nil {
		e.logger.Warn().Err(err).Str("interaction_id", next.ID).Msg("failed to apply changed interaction")
		return
	}
	e.noteTransition(cur, next, now)
}

// applyInteractionsRemoved takes ids out of the live working set and soft
// deletes the stored records. Unknown ids are logged and skipped.
func (e *Engine) applyInteractionsRemoved(ids []string, now time.Time) {
	for _, id := range ids {
		e.unmarkLive(id)

		cur, exists := e.interactions.Get(id)
		if !exists {
			e.logger.Warn().Str("interaction_id", id).Msg("removed event for unknown interaction, skipping")
			continue
		}

		next := cur
		next.IsCurrent = false
		next = classify(next)
		next.UpdatedAt = now
		if _, err := e.interactions.Update(id, func(types.Interaction) types.Interaction { return next }); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				e.logger.Warn().Err(err).Str("interaction_id", id).Msg("failed to mark interaction removed")
			}
			continue
		}
		e.noteTransition(cur, next, now)
	}
}

// recomputePass refreshes the time-derived fields of every record still in
// the live working set. Runs only after the tick's add/change/remove batches
// have been applied.
func (e *Engine) recomputePass(now time.Time) {
	for _, id := range e.liveOrder {
		if _, ok := e.live[id]; !ok {
			continue
		}
		cur, ok := e.interactions.Get(id)
		if !ok {
			continue
		}

		next := classify(cur)

		if next.InQueue && next.QueueDate != nil {
			local := timeutil.DiffSeconds(*next.QueueDate, now)
			if local < 0 {
				local = 0
			}
			next.LocalQueueTime = &local
			next.CorrectedQueueTime = local - int(math.Round(e.skew.Estimate()))
		} else {
			// Out of queue: corrected time freezes to the switch-reported
			// value and the local measurement stays as last computed
			if next.QueueTime != nil {
				next.CorrectedQueueTime = *next.QueueTime
			} else {
				next.CorrectedQueueTime = 0
			}
		}

		if reflect.DeepEqual(cur, next) {
			continue
		}
		next.UpdatedAt = now
		e.interactions.Upsert(next)
		e.noteTransition(cur, next, now)
	}
}

// noteTransition reacts to a record leaving the queue: it feeds the skew
// estimator and hands newly terminal records to the push pipeline.
func (e *Engine) noteTransition(before, after types.Interaction, now time.Time) {
	leftQueue := before.InQueue && !after.InQueue
	if leftQueue &&
		after.LocalQueueTime != nil && after.QueueTime != nil &&
		after.StartDate != nil && timeutil.WithinDays(*after.StartDate, now, 7) {
		e.skew.Offer(*after.LocalQueueTime, *after.QueueTime)
	}

	if !before.Terminal() && after.Terminal() && e.terminal != nil {
		e.terminal.Enqueue(after)
	}
}

// classify recomputes the derived state booleans. Transitions are forward
// only: a terminal record never re-enters the queue.
func classify(i types.Interaction) types.Interaction {
	if i.Terminal() {
		i.InQueue = false
		return i
	}
	i.InQueue = timeutil.InQueue(i.QueueDate, i.ConnectedDate, i.EndDate)
	i.IsAbandoned = timeutil.IsAbandoned(i.ConnectedDate, i.EndDate)
	i.IsCompleted = timeutil.IsCompleted(i.ConnectedDate, i.EndDate)
	if i.Terminal() {
		i.InQueue = false
	}
	return i
}

// computeQueueTime derives the switch-side queue duration once both ends of
// the interval are known, and never overwrites an already-set value.
func computeQueueTime(i types.Interaction) types.Interaction {
	if i.QueueTime != nil || i.QueueDate == nil {
		return i
	}
	var until *time.Time
	switch {
	case i.ConnectedDate != nil:
		until = i.ConnectedDate
	case i.EndDate != nil:
		until = i.EndDate
	default:
		return i
	}
	qt := timeutil.DiffSeconds(*i.QueueDate, *until)
	if qt < 0 {
		qt = 0
	}
	i.QueueTime = &qt
	return i
}
