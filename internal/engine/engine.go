// Package engine merges polled switch batches into the in-memory working
// set and recomputes the derived interaction and agent fields each tick.
package engine

import (
	"time"

	"github.com/dialview/icws-monitor/internal/skew"
	"github.com/dialview/icws-monitor/internal/store"
	"github.com/dialview/icws-monitor/internal/types"
	"github.com/rs/zerolog"
)

// TerminalSink receives interactions that newly reached a terminal state
type TerminalSink interface {
	Enqueue(i types.Interaction)
}

// Engine owns the interaction and agent collections. All mutation happens
// on the poll tick; ticks never overlap.
type Engine struct {
	interactions *store.Collection[types.Interaction]
	agents       *store.Collection[types.Agent]

	// live tracks the ids the switch still reports, in first-seen order
	live      map[string]struct{}
	liveOrder []string

	skew       *skew.Estimator
	terminal   TerminalSink
	disallowed []string
	now        func() time.Time
	logger     zerolog.Logger
}

// New creates an engine over the given collections
func New(interactions *store.Collection[types.Interaction], agents *store.Collection[types.Agent], est *skew.Estimator, logger zerolog.Logger) *Engine {
	return &Engine{
		interactions: interactions,
		agents:       agents,
		live:         make(map[string]struct{}),
		skew:         est,
		now:          time.Now,
		logger:       logger.With().Str("component", "engine").Logger(),
	}
}

// SetTerminalSink sets the push pipeline hook for newly terminal records
func (e *Engine) SetTerminalSink(sink TerminalSink) {
	e.terminal = sink
}

// SetDisallowedWorkgroups sets workgroups whose members are excluded from
// all availability buckets
func (e *Engine) SetDisallowedWorkgroups(names []string) {
	e.disallowed = names
}

// SetClock overrides the wall clock (tests)
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Interactions returns the interaction collection
func (e *Engine) Interactions() *store.Collection[types.Interaction] {
	return e.interactions
}

// Agents returns the agent collection
func (e *Engine) Agents() *store.Collection[types.Agent] {
	return e.agents
}

// Skew returns the clock skew estimator
func (e *Engine) Skew() *skew.Estimator { return e.skew }

// LiveCount returns the size of the live working set
func (e *Engine) LiveCount() int { return len(e.live) }

// Tick applies one poll's messages: added, changed and removed batches in
// order, then the per-tick recompute pass. Views refresh lazily on the next
// read, which happens after Tick returns.
func (e *Engine) Tick(msgs []types.Message) {
	now := e.now()

	for _, msg := range msgs {
		switch msg.Type {
		case types.MessageQueueContents:
			if msg.Interactions != nil {
				e.applyInteractionBatch(msg.Interactions, now)
			}
		case types.MessageUserConfiguration:
			if msg.Users != nil {
				e.applyUserBatch(msg.Users, now)
			}
		case types.MessageUserStatuses:
			if msg.Statuses != nil {
				e.applyStatusBatch(msg.Statuses, now)
			}
		default:
			e.logger.Debug().Str("type", string(msg.Type)).Msg("ignoring unrecognized message type")
		}
	}

	e.recomputePass(now)
}

// Cleanup hard-deletes records that are no longer current and have not been
// touched since the cutoff. Called from the tick goroutine only.
func (e *Engine) Cleanup(cutoff time.Time) (interactions, agents int) {
	interactions = e.interactions.RemoveWhere(func(i types.Interaction) bool {
		return !i.IsCurrent && i.UpdatedAt.Before(cutoff)
	})
	agents = e.agents.RemoveWhere(func(a types.Agent) bool {
		return !a.IsCurrent && a.UpdatedAt.Before(cutoff)
	})
	if interactions > 0 || agents > 0 {
		e.logger.Info().
			Int("interactions", interactions).
			Int("agents", agents).
			Msg("retention cleanup removed records")
	}
	return interactions, agents
}

// FlushInteractionChanges drains the interaction change log
func (e *Engine) FlushInteractionChanges() []store.Change[types.Interaction] {
	return e.interactions.FlushChanges()
}

// FlushAgentChanges drains the agent change log
func (e *Engine) FlushAgentChanges() []store.Change[types.Agent] {
	return e.agents.FlushChanges()
}

func (e *Engine) markLive(id string) {
	if _, ok := e.live[id]; ok {
		return
	}
	e.live[id] = struct{}{}
	e.liveOrder = append(e.liveOrder, id)
}

func (e *Engine) unmarkLive(id string) bool {
	if _, ok := e.live[id]; !ok {
		return false
	}
	delete(e.live, id)
	for idx, lid := range e.liveOrder {
		if lid == id {
			e.liveOrder = append(e.liveOrder[:idx], e.liveOrder[idx+1:]...)
			break
		}
	}
	return true
}
