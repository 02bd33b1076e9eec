package engine

import (
	"reflect"
	"time"

	"github.com/dialview/icws-monitor/internal/types"
)

// AvailableStatus is the switch status string that marks an agent as ready
const AvailableStatus = "Available"

func (e *Engine) applyUserBatch(batch *types.UserBatch, now time.Time) {
	for _, raw := range batch.Added {
		e.applyUserUpsert(raw, now)
	}
	for _, raw := range batch.Changed {
		e.applyUserUpsert(raw, now)
	}
	for _, id := range batch.Removed {
		e.applyUserRemoved(id, now)
	}
}

func (e *Engine) applyUserUpsert(raw types.RawUser, now time.Time) {
	if raw.UserID == "" {
		e.logger.Warn().Msg("user record without id, dropping")
		return
	}
	patch := decodeUserPatch(raw)

	cur, exists := e.agents.Get(raw.UserID)
	base := cur
	if !exists {
		base = types.Agent{ID: raw.UserID}
	}

	next := patch.Apply(base)
	next.IsCurrent = true
	next = e.refreshAvailability(next)

	if exists && reflect.DeepEqual(cur, next) {
		return
	}
	next.UpdatedAt = now
	e.agents.Upsert(next)
}

func (e *Engine) applyUserRemoved(id string, now time.Time) {
	_, err := e.agents.Update(id, func(a types.Agent) types.Agent {
		a.IsCurrent = false
		a = e.refreshAvailability(a)
		a.UpdatedAt = now
		return a
	})
	if err != nil {
		e.logger.Warn().Str("agent_id", id).Msg("removed event for unknown agent, skipping")
	}
}

// applyStatusBatch updates login/phone/status fields only, joined with the
// last-known workgroups for the availability recompute.
func (e *Engine) applyStatusBatch(batch *types.StatusBatch, now time.Time) {
	for _, raw := range batch.Changed {
		status := raw
		_, err := e.agents.Update(status.UserID, func(a types.Agent) types.Agent {
			a.StatusName = status.StatusName
			a.LoggedIn = status.LoggedIn
			a.OnPhone = status.OnPhone
			a.LastLocalChange = now
			a = e.refreshAvailability(a)
			a.UpdatedAt = now
			return a
		})
		if err != nil {
			e.logger.Warn().Str("agent_id", status.UserID).Msg("status change for unknown agent, dropping")
		}
	}
}

func (e *Engine) refreshAvailability(a types.Agent) types.Agent {
	ready := a.LoggedIn && !a.OnPhone && a.StatusName == AvailableStatus
	a.IsAvailable = ready && HasWorkgroupsSpecial(types.TrackedWorkgroups, a, e.disallowed)
	a.IsAvailableCsa = ready && HasWorkgroupsSpecial([]string{types.WorkgroupCSA}, a, e.disallowed)
	a.IsAvailablePartnerService = ready && HasWorkgroupsSpecial([]string{types.WorkgroupPartnerService}, a, e.disallowed)
	return a
}

// HasWorkgroupsSpecial decides workgroup membership for reporting buckets.
// Membership in a disallowed workgroup excludes the agent entirely. When the
// requested set is exactly {CSA}, membership in Partner Service also
// excludes: Partner Service takes precedence for mutually exclusive buckets.
// Otherwise membership is a plain non-empty intersection.
func HasWorkgroupsSpecial(requested []string, agent types.Agent, disallowed []string) bool {
	for _, d := range disallowed {
		if agent.HasWorkgroup(d) {
			return false
		}
	}
	if len(requested) == 1 && requested[0] == types.WorkgroupCSA &&
		agent.HasWorkgroup(types.WorkgroupPartnerService) {
		return false
	}
	for _, r := range requested {
		if agent.HasWorkgroup(r) {
			return true
		}
	}
	return false
}
