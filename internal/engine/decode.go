package engine

import (
	"github.com/dialview/icws-monitor/internal/timeutil"
	"github.com/dialview/icws-monitor/internal/types"
)

// decodeInteractionPatch normalizes a switch-shaped interaction record into
// a field-wise patch. Unparseable dates and unknown codes degrade the field,
// never the record.
func decodeInteractionPatch(raw types.RawInteraction) types.InteractionPatch {
	p := types.InteractionPatch{}

	if raw.Workgroup != "" {
		p.Workgroup = &raw.Workgroup
	}
	if raw.UserName != "" {
		p.UserName = &raw.UserName
	}
	if raw.StateCode != "" {
		state := types.DecodeState(raw.StateCode)
		p.State = &state
	}
	if raw.CallTypeCode != "" {
		ct := types.DecodeCallType(raw.CallTypeCode)
		p.CallType = &ct
	}
	if raw.DirectionCode != "" {
		dir := types.DecodeDirection(raw.DirectionCode)
		p.Direction = &dir
	}

	p.QueueDate = timeutil.ParseDate(raw.QueueDate)
	p.ConnectedDate = timeutil.ParseDate(raw.ConnectedDate)
	p.EndDate = timeutil.ParseDate(raw.EndDate)
	p.StartDate = timeutil.ParseDate(raw.StartDate)
	p.AnswerDate = timeutil.ParseDate(raw.AnswerDate)

	return p
}

// decodeUserPatch normalizes a switch-shaped user record
func decodeUserPatch(raw types.RawUser) types.AgentPatch {
	p := types.AgentPatch{}
	if raw.DisplayName != "" {
		p.Name = &raw.DisplayName
	}
	if raw.Workgroups != nil {
		wgs := make([]types.Workgroup, 0, len(raw.Workgroups))
		for _, wg := range raw.Workgroups {
			wgs = append(wgs, types.Workgroup{ID: wg.ID, Name: wg.Name})
		}
		p.Workgroups = wgs
	}
	return p
}
