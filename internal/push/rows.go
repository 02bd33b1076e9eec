package push

import (
	"time"

	"github.com/dialview/icws-monitor/internal/types"
)

// rowFor flattens an interaction into the agent-table row shape. All
// timestamps are rendered in RFC 3339 UTC; absent dates become empty
// strings so the BI layer never sees nulls.
func rowFor(i types.Interaction) Row {
	return Row{
		"interaction_id":       i.ID,
		"workgroup":            i.Workgroup,
		"user_name":            i.UserName,
		"direction":            string(i.Direction),
		"call_type":            string(i.CallType),
		"state":                string(i.State),
		"start_date":           formatDate(i.StartDate),
		"queue_date":           formatDate(i.QueueDate),
		"connected_date":       formatDate(i.ConnectedDate),
		"end_date":             formatDate(i.EndDate),
		"reference_date":       i.ReferenceDate.UTC().Format(time.RFC3339),
		"queue_time":           intOrZero(i.QueueTime),
		"corrected_queue_time": i.CorrectedQueueTime,
		"abandoned":            i.IsAbandoned,
		"completed":            i.IsCompleted,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
