package alerts

import (
	"fmt"
	"time"

	"github.com/dialview/icws-monitor/internal/types"
)

// AlertSeverity represents the severity of a queue alert
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Wait thresholds for queue alerts
const (
	warnWait     = 5 * time.Minute
	criticalWait = 10 * time.Minute
)

// Alert flags a waiting interaction that breached a wait threshold
type Alert struct {
	Rule          string        `json:"rule"`
	Severity      AlertSeverity `json:"severity"`
	InteractionID string        `json:"interactionId"`
	Workgroup     string        `json:"workgroup"`
	Message       string        `json:"message"`
}

// CheckQueueAlerts evaluates wait-time rules over the in-queue interactions
func CheckQueueAlerts(waiting []types.Interaction) []Alert {
	var out []Alert
	for _, i := range waiting {
		wait := time.Duration(i.CorrectedQueueTime) * time.Second
		switch {
		case wait > criticalWait:
			out = append(out, Alert{
				Rule:          "wait_critical",
				Severity:      SeverityCritical,
				InteractionID: i.ID,
				Workgroup:     i.Workgroup,
				Message:       fmt.Sprintf("waiting for %s", formatDuration(wait)),
			})
		case wait > warnWait:
			out = append(out, Alert{
				Rule:          "wait_long",
				Severity:      SeverityWarning,
				InteractionID: i.ID,
				Workgroup:     i.Workgroup,
				Message:       fmt.Sprintf("waiting for %s", formatDuration(wait)),
			})
		}
	}
	return out
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if mins >= 60 {
		hours := mins / 60
		mins = mins % 60
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
	return fmt.Sprintf("%dm%ds", mins, secs)
}
