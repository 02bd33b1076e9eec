package alerts

import (
	"testing"

	"github.com/dialview/icws-monitor/internal/types"
)

func TestCheckQueueAlerts(t *testing.T) {
	waiting := []types.Interaction{
		{ID: "ok", Workgroup: "CSA", CorrectedQueueTime: 60},
		{ID: "warn", Workgroup: "CSA", CorrectedQueueTime: 360},
		{ID: "crit", Workgroup: "Partner Service", CorrectedQueueTime: 900},
	}

	got := CheckQueueAlerts(waiting)
	if len(got) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(got))
	}

	if got[0].Rule != "wait_long" || got[0].Severity != SeverityWarning {
		t.Errorf("expected warning for 6m wait, got %+v", got[0])
	}
	if got[0].InteractionID != "warn" {
		t.Errorf("expected alert for warn, got %s", got[0].InteractionID)
	}

	if got[1].Rule != "wait_critical" || got[1].Severity != SeverityCritical {
		t.Errorf("expected critical for 15m wait, got %+v", got[1])
	}
	if got[1].Message != "waiting for 15m0s" {
		t.Errorf("unexpected message %q", got[1].Message)
	}
}

func TestCheckQueueAlertsEmpty(t *testing.T) {
	if got := CheckQueueAlerts(nil); got != nil {
		t.Errorf("expected no alerts, got %v", got)
	}
}
