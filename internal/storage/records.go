package storage

import (
	"time"

	"github.com/dialview/icws-monitor/internal/types"
)

// InteractionRecord is the persisted shape of an interaction. Timestamps
// are stored as RFC 3339 strings so the table stays queryable by eye.
type InteractionRecord struct {
	InteractionID      string `dynamodbav:"InteractionID"`
	Workgroup          string `dynamodbav:"Workgroup"`
	UserName           string `dynamodbav:"UserName"`
	Direction          string `dynamodbav:"Direction"`
	CallType           string `dynamodbav:"CallType"`
	State              string `dynamodbav:"State"`
	StartDate          string `dynamodbav:"StartDate"`
	QueueDate          string `dynamodbav:"QueueDate"`
	ConnectedDate      string `dynamodbav:"ConnectedDate"`
	EndDate            string `dynamodbav:"EndDate"`
	ReferenceDate      string `dynamodbav:"ReferenceDate"`
	QueueTime          int    `dynamodbav:"QueueTime"`
	CorrectedQueueTime int    `dynamodbav:"CorrectedQueueTime"`
	InQueue            bool   `dynamodbav:"InQueue"`
	IsAbandoned        bool   `dynamodbav:"IsAbandoned"`
	IsCompleted        bool   `dynamodbav:"IsCompleted"`
	IsCurrent          bool   `dynamodbav:"IsCurrent"`
	UpdatedAt          string `dynamodbav:"UpdatedAt"`
}

// AgentRecord is the persisted shape of an agent
type AgentRecord struct {
	AgentID                   string   `dynamodbav:"AgentID"`
	Name                      string   `dynamodbav:"Name"`
	StatusName                string   `dynamodbav:"StatusName"`
	LoggedIn                  bool     `dynamodbav:"LoggedIn"`
	OnPhone                   bool     `dynamodbav:"OnPhone"`
	Workgroups                []string `dynamodbav:"Workgroups"`
	IsCurrent                 bool     `dynamodbav:"IsCurrent"`
	IsAvailable               bool     `dynamodbav:"IsAvailable"`
	IsAvailableCsa            bool     `dynamodbav:"IsAvailableCsa"`
	IsAvailablePartnerService bool     `dynamodbav:"IsAvailablePartnerService"`
	LastLocalChange           string   `dynamodbav:"LastLocalChange"`
	UpdatedAt                 string   `dynamodbav:"UpdatedAt"`
}

// LedgerRecord is the persisted shape of a push ledger entry
type LedgerRecord struct {
	InteractionID string `dynamodbav:"InteractionID"`
	DateAdded     string `dynamodbav:"DateAdded"`
	IsPushed      bool   `dynamodbav:"IsPushed"`
}

func interactionRecord(i types.Interaction) InteractionRecord {
	return InteractionRecord{
		InteractionID:      i.ID,
		Workgroup:          i.Workgroup,
		UserName:           i.UserName,
		Direction:          string(i.Direction),
		CallType:           string(i.CallType),
		State:              string(i.State),
		StartDate:          formatTime(i.StartDate),
		QueueDate:          formatTime(i.QueueDate),
		ConnectedDate:      formatTime(i.ConnectedDate),
		EndDate:            formatTime(i.EndDate),
		ReferenceDate:      i.ReferenceDate.UTC().Format(time.RFC3339),
		QueueTime:          intValue(i.QueueTime),
		CorrectedQueueTime: i.CorrectedQueueTime,
		InQueue:            i.InQueue,
		IsAbandoned:        i.IsAbandoned,
		IsCompleted:        i.IsCompleted,
		IsCurrent:          i.IsCurrent,
		UpdatedAt:          i.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func agentRecord(a types.Agent) AgentRecord {
	return AgentRecord{
		AgentID:                   a.ID,
		Name:                      a.Name,
		StatusName:                a.StatusName,
		LoggedIn:                  a.LoggedIn,
		OnPhone:                   a.OnPhone,
		Workgroups:                a.WorkgroupNames(),
		IsCurrent:                 a.IsCurrent,
		IsAvailable:               a.IsAvailable,
		IsAvailableCsa:            a.IsAvailableCsa,
		IsAvailablePartnerService: a.IsAvailablePartnerService,
		LastLocalChange:           a.LastLocalChange.UTC().Format(time.RFC3339),
		UpdatedAt:                 a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func ledgerRecord(e types.PushLedgerEntry) LedgerRecord {
	return LedgerRecord{
		InteractionID: e.InteractionID,
		DateAdded:     e.DateAdded.UTC().Format(time.RFC3339),
		IsPushed:      e.IsPushed,
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
