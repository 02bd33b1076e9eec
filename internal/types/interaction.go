package types

import "time"

// CallDirection represents the direction of a call
type CallDirection string

const (
	DirectionInbound  CallDirection = "inbound"
	DirectionOutbound CallDirection = "outbound"
	DirectionUnknown  CallDirection = ""
)

// CallType represents the kind of call reported by the switch
type CallType string

const (
	CallTypeExternal CallType = "external"
	CallTypeIntercom CallType = "intercom"
	CallTypeUnknown  CallType = ""
)

// InteractionState represents the decoded switch state of an interaction
type InteractionState string

const (
	StateAlertingAgent     InteractionState = "alerting_agent"
	StateOnCall            InteractionState = "on_call"
	StateOnHold            InteractionState = "on_hold"
	StateVoicemail         InteractionState = "voicemail"
	StateOffering          InteractionState = "offering"
	StateAwaitingAnswer    InteractionState = "awaiting_answer"
	StateParked            InteractionState = "parked"
	StateCallEndedRemotely InteractionState = "call_ended_remotely"
	StateCallEndedLocally  InteractionState = "call_ended_locally"
	StateDialing           InteractionState = "dialing"
	StateUnknown           InteractionState = ""
)

// Interaction is one tracked call/contact record
type Interaction struct {
	ID        string           `json:"id"`
	Workgroup string           `json:"workgroup"`
	UserName  string           `json:"userName"`
	Direction CallDirection    `json:"callDirection"`
	CallType  CallType         `json:"callType"`
	State     InteractionState `json:"state"`

	QueueDate     *time.Time `json:"queueDate,omitempty"`
	ConnectedDate *time.Time `json:"connectedDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	AnswerDate    *time.Time `json:"answerDate,omitempty"`

	// ReferenceDate is the local wall clock when the record was first observed
	ReferenceDate time.Time `json:"referenceDate"`

	// QueueTime is the switch-reported queue duration in seconds, set once
	// the record leaves the queue
	QueueTime *int `json:"queueTime,omitempty"`

	// CorrectedQueueTime is the skew-corrected elapsed queue time, recomputed
	// every tick while the record is in queue
	CorrectedQueueTime int `json:"correctedQueueTime"`

	// LocalQueueTime is the raw local elapsed time, frozen once the record
	// leaves the queue
	LocalQueueTime *int `json:"localQueueTime,omitempty"`

	InQueue     bool `json:"inQueue"`
	IsAbandoned bool `json:"isAbandoned"`
	IsCompleted bool `json:"isCompleted"`

	// IsCurrent is true while the switch still reports this record as live
	IsCurrent bool `json:"isCurrent"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Key returns the stable external identifier of the interaction
func (i Interaction) Key() string { return i.ID }

// Terminal reports whether the interaction reached a terminal state
func (i Interaction) Terminal() bool { return i.IsAbandoned || i.IsCompleted }

// InteractionPatch carries field-wise overrides decoded from an added or
// changed batch entry. Nil fields are absent and leave the target unchanged.
type InteractionPatch struct {
	Workgroup *string
	UserName  *string
	Direction *CallDirection
	CallType  *CallType
	State     *InteractionState

	QueueDate     *time.Time
	ConnectedDate *time.Time
	EndDate       *time.Time
	StartDate     *time.Time
	AnswerDate    *time.Time
}

// Apply merges the patch into the interaction, field-wise override where the
// patch field is present.
func (p InteractionPatch) Apply(i Interaction) Interaction {
	if p.Workgroup != nil {
		i.Workgroup = *p.Workgroup
	}
	if p.UserName != nil {
		i.UserName = *p.UserName
	}
	if p.Direction != nil {
		i.Direction = *p.Direction
	}
	if p.CallType != nil {
		i.CallType = *p.CallType
	}
	if p.State != nil {
		i.State = *p.State
	}
	if p.QueueDate != nil {
		i.QueueDate = p.QueueDate
	}
	if p.ConnectedDate != nil {
		i.ConnectedDate = p.ConnectedDate
	}
	if p.EndDate != nil {
		i.EndDate = p.EndDate
	}
	if p.StartDate != nil {
		i.StartDate = p.StartDate
	}
	if p.AnswerDate != nil {
		i.AnswerDate = p.AnswerDate
	}
	return i
}
