package types

import "time"

// MessageType identifies the kind of a polled message
type MessageType string

const (
	// MessageQueueContents carries interaction add/change/remove batches
	MessageQueueContents MessageType = "queue-contents"
	// MessageUserConfiguration carries workstation user add/change/remove batches
	MessageUserConfiguration MessageType = "user-configuration"
	// MessageUserStatuses carries user status changes
	MessageUserStatuses MessageType = "user-statuses"
)

// Message is one typed entry of a poll response
type Message struct {
	Type         MessageType       `json:"type"`
	Interactions *InteractionBatch `json:"interactions,omitempty"`
	Users        *UserBatch        `json:"users,omitempty"`
	Statuses     *StatusBatch      `json:"statuses,omitempty"`
}

// InteractionBatch is one tick's worth of interaction events
type InteractionBatch struct {
	Added   []RawInteraction `json:"added"`
	Changed []RawInteraction `json:"changed"`
	Removed []string         `json:"removed"`
}

// UserBatch is one tick's worth of workstation user events
type UserBatch struct {
	Added   []RawUser `json:"added"`
	Changed []RawUser `json:"changed"`
	Removed []string  `json:"removed"`
}

// StatusBatch is one tick's worth of user status changes
type StatusBatch struct {
	Changed []RawStatus `json:"changed"`
}

// RawInteraction is a switch-shaped interaction record. All attributes are
// strings on the wire; absent attributes are empty.
type RawInteraction struct {
	InteractionID string `json:"interactionId"`
	StateCode     string `json:"state"`
	CallTypeCode  string `json:"callType"`
	DirectionCode string `json:"direction"`
	Workgroup     string `json:"workgroup"`
	UserName      string `json:"userName"`
	QueueDate     string `json:"queueDate"`
	ConnectedDate string `json:"connectedDate"`
	EndDate       string `json:"endDate"`
	StartDate     string `json:"startDate"`
	AnswerDate    string `json:"answerDate"`
}

// RawWorkgroup is a switch-shaped workgroup membership object
type RawWorkgroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawUser is a switch-shaped workstation user record
type RawUser struct {
	UserID      string         `json:"userId"`
	DisplayName string         `json:"displayName"`
	Workgroups  []RawWorkgroup `json:"workgroups"`
}

// RawStatus is a switch-shaped user status change
type RawStatus struct {
	UserID     string `json:"userId"`
	StatusName string `json:"statusName"`
	LoggedIn   bool   `json:"loggedIn"`
	OnPhone    bool   `json:"onPhone"`
}

// PushLedgerEntry records that an interaction has been (or is being) pushed
// to the BI sink
type PushLedgerEntry struct {
	InteractionID string    `json:"id"`
	DateAdded     time.Time `json:"dateAdded"`
	IsPushed      bool      `json:"isPushed"`
}
