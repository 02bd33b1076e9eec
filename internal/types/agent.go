package types

import "time"

// Tracked workgroup names
const (
	WorkgroupCSA            = "CSA"
	WorkgroupPartnerService = "Partner Service"
)

// TrackedWorkgroups are the workgroups reported in queue and agent statistics
var TrackedWorkgroups = []string{WorkgroupCSA, WorkgroupPartnerService}

// Workgroup is a named call queue/department an agent belongs to
type Workgroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Agent is one tracked workstation user
type Agent struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	StatusName string      `json:"statusName"`
	LoggedIn   bool        `json:"loggedIn"`
	OnPhone    bool        `json:"onPhone"`
	Workgroups []Workgroup `json:"workgroups"`

	// LastLocalChange is the local wall clock of the last status update
	LastLocalChange time.Time `json:"lastLocalChange"`

	// IsCurrent is true while the switch still reports this agent
	IsCurrent bool `json:"isCurrent"`

	// Derived availability flags, recomputed on every update
	IsAvailable               bool `json:"isAvailable"`
	IsAvailableCsa            bool `json:"isAvailableCsa"`
	IsAvailablePartnerService bool `json:"isAvailablePartnerService"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Key returns the agent identifier
func (a Agent) Key() string { return a.ID }

// HasWorkgroup reports whether the agent is a member of the named workgroup
func (a Agent) HasWorkgroup(name string) bool {
	for _, wg := range a.Workgroups {
		if wg.Name == name {
			return true
		}
	}
	return false
}

// WorkgroupNames returns the names of all workgroups the agent belongs to
func (a Agent) WorkgroupNames() []string {
	names := make([]string, 0, len(a.Workgroups))
	for _, wg := range a.Workgroups {
		names = append(names, wg.Name)
	}
	return names
}

// AgentPatch carries field-wise overrides for an agent. Nil fields are absent.
type AgentPatch struct {
	Name       *string
	StatusName *string
	LoggedIn   *bool
	OnPhone    *bool
	Workgroups []Workgroup
}

// Apply merges the patch into the agent
func (p AgentPatch) Apply(a Agent) Agent {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.StatusName != nil {
		a.StatusName = *p.StatusName
	}
	if p.LoggedIn != nil {
		a.LoggedIn = *p.LoggedIn
	}
	if p.OnPhone != nil {
		a.OnPhone = *p.OnPhone
	}
	if p.Workgroups != nil {
		a.Workgroups = p.Workgroups
	}
	return a
}
