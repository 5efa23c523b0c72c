package models

// RoleTitle classifies a member for formation purposes. Only leaders may seed
// a team.
type RoleTitle string

const (
	RoleLeader       RoleTitle = "Team Leader"
	RoleMember       RoleTitle = "Team Member"
	RoleUnregistered RoleTitle = "Unregistered"
)

// ProfileData is the structured intake extracted from a member's free-form
// introduction. Every field is optional; scoring falls back to keyword
// matching when Category is absent.
type ProfileData struct {
	Timezone string              `json:"timezone,omitempty"`
	Goals    []string            `json:"goals,omitempty"`
	Habits   []string            `json:"habits,omitempty"`
	Category map[string][]string `json:"category,omitempty"`
}

// HasStructuredCategories reports whether the extraction produced at least one
// domain:sub-domain pair.
func (p ProfileData) HasStructuredCategories() bool {
	for _, subs := range p.Category {
		if len(subs) > 0 {
			return true
		}
	}
	return false
}

// Member is one person's intake record. Members are immutable inputs to a
// formation run; the engine only reads them and writes team membership.
type Member struct {
	UserID      string      `json:"user_id"`
	Username    string      `json:"username"`
	DisplayName string      `json:"display_name"`
	RoleTitle   RoleTitle   `json:"role_title"`
	ProfileData ProfileData `json:"profile_data"`
}

// IsLeader reports whether this member may found a team.
func (m Member) IsLeader() bool {
	return m.RoleTitle == RoleLeader
}

// IsRegistered reports whether the member holds a team role at all.
func (m Member) IsRegistered() bool {
	return m.RoleTitle == RoleLeader || m.RoleTitle == RoleMember
}
