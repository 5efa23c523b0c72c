package models

import (
	"regexp"
	"time"
)

var teamNumberRe = regexp.MustCompile(`\d+`)

// Team groups members under at least one leader. Teams are mutated in place
// by the formation pipeline and handed off as immutable proposals afterward.
type Team struct {
	PoolID      string             `json:"pool_id"`
	Name        string             `json:"name"` // e.g. "Team 3", or "Team <leader>" while proposed
	ChannelName string             `json:"channel_name"`
	Members     map[string]*Member `json:"members"` // user_id -> member
	Number      int                `json:"number,omitempty"`
	CreatedAt   time.Time          `json:"created_at,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at,omitempty"`
}

// NewTeam builds an empty team for the given pool.
func NewTeam(poolID, name, channelName string) *Team {
	return &Team{
		PoolID:      poolID,
		Name:        name,
		ChannelName: channelName,
		Members:     make(map[string]*Member),
	}
}

// TeamNumber extracts the numeric part of the team name when Number is unset.
func (t *Team) TeamNumber() int {
	if t.Number != 0 {
		return t.Number
	}
	if m := teamNumberRe.FindString(t.Name); m != "" {
		n := 0
		for _, c := range m {
			n = n*10 + int(c-'0')
		}
		return n
	}
	return 0
}

// Size returns the current member count.
func (t *Team) Size() int { return len(t.Members) }

// Leaders returns the team's leaders.
func (t *Team) Leaders() []*Member {
	var leaders []*Member
	for _, m := range t.Members {
		if m.IsLeader() {
			leaders = append(leaders, m)
		}
	}
	return leaders
}

// LeaderCount counts the team's leaders.
func (t *Team) LeaderCount() int {
	n := 0
	for _, m := range t.Members {
		if m.IsLeader() {
			n++
		}
	}
	return n
}

// HasLeader reports whether at least one leader is present. Every non-empty
// team produced by a formation run satisfies this.
func (t *Team) HasLeader() bool { return t.LeaderCount() > 0 }

// Add inserts or replaces a member.
func (t *Team) Add(m *Member) {
	if t.Members == nil {
		t.Members = make(map[string]*Member)
	}
	t.Members[m.UserID] = m
}

// MemberIDs returns the member IDs in no particular order.
func (t *Team) MemberIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for id := range t.Members {
		ids = append(ids, id)
	}
	return ids
}
