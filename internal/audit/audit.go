package audit

import (
	"context"
	"sync"
	"time"
)

// Action names the operation an audit event records.
type Action string

const (
	ActionFormationRun Action = "formation.run"
	ActionTeamCreated  Action = "team.created"
	ActionTeamDeleted  Action = "team.deleted"
	ActionMemberMoved  Action = "member.assigned"
	ActionEventOpened  Action = "event.opened"
	ActionEventClosed  Action = "event.closed"
)

// Event captures one domain action for the audit trail. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Action    Action         `json:"action"`
	PoolID    string         `json:"pool_id"`
	TeamName  string         `json:"team_name,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// Publisher delivers audit events to a sink. Publish must not block domain
// logic on sink latency beyond what ctx allows, and failures are the
// caller's to log, not to fail the operation on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops all events. Used when no audit sink is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NopPublisher) Close() error                                   { return nil }

// InMemoryPublisher collects events for inspection in tests.
type InMemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewInMemory() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *InMemoryPublisher) Close() error { return nil }

// Events returns a snapshot of everything published so far.
func (p *InMemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
