package eventstate

import "context"

// Store tracks whether a pool's formation event is currently open. While an
// event is active the pool accepts registrations and formation runs; closing
// it freezes the roster.
type Store interface {
	// SetActive marks a pool's event as open or closed.
	SetActive(ctx context.Context, poolID string, active bool) error

	// IsActive reports whether a pool's event is open. Unknown pools are
	// inactive.
	IsActive(ctx context.Context, poolID string) (bool, error)
}
