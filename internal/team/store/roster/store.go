package roster

import (
	"context"

	"cohort/internal/team/models"
)

// Store holds the per-pool roster: every member profile eligible for a
// formation run, leaders and members alike, whether or not they currently
// belong to a team.
type Store interface {
	// Upsert inserts or replaces a member's roster entry.
	Upsert(ctx context.Context, poolID string, member *models.Member) error

	// Get returns one roster entry; sentinel.ErrNotFound when absent.
	Get(ctx context.Context, poolID, userID string) (*models.Member, error)

	// List returns all roster entries for a pool ordered by user ID.
	List(ctx context.Context, poolID string) ([]*models.Member, error)

	// Remove deletes a roster entry; sentinel.ErrNotFound when absent.
	Remove(ctx context.Context, poolID, userID string) error
}
