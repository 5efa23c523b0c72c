package team

import (
	"context"

	"cohort/internal/team/models"
)

// Store persists teams and their rosters for a pool.
//
// Implementations return sentinel.ErrNotFound when a team does not exist and
// sentinel.ErrConflict when a create would collide on name or channel name
// within the same pool. Translation into API errors happens in the service
// layer.
type Store interface {
	// Create persists a new team including its members.
	Create(ctx context.Context, team *models.Team) error

	// Get returns one team by pool and name.
	Get(ctx context.Context, poolID, name string) (*models.Team, error)

	// List returns all teams in a pool ordered by team number.
	List(ctx context.Context, poolID string) ([]*models.Team, error)

	// Update replaces a team's stored state, including membership.
	Update(ctx context.Context, team *models.Team) error

	// Delete removes a team and its membership rows.
	Delete(ctx context.Context, poolID, name string) error

	// FindByMember returns the team a user belongs to within a pool.
	FindByMember(ctx context.Context, poolID, userID string) (*models.Team, error)

	// MaxNumber returns the highest team number in use for a pool, or 0
	// when the pool has no numbered teams.
	MaxNumber(ctx context.Context, poolID string) (int, error)
}
