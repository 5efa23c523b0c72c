package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cohort/internal/extraction"
	"cohort/internal/team/models"
	dErrors "cohort/pkg/domain-errors"
	"cohort/pkg/platform/sentinel"
)

// RosterService registers members into a pool's roster, running profile
// extraction over their introduction text. Extraction is best-effort: when
// it fails the member is registered with an empty profile and scoring falls
// back to keyword matching.
type RosterService struct {
	roster    RosterStore
	events    EventStateStore
	extractor extraction.Extractor
	logger    *slog.Logger
}

// NewRosterService constructs a RosterService.
func NewRosterService(roster RosterStore, events EventStateStore, extractor extraction.Extractor, opts ...Option) *RosterService {
	c := newServiceConfig(opts)
	return &RosterService{
		roster:    roster,
		events:    events,
		extractor: extractor,
		logger:    c.logger,
	}
}

// Register extracts a profile from the introduction and upserts the roster
// entry. The pool's event must be open.
func (s *RosterService) Register(ctx context.Context, poolID string, member models.Member, intro string) (*models.Member, error) {
	if strings.TrimSpace(member.UserID) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user_id is required")
	}
	if !member.IsRegistered() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest,
			"role_title must be %q or %q", models.RoleLeader, models.RoleMember)
	}

	active, err := s.events.IsActive(ctx, poolID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read event state")
	}
	if !active {
		return nil, dErrors.New(dErrors.CodeConflict, "registration is closed for this pool")
	}

	if s.extractor != nil && strings.TrimSpace(intro) != "" {
		profile, err := s.extractor.Extract(ctx, intro)
		if err != nil {
			s.logger.WarnContext(ctx, "profile extraction failed, registering without structured data",
				"pool_id", poolID,
				"user_id", member.UserID,
				"error", err)
		} else {
			member.ProfileData = profile
		}
	}

	if err := s.roster.Upsert(ctx, poolID, &member); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save roster entry")
	}
	return &member, nil
}

// ChangeRole switches a roster member between leader and member.
func (s *RosterService) ChangeRole(ctx context.Context, poolID, userID string, role models.RoleTitle) (*models.Member, error) {
	if role != models.RoleLeader && role != models.RoleMember {
		return nil, dErrors.Newf(dErrors.CodeBadRequest,
			"role_title must be %q or %q", models.RoleLeader, models.RoleMember)
	}

	member, err := s.roster.Get(ctx, poolID, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "member not found in pool roster")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load roster entry")
	}

	member.RoleTitle = role
	if err := s.roster.Upsert(ctx, poolID, member); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save roster entry")
	}
	return member, nil
}

// Unregister removes a member from the pool's roster.
func (s *RosterService) Unregister(ctx context.Context, poolID, userID string) error {
	if err := s.roster.Remove(ctx, poolID, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "member not found in pool roster")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove roster entry")
	}
	return nil
}
