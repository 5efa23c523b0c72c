package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cohort/internal/audit"
	teammetrics "cohort/internal/team/metrics"
	"cohort/internal/team/models"
	dErrors "cohort/pkg/domain-errors"
	"cohort/pkg/requestcontext"
)

// TeamService manages the team lifecycle: creation with validated names,
// lookup, listing, and deletion.
type TeamService struct {
	teams   TeamStore
	cfg     models.TeamConfig
	logger  *slog.Logger
	metrics *teammetrics.Metrics
	audit   AuditPublisher
}

// NewTeamService constructs a TeamService.
func NewTeamService(teams TeamStore, cfg models.TeamConfig, opts ...Option) *TeamService {
	c := newServiceConfig(opts)
	return &TeamService{
		teams:   teams,
		cfg:     cfg,
		logger:  c.logger,
		metrics: c.metrics,
		audit:   c.audit,
	}
}

// CreateTeam validates the name and channel name, then persists a new empty
// team. The channel name is derived from the team name when left blank.
func (s *TeamService) CreateTeam(ctx context.Context, poolID, name, channelName string, number int) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "team name is required")
	}
	if number != 0 {
		if err := s.cfg.ValidateTeamNumber(number); err != nil {
			return nil, err
		}
	}
	if channelName == "" {
		channelName = name
	}
	channel, err := s.cfg.FormatChannelName(channelName)
	if err != nil {
		return nil, err
	}

	team := models.NewTeam(poolID, name, channel)
	team.Number = number
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, wrapTeamErr(err, "team not found", "team name or channel already in use")
	}

	s.emit(ctx, audit.Event{
		Action:   audit.ActionTeamCreated,
		PoolID:   poolID,
		TeamName: name,
		Details:  map[string]any{"channel_name": channel, "number": number},
	})
	if s.metrics != nil {
		s.metrics.TeamsCreated.Inc()
	}
	return team, nil
}

// GetTeam returns one team by name.
func (s *TeamService) GetTeam(ctx context.Context, poolID, name string) (*models.Team, error) {
	if name = strings.TrimSpace(name); name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "team name is required")
	}
	team, err := s.teams.Get(ctx, poolID, name)
	if err != nil {
		return nil, wrapTeamErr(err, "team not found", "team conflict")
	}
	return team, nil
}

// ListTeams returns all teams in a pool.
func (s *TeamService) ListTeams(ctx context.Context, poolID string) ([]*models.Team, error) {
	teams, err := s.teams.List(ctx, poolID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list teams")
	}
	return teams, nil
}

// DeleteTeam removes a team.
func (s *TeamService) DeleteTeam(ctx context.Context, poolID, name string) error {
	if name = strings.TrimSpace(name); name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "team name is required")
	}
	if err := s.teams.Delete(ctx, poolID, name); err != nil {
		return wrapTeamErr(err, "team not found", "team conflict")
	}
	s.emit(ctx, audit.Event{
		Action:   audit.ActionTeamDeleted,
		PoolID:   poolID,
		TeamName: name,
	})
	return nil
}

// emit publishes an audit event; failures are logged, never surfaced.
func (s *TeamService) emit(ctx context.Context, event audit.Event) {
	event.Timestamp = time.Now()
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := s.audit.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", string(event.Action),
			"pool_id", event.PoolID,
			"error", err)
	}
}
