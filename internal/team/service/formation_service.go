package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cohort/internal/audit"
	"cohort/internal/team/formation"
	teammetrics "cohort/internal/team/metrics"
	"cohort/internal/team/models"
	dErrors "cohort/pkg/domain-errors"
	"cohort/pkg/platform/sentinel"
	"cohort/pkg/requestcontext"
)

// FormationService runs the formation pipeline over a pool's roster and
// commits the results. Proposals from RunFormation are not persisted until
// BatchCreateTeams is called with them.
type FormationService struct {
	engine  *formation.Engine
	roster  RosterStore
	teams   TeamStore
	events  EventStateStore
	cfg     models.TeamConfig
	logger  *slog.Logger
	metrics *teammetrics.Metrics
	audit   AuditPublisher
}

// NewFormationService constructs a FormationService.
func NewFormationService(engine *formation.Engine, roster RosterStore, teams TeamStore, events EventStateStore, cfg models.TeamConfig, opts ...Option) *FormationService {
	c := newServiceConfig(opts)
	return &FormationService{
		engine:  engine,
		roster:  roster,
		teams:   teams,
		events:  events,
		cfg:     cfg,
		logger:  c.logger,
		metrics: c.metrics,
		audit:   c.audit,
	}
}

// BatchFailure records one team that could not be committed.
type BatchFailure struct {
	TeamName string `json:"team_name"`
	Reason   string `json:"reason"`
}

// BatchResult reports the outcome of a batch commit. Failures do not abort
// the batch; each team is committed independently.
type BatchResult struct {
	Created  []*models.Team `json:"created"`
	Failures []BatchFailure `json:"failures,omitempty"`
}

// RunFormation executes the full pipeline over the pool's roster and returns
// team proposals. The pool's event must be open.
func (s *FormationService) RunFormation(ctx context.Context, poolID string) (*formation.Result, error) {
	if err := s.requireOpenEvent(ctx, poolID); err != nil {
		return nil, err
	}

	pool, err := s.roster.List(ctx, poolID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load roster")
	}
	if len(pool) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pool roster is empty")
	}

	// Run counters are owned by the engine, which observes every run
	// regardless of the calling surface.
	result, err := s.engine.FormTeams(ctx, poolID, pool)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "formation run failed")
	}

	s.emit(ctx, audit.Event{
		Action: audit.ActionFormationRun,
		PoolID: poolID,
		Details: map[string]any{
			"pool_size":  len(pool),
			"teams":      len(result.Teams),
			"unassigned": len(result.Unassigned),
		},
	})
	return result, nil
}

// BatchCreateTeams commits proposed teams with sequential numbers continuing
// from the highest number already in the pool. Each team is committed
// independently; one failure never rolls back the others.
func (s *FormationService) BatchCreateTeams(ctx context.Context, poolID string, proposals []*models.Team) (*BatchResult, error) {
	if len(proposals) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no teams to create")
	}

	next, err := s.teams.MaxNumber(ctx, poolID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to determine next team number")
	}

	result := &BatchResult{}
	for _, proposal := range proposals {
		next++
		team, err := s.commitTeam(ctx, poolID, proposal, next)
		if err != nil {
			result.Failures = append(result.Failures, BatchFailure{
				TeamName: proposal.Name,
				Reason:   err.Error(),
			})
			s.logger.WarnContext(ctx, "team commit failed",
				"pool_id", poolID,
				"team", proposal.Name,
				"error", err)
			continue
		}
		result.Created = append(result.Created, team)
	}

	if s.metrics != nil {
		s.metrics.TeamsCreated.Add(float64(len(result.Created)))
		for _, team := range result.Created {
			s.metrics.MembersAssigned.Add(float64(team.Size()))
		}
	}
	return result, nil
}

func (s *FormationService) commitTeam(ctx context.Context, poolID string, proposal *models.Team, number int) (*models.Team, error) {
	if err := s.cfg.ValidateTeamNumber(number); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("Team %d", number)
	channel, err := s.cfg.FormatChannelName(name)
	if err != nil {
		return nil, err
	}

	team := models.NewTeam(poolID, name, channel)
	team.Number = number
	for _, member := range proposal.Members {
		team.Add(member)
	}

	if err := s.teams.Create(ctx, team); err != nil {
		return nil, wrapTeamErr(err, "team not found", "team name or channel already in use")
	}

	s.emit(ctx, audit.Event{
		Action:   audit.ActionTeamCreated,
		PoolID:   poolID,
		TeamName: team.Name,
		Details:  map[string]any{"number": number, "size": team.Size(), "proposed_as": proposal.Name},
	})
	return team, nil
}

// AssignMember moves a roster member into an existing team.
func (s *FormationService) AssignMember(ctx context.Context, poolID, teamName, userID string) (*models.Team, error) {
	member, err := s.roster.Get(ctx, poolID, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "member not found in pool roster")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load roster entry")
	}

	if existing, err := s.teams.FindByMember(ctx, poolID, userID); err == nil {
		return nil, dErrors.Newf(dErrors.CodeConflict, "member already belongs to %s", existing.Name)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing membership")
	}

	team, err := s.teams.Get(ctx, poolID, teamName)
	if err != nil {
		return nil, wrapTeamErr(err, "team not found", "team conflict")
	}
	if team.Size() >= s.cfg.MaxTeamSize {
		return nil, dErrors.Newf(dErrors.CodeConflict, "team is full (max %d members)", s.cfg.MaxTeamSize)
	}

	team.Add(member)
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, wrapTeamErr(err, "team not found", "team conflict")
	}

	s.emit(ctx, audit.Event{
		Action:   audit.ActionMemberMoved,
		PoolID:   poolID,
		TeamName: team.Name,
		UserID:   userID,
	})
	if s.metrics != nil {
		s.metrics.MembersAssigned.Inc()
	}
	return team, nil
}

// RecommendTeams ranks joinable teams for one roster member.
func (s *FormationService) RecommendTeams(ctx context.Context, poolID, userID string) ([]formation.Recommendation, error) {
	member, err := s.roster.Get(ctx, poolID, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "member not found in pool roster")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load roster entry")
	}

	teams, err := s.teams.List(ctx, poolID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list teams")
	}
	return s.engine.RecommendTeams(member.ProfileData, teams), nil
}

// SetEventActive opens or closes a pool's formation event.
func (s *FormationService) SetEventActive(ctx context.Context, poolID string, active bool) error {
	if err := s.events.SetActive(ctx, poolID, active); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update event state")
	}
	action := audit.ActionEventClosed
	if active {
		action = audit.ActionEventOpened
	}
	s.emit(ctx, audit.Event{Action: action, PoolID: poolID})
	return nil
}

func (s *FormationService) requireOpenEvent(ctx context.Context, poolID string) error {
	active, err := s.events.IsActive(ctx, poolID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read event state")
	}
	if !active {
		return dErrors.New(dErrors.CodeConflict, "formation event is not open for this pool")
	}
	return nil
}

// emit publishes an audit event; failures are logged, never surfaced.
func (s *FormationService) emit(ctx context.Context, event audit.Event) {
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
