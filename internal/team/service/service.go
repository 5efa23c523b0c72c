package service

import (
	"context"
	"errors"
	"log/slog"

	"cohort/internal/audit"
	teammetrics "cohort/internal/team/metrics"
	"cohort/internal/team/models"
	dErrors "cohort/pkg/domain-errors"
	"cohort/pkg/platform/sentinel"
)

// TeamStore persists teams.
type TeamStore interface {
	Create(ctx context.Context, team *models.Team) error
	Get(ctx context.Context, poolID, name string) (*models.Team, error)
	List(ctx context.Context, poolID string) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, poolID, name string) error
	FindByMember(ctx context.Context, poolID, userID string) (*models.Team, error)
	MaxNumber(ctx context.Context, poolID string) (int, error)
}

// RosterStore holds per-pool member profiles.
type RosterStore interface {
	Upsert(ctx context.Context, poolID string, member *models.Member) error
	Get(ctx context.Context, poolID, userID string) (*models.Member, error)
	List(ctx context.Context, poolID string) ([]*models.Member, error)
	Remove(ctx context.Context, poolID, userID string) error
}

// EventStateStore tracks whether a pool's formation event is open.
type EventStateStore interface {
	SetActive(ctx context.Context, poolID string, active bool) error
	IsActive(ctx context.Context, poolID string) (bool, error)
}

// AuditPublisher records domain actions.
type AuditPublisher interface {
	Publish(ctx context.Context, event audit.Event) error
}

type serviceConfig struct {
	logger  *slog.Logger
	metrics *teammetrics.Metrics
	audit   AuditPublisher
}

// Option configures a service.
type Option func(*serviceConfig)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

// WithMetrics sets the service metrics.
func WithMetrics(m *teammetrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

// WithAudit sets the audit publisher.
func WithAudit(p AuditPublisher) Option {
	return func(c *serviceConfig) { c.audit = p }
}

func newServiceConfig(opts []Option) *serviceConfig {
	cfg := &serviceConfig{
		logger: slog.Default(),
		audit:  audit.NopPublisher{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// wrapTeamErr translates store sentinels into coded domain errors.
func wrapTeamErr(err error, notFoundMsg, conflictMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, conflictMsg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "team storage failed")
	}
}
