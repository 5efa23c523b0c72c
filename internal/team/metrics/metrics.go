// Package metrics holds the Prometheus metrics for team formation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the team feature.
type Metrics struct {
	FormationRuns     prometheus.Counter
	FormationFailures prometheus.Counter
	TeamsProposed     prometheus.Counter
	MembersUnassigned prometheus.Counter
	TeamsCreated      prometheus.Counter
	MembersAssigned   prometheus.Counter
	PhaseDuration     *prometheus.HistogramVec
}

// New creates and registers all team metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the team metrics on the given registerer, letting tests
// use an isolated registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FormationRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "cohort_formation_runs_total",
			Help: "Total number of team formation runs started",
		}),
		FormationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "cohort_formation_failures_total",
			Help: "Total number of team formation runs that failed",
		}),
		TeamsProposed: factory.NewCounter(prometheus.CounterOpts{
			Name: "cohort_teams_proposed_total",
			Help: "Total number of teams proposed by formation runs",
		}),
		MembersUnassigned: factory.NewCounter(prometheus.CounterOpts{
			Name: "cohort_members_unassigned_total",
			Help: "Total number of members left unassigned after formation runs",
		}),
		TeamsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "cohort_teams_created_total",
			Help: "Total number of teams committed to storage",
		}),
		MembersAssigned: factory.NewCounter(prometheus.CounterOpts{
			Name: "cohort_members_assigned_total",
			Help: "Total number of members manually assigned to teams",
		}),
		PhaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cohort_formation_phase_duration_seconds",
			Help:    "Duration of each formation pipeline phase",
			Buckets: prometheus.DefBuckets,
		}, []string{"phase"}),
	}
}
