// Package formation partitions an unassigned pool of members into proposed
// teams via a four-phase clustering pipeline: timezone grouping, per-group
// category clustering around leaders, semantic trimming of oversized teams,
// and tiered orphan reassignment.
package formation

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"cohort/internal/platform/config"
	teammetrics "cohort/internal/team/metrics"
	"cohort/internal/team/models"
	"cohort/internal/team/scoring"
	"cohort/internal/team/timezone"
)

// pairwiseConcurrency bounds the parallel similarity calls in phase 3.
const pairwiseConcurrency = 8

// Result is the outcome of a formation run. Callers must never assume the
// unassigned list is empty: "member remains unassigned" is a valid terminal
// outcome, not an error.
type Result struct {
	Teams      []*models.Team
	Unassigned []*models.Member
}

// Engine runs the formation pipeline. It owns no storage; a run reads its
// input pool and produces proposals for the service layer to commit.
type Engine struct {
	scorer  *scoring.Engine
	cfg     config.FormationConfig
	logger  *slog.Logger
	metrics *teammetrics.Metrics
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics enables per-run Prometheus metrics.
func WithMetrics(m *teammetrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New builds a formation engine around the scoring primitives.
func New(scorer *scoring.Engine, cfg config.FormationConfig, opts ...Option) *Engine {
	e := &Engine{
		scorer: scorer,
		cfg:    cfg,
		logger: slog.Default(),
		tracer: otel.Tracer("cohort/formation"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FormTeams partitions pool into proposed teams. Phases execute strictly in
// order; an aborted run discards all partial state and a rerun starts from
// the full original pool. Members with no user ID are skipped and logged,
// never aborting the run.
func (e *Engine) FormTeams(ctx context.Context, poolID string, pool []*models.Member) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "formation.FormTeams",
		trace.WithAttributes(attribute.Int("pool.size", len(pool))))
	defer span.End()

	if e.metrics != nil {
		e.metrics.FormationRuns.Inc()
	}

	members := e.validatePool(ctx, pool)
	leaders := 0
	for _, m := range members {
		if m.IsLeader() {
			leaders++
		}
	}
	e.logger.InfoContext(ctx, "starting team formation",
		"pool_id", poolID, "leaders", leaders, "members", len(members)-leaders)

	clusters := e.clusterByTimezone(ctx, members)
	teams, orphans := e.clusterByCategory(ctx, poolID, clusters)
	e.logger.InfoContext(ctx, "initial clustering complete",
		"teams", len(teams), "orphans", len(orphans))

	teams, semanticOrphans, err := e.optimizeOversized(ctx, teams)
	if err != nil {
		if e.metrics != nil {
			e.metrics.FormationFailures.Inc()
		}
		return nil, err
	}
	orphans = append(orphans, semanticOrphans...)

	unassigned := e.reassignOrphans(ctx, orphans, teams)

	e.logger.InfoContext(ctx, "team formation complete",
		"pool_id", poolID, "teams", len(teams), "unassigned", len(unassigned))
	if e.metrics != nil {
		e.metrics.TeamsProposed.Add(float64(len(teams)))
		e.metrics.MembersUnassigned.Add(float64(len(unassigned)))
	}
	span.SetAttributes(
		attribute.Int("teams", len(teams)),
		attribute.Int("unassigned", len(unassigned)),
	)

	return &Result{Teams: teams, Unassigned: unassigned}, nil
}

// validatePool drops records the pipeline cannot use. A single bad record
// must never abort a full run.
func (e *Engine) validatePool(ctx context.Context, pool []*models.Member) []*models.Member {
	valid := make([]*models.Member, 0, len(pool))
	for _, m := range pool {
		if m == nil || m.UserID == "" {
			e.logger.WarnContext(ctx, "skipping member with missing user_id")
			continue
		}
		valid = append(valid, m)
	}
	return valid
}

// clusterByTimezone is phase 1: group everyone by exact UTC offset, with a
// shared bucket for unknown or unparseable timezones. Coarse partitioning
// first bounds the search space before the expensive category and semantic
// steps.
func (e *Engine) clusterByTimezone(ctx context.Context, members []*models.Member) map[timezone.Offset][]*models.Member {
	_, span := e.tracer.Start(ctx, "formation.clusterByTimezone")
	defer span.End()
	defer e.observePhase("timezone", time.Now())

	clusters := make(map[timezone.Offset][]*models.Member)
	for _, m := range members {
		offset := timezone.ParseUTCOffset(m.ProfileData.Timezone)
		clusters[offset] = append(clusters[offset], m)
	}
	span.SetAttributes(attribute.Int("clusters", len(clusters)))
	return clusters
}

// clusterByCategory is phase 2: within each timezone group, attach each
// non-leader to its best scoring leader, or orphan it when no leader clears
// the minimum category score. A group without leaders orphans everyone.
// Every leader seeds a team, singleton if it attracts nobody.
func (e *Engine) clusterByCategory(ctx context.Context, poolID string, clusters map[timezone.Offset][]*models.Member) ([]*models.Team, []*models.Member) {
	_, span := e.tracer.Start(ctx, "formation.clusterByCategory")
	defer span.End()
	defer e.observePhase("category", time.Now())

	var teams []*models.Team
	var orphans []*models.Member

	for _, group := range orderedClusters(clusters) {
		var leaders, nonLeaders []*models.Member
		for _, m := range group {
			if m.IsLeader() {
				leaders = append(leaders, m)
			} else {
				nonLeaders = append(nonLeaders, m)
			}
		}

		if len(leaders) == 0 {
			orphans = append(orphans, group...)
			continue
		}

		// Leaders in user ID order: exact score ties go to the lowest
		// leader ID, independent of map iteration.
		sort.Slice(leaders, func(i, j int) bool { return leaders[i].UserID < leaders[j].UserID })

		leaderCats := make(map[string]scoring.CategorySet, len(leaders))
		assignments := make(map[string][]*models.Member, len(leaders))
		for _, l := range leaders {
			leaderCats[l.UserID] = e.scorer.MemberCategories(l.ProfileData)
			assignments[l.UserID] = []*models.Member{l}
		}

		for _, member := range nonLeaders {
			memberCats := e.scorer.MemberCategories(member.ProfileData)

			bestID, bestScore := "", -1.0
			for _, l := range leaders {
				if score := e.scorer.CategoricalScore(memberCats, leaderCats[l.UserID]); score > bestScore {
					bestID, bestScore = l.UserID, score
				}
			}

			if bestScore >= e.cfg.MinCategoryScore {
				assignments[bestID] = append(assignments[bestID], member)
			} else {
				orphans = append(orphans, member)
			}
		}

		for _, l := range leaders {
			team := models.NewTeam(poolID, "Team "+l.DisplayName, channelSlug(l.DisplayName))
			for _, m := range assignments[l.UserID] {
				team.Add(m)
			}
			teams = append(teams, team)
		}
	}

	span.SetAttributes(attribute.Int("teams", len(teams)), attribute.Int("orphans", len(orphans)))
	return teams, orphans
}

// optimizeOversized is phase 3: for every team over capacity, score all
// member pairs semantically, keep the leaders plus the non-leaders most
// cohesive with the rest, and orphan the remainder. A greedy local trim, not
// a global optimum.
func (e *Engine) optimizeOversized(ctx context.Context, teams []*models.Team) ([]*models.Team, []*models.Member, error) {
	ctx, span := e.tracer.Start(ctx, "formation.optimizeOversized")
	defer span.End()
	defer e.observePhase("semantic", time.Now())

	var orphans []*models.Member
	for _, team := range teams {
		if team.Size() <= e.cfg.MaxTeamSize {
			continue
		}
		evicted, err := e.trimTeam(ctx, team)
		if err != nil {
			return nil, nil, err
		}
		orphans = append(orphans, evicted...)
	}
	span.SetAttributes(attribute.Int("evicted", len(orphans)))
	return teams, orphans, nil
}

func (e *Engine) trimTeam(ctx context.Context, team *models.Team) ([]*models.Member, error) {
	members := make([]*models.Member, 0, team.Size())
	for _, m := range team.Members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })

	size := len(members)
	e.logger.InfoContext(ctx, "optimizing oversized team", "team", team.Name, "size", size)

	// Full pairwise compatibility matrix, symmetric with a zero diagonal.
	// Pair scoring calls are independent and run concurrently, but the
	// keep/evict selection below only happens once every score is in.
	matrix := make([][]float64, size)
	for i := range matrix {
		matrix[i] = make([]float64, size)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pairwiseConcurrency)
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			i, j := i, j
			g.Go(func() error {
				score, err := e.scorer.SemanticCompatibility(gctx, members[i].ProfileData, members[j].ProfileData)
				if err != nil {
					return err
				}
				matrix[i][j] = score
				matrix[j][i] = score
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	meanScores := make(map[string]float64, size)
	for i, m := range members {
		total := 0.0
		for _, v := range matrix[i] {
			total += v
		}
		meanScores[m.UserID] = total / float64(size)
	}

	var leaders, nonLeaders []*models.Member
	for _, m := range members {
		if m.IsLeader() {
			leaders = append(leaders, m)
		} else {
			nonLeaders = append(nonLeaders, m)
		}
	}
	sort.SliceStable(nonLeaders, func(i, j int) bool {
		return meanScores[nonLeaders[i].UserID] > meanScores[nonLeaders[j].UserID]
	})

	// Leaders are never evicted.
	slots := e.cfg.MaxTeamSize - len(leaders)
	if slots < 0 {
		slots = 0
	}
	kept := append(append([]*models.Member{}, leaders...), nonLeaders[:minInt(slots, len(nonLeaders))]...)
	var evicted []*models.Member
	if slots < len(nonLeaders) {
		evicted = nonLeaders[slots:]
	}

	team.Members = make(map[string]*models.Member, len(kept))
	for _, m := range kept {
		team.Add(m)
	}
	return evicted, nil
}

// reassignOrphans is phase 4: place each orphan into the best team with
// spare capacity using tiered selection. Tier 1 prefers teams clearing the
// timezone threshold, ranked by category score then smallest size; tier 2
// accepts the least-bad timezone fit rather than leaving the orphan
// stranded. Each placement is visible to subsequent orphans.
func (e *Engine) reassignOrphans(ctx context.Context, orphans []*models.Member, teams []*models.Team) []*models.Member {
	_, span := e.tracer.Start(ctx, "formation.reassignOrphans")
	defer span.End()
	defer e.observePhase("reassignment", time.Now())

	sort.Slice(orphans, func(i, j int) bool { return orphans[i].UserID < orphans[j].UserID })

	var unassigned []*models.Member
	for _, orphan := range orphans {
		candidates := e.candidateFits(orphan.ProfileData, teams)
		if len(candidates) == 0 {
			unassigned = append(unassigned, orphan)
			continue
		}

		var primary []candidateFit
		for _, c := range candidates {
			if c.fit.TZScore >= e.cfg.MinTimezoneScore {
				primary = append(primary, c)
			}
		}

		var best *models.Team
		if len(primary) > 0 {
			best = pickBest(primary, func(a, b candidateFit) bool {
				if a.fit.CatScore != b.fit.CatScore {
					return a.fit.CatScore > b.fit.CatScore
				}
				return a.size < b.size
			})
		} else {
			best = pickBest(candidates, func(a, b candidateFit) bool {
				if a.fit.TZScore != b.fit.TZScore {
					return a.fit.TZScore > b.fit.TZScore
				}
				if a.fit.CatScore != b.fit.CatScore {
					return a.fit.CatScore > b.fit.CatScore
				}
				return a.size < b.size
			})
		}

		best.Add(orphan)
	}

	span.SetAttributes(attribute.Int("unassigned", len(unassigned)))
	return unassigned
}

type candidateFit struct {
	team *models.Team
	fit  scoring.Fit
	size int
}

// candidateFits evaluates every team the member could still join. Teams at
// capacity are filtered here so selection can never violate the size
// invariant.
func (e *Engine) candidateFits(profile models.ProfileData, teams []*models.Team) []candidateFit {
	var out []candidateFit
	for _, team := range teams {
		if team.Size() >= e.cfg.MaxTeamSize {
			continue
		}
		leaders := team.Leaders()
		if len(leaders) == 0 {
			continue
		}
		sort.Slice(leaders, func(i, j int) bool { return leaders[i].UserID < leaders[j].UserID })
		out = append(out, candidateFit{
			team: team,
			fit:  e.scorer.MemberTeamFit(profile, leaders),
			size: team.Size(),
		})
	}
	return out
}

func pickBest(candidates []candidateFit, better func(a, b candidateFit) bool) *models.Team {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best.team
}

// RecommendTeams ranks all teams with spare capacity for one member by
// (tz score, cat score, smallest size) descending. Read-only: calling it
// twice with unchanged teams returns the same order.
func (e *Engine) RecommendTeams(member models.ProfileData, teams []*models.Team) []Recommendation {
	candidates := e.candidateFits(member, teams)
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.fit.TZScore != b.fit.TZScore {
			return a.fit.TZScore > b.fit.TZScore
		}
		if a.fit.CatScore != b.fit.CatScore {
			return a.fit.CatScore > b.fit.CatScore
		}
		if a.size != b.size {
			return a.size < b.size
		}
		return a.team.Name < b.team.Name
	})

	out := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Recommendation{
			TeamName: c.team.Name,
			Size:     c.size,
			Fit:      c.fit,
		})
	}
	return out
}

// Recommendation is one ranked entry from RecommendTeams.
type Recommendation struct {
	TeamName string      `json:"team_name"`
	Size     int         `json:"size"`
	Fit      scoring.Fit `json:"fit"`
}

func (e *Engine) observePhase(phase string, start time.Time) {
	if e.metrics != nil {
		e.metrics.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	}
}

// orderedClusters returns the timezone groups in a stable order (known
// offsets ascending, unknown last) so team output order is deterministic.
func orderedClusters(clusters map[timezone.Offset][]*models.Member) [][]*models.Member {
	keys := make([]timezone.Offset, 0, len(clusters))
	for k := range clusters {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Known != keys[j].Known {
			return keys[i].Known
		}
		return keys[i].Hours < keys[j].Hours
	})

	out := make([][]*models.Member, 0, len(keys))
	for _, k := range keys {
		out = append(out, clusters[k])
	}
	return out
}

func channelSlug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ':
			out = append(out, '-')
		}
	}
	return string(out)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
