// Package scoring combines category overlap, timezone closeness, and
// embedding similarity into fit scores between members, leaders, and teams.
package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"cohort/internal/platform/config"
	"cohort/internal/similarity"
	"cohort/internal/team/category"
	"cohort/internal/team/models"
	"cohort/internal/team/timezone"
)

// CategorySet is a set of "domain:subdomain" categories.
type CategorySet map[category.Category]struct{}

// Contains reports set membership.
func (s CategorySet) Contains(c category.Category) bool {
	_, ok := s[c]
	return ok
}

// Fit is a member's compatibility with a team's leadership.
type Fit struct {
	TZScore  float64 `json:"tz_score"`
	CatScore float64 `json:"cat_score"`
}

// ScoreCache persists computed pair scores across runs. Implementations must
// treat misses as (0, false, nil).
type ScoreCache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, score float64, ttl time.Duration) error
}

const scoreCacheTTL = 24 * time.Hour

// Engine provides the compatibility primitives used by team formation.
type Engine struct {
	comparer similarity.Comparer
	matcher  *category.Matcher
	cfg      config.FormationConfig
	logger   *slog.Logger
	cache    ScoreCache
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithScoreCache enables pair score caching.
func WithScoreCache(cache ScoreCache) Option {
	return func(e *Engine) { e.cache = cache }
}

// NewEngine builds a scoring engine around the similarity capability.
func NewEngine(comparer similarity.Comparer, matcher *category.Matcher, cfg config.FormationConfig, opts ...Option) *Engine {
	e := &Engine{
		comparer: comparer,
		matcher:  matcher,
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MemberCategories derives a member's category set. Structured extraction
// output is preferred; otherwise the keyword matcher scans each goal and
// habit and collects the top two categories per item, so every profile yields
// some category signal. The two paths are never blended.
func (e *Engine) MemberCategories(p models.ProfileData) CategorySet {
	set := make(CategorySet)

	if p.HasStructuredCategories() {
		for domain, subs := range p.Category {
			for _, sub := range subs {
				set[category.Category(domain+":"+sub)] = struct{}{}
			}
		}
		return set
	}

	for _, item := range append(append([]string{}, p.Goals...), p.Habits...) {
		for _, scored := range e.matcher.TopCategories(item, 2) {
			set[scored.Category] = struct{}{}
		}
	}
	return set
}

// CategoricalScore blends sub-category overlap (60%) with domain-level
// overlap (40%). Both use min-cardinality denominators so full containment of
// the smaller set scores as a complete match. Empty sets score 0.
func (e *Engine) CategoricalScore(a, b CategorySet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	shared := 0
	for c := range a {
		if b.Contains(c) {
			shared++
		}
	}
	subScore := float64(shared) / float64(minInt(len(a), len(b)))

	domainsA, domainsB := domainsOf(a), domainsOf(b)
	sharedDomains := 0
	for d := range domainsA {
		if _, ok := domainsB[d]; ok {
			sharedDomains++
		}
	}
	domScore := float64(sharedDomains) / float64(minInt(len(domainsA), len(domainsB)))

	return 0.6*subScore + 0.4*domScore
}

// applyBonuses turns a similarity matrix into a single score: the mean plus a
// flat bonus per near-perfect cell and a capped increment per mid-band cell,
// clamped to 1. A single near-identical goal between two people is a strong
// signal disproportionate to its contribution to a plain average.
func (e *Engine) applyBonuses(m similarity.Matrix) float64 {
	if len(m) == 0 || len(m[0]) == 0 {
		return 0.0
	}

	score := m.Mean()

	perfect := m.Count(func(v float64) bool { return v >= e.cfg.PerfectMatchThreshold })
	score += float64(perfect) * e.cfg.PerfectMatchBonus

	mid := m.Count(func(v float64) bool {
		return v >= e.cfg.MidMatchThresholdLow && v < e.cfg.MidMatchThresholdHigh
	})
	midBonus := float64(mid) * e.cfg.MidMatchIncrement
	if midBonus > e.cfg.MidMatchCap {
		midBonus = e.cfg.MidMatchCap
	}
	score += midBonus

	if score > 1.0 {
		return 1.0
	}
	return score
}

// SemanticCompatibility scores two profiles by the embedding similarity of
// their goal and habit lists, averaged with equal weight over whichever are
// present on both sides. Profiles with nothing to compare score 0.
func (e *Engine) SemanticCompatibility(ctx context.Context, a, b models.ProfileData) (float64, error) {
	if cached, ok := e.cachedScore(ctx, a, b); ok {
		return cached, nil
	}

	var scores []float64

	if len(a.Goals) > 0 && len(b.Goals) > 0 {
		matrix, err := e.comparer.Compare(ctx, a.Goals, b.Goals)
		if err != nil {
			return 0, err
		}
		scores = append(scores, e.applyBonuses(matrix))
	}

	if len(a.Habits) > 0 && len(b.Habits) > 0 {
		matrix, err := e.comparer.Compare(ctx, a.Habits, b.Habits)
		if err != nil {
			return 0, err
		}
		scores = append(scores, e.applyBonuses(matrix))
	}

	if len(scores) == 0 {
		return 0.0, nil
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}
	score := total / float64(len(scores))

	e.storeScore(ctx, a, b, score)
	return score, nil
}

// MemberTeamFit averages timezone and category compatibility between a member
// and every leader in the list. No leaders yields zero scores.
func (e *Engine) MemberTeamFit(member models.ProfileData, leaders []*models.Member) Fit {
	if len(leaders) == 0 {
		return Fit{}
	}

	memberOffset := timezone.ParseUTCOffset(member.Timezone)
	memberCats := e.MemberCategories(member)

	var tzTotal, catTotal float64
	for _, leader := range leaders {
		leaderOffset := timezone.ParseUTCOffset(leader.ProfileData.Timezone)
		tzTotal += timezone.Compatibility(memberOffset, leaderOffset)
		catTotal += e.CategoricalScore(memberCats, e.MemberCategories(leader.ProfileData))
	}

	n := float64(len(leaders))
	return Fit{TZScore: tzTotal / n, CatScore: catTotal / n}
}

func (e *Engine) cachedScore(ctx context.Context, a, b models.ProfileData) (float64, bool) {
	if e.cache == nil {
		return 0, false
	}
	score, ok, err := e.cache.Get(ctx, pairKey(a, b))
	if err != nil {
		e.logger.WarnContext(ctx, "score cache read failed", "error", err)
		return 0, false
	}
	return score, ok
}

func (e *Engine) storeScore(ctx context.Context, a, b models.ProfileData, score float64) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Set(ctx, pairKey(a, b), score, scoreCacheTTL); err != nil {
		e.logger.WarnContext(ctx, "score cache write failed", "error", err)
	}
}

// pairKey content-addresses an unordered profile pair, so A-vs-B and B-vs-A
// share a cache entry.
func pairKey(a, b models.ProfileData) string {
	da, db := profileDigest(a), profileDigest(b)
	if db < da {
		da, db = db, da
	}
	return da + ":" + db
}

func profileDigest(p models.ProfileData) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(p.Goals, "\x1f")))
	h.Write([]byte{0x1e})
	h.Write([]byte(strings.Join(p.Habits, "\x1f")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func domainsOf(set CategorySet) map[string]struct{} {
	domains := make(map[string]struct{}, len(set))
	for c := range set {
		domains[c.Domain()] = struct{}{}
	}
	return domains
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
