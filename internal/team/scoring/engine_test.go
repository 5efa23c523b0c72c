package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cohort/internal/platform/config"
	"cohort/internal/similarity"
	"cohort/internal/similarity/mocks"
	"cohort/internal/team/category"
	"cohort/internal/team/models"
)

type EngineSuite struct {
	suite.Suite
	matcher *category.Matcher
	ctx     context.Context
}

func (s *EngineSuite) SetupSuite() {
	s.matcher = category.NewMatcher()
	s.ctx = context.Background()
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) newEngine(comparer similarity.Comparer, opts ...Option) *Engine {
	return NewEngine(comparer, s.matcher, config.DefaultFormation(), opts...)
}

// constantComparer returns a matrix filled with a fixed value.
func constantComparer(v float64) similarity.Comparer {
	return similarity.ComparerFunc(func(_ context.Context, a, b []string) (similarity.Matrix, error) {
		m := similarity.Zeros(len(a), len(b))
		for i := range m {
			for j := range m[i] {
				m[i][j] = v
			}
		}
		return m, nil
	})
}

func catSet(cats ...string) CategorySet {
	set := make(CategorySet)
	for _, c := range cats {
		set[category.Category(c)] = struct{}{}
	}
	return set
}

func (s *EngineSuite) TestMemberCategories() {
	engine := s.newEngine(constantComparer(0))

	s.Run("prefers structured categories", func() {
		p := models.ProfileData{
			Goals: []string{"win a coding competition"},
			Category: map[string][]string{
				"business_and_finance": {"business_strategy"},
			},
		}
		cats := engine.MemberCategories(p)
		s.True(cats.Contains("business_and_finance:business_strategy"))
		// The fallback path must not run when structured data exists.
		s.False(cats.Contains("technology_and_computing:software_and_web_dev"))
	})

	s.Run("falls back to keyword matching", func() {
		p := models.ProfileData{
			Goals:  []string{"win a coding competition"},
			Habits: []string{"gym every morning"},
		}
		cats := engine.MemberCategories(p)
		s.True(cats.Contains("technology_and_computing:software_and_web_dev"))
		s.True(cats.Contains("health_and_fitness:physical_health"))
	})

	s.Run("empty category map triggers fallback", func() {
		p := models.ProfileData{
			Goals:    []string{"learn spanish"},
			Category: map[string][]string{"education_and_learning": {}},
		}
		cats := engine.MemberCategories(p)
		s.True(cats.Contains("education_and_learning:language_and_communication"))
	})

	s.Run("no signal yields empty set", func() {
		s.Empty(engine.MemberCategories(models.ProfileData{}))
	})
}

func (s *EngineSuite) TestCategoricalScore() {
	engine := s.newEngine(constantComparer(0))

	s.Run("empty sets score zero", func() {
		s.Zero(engine.CategoricalScore(catSet(), catSet("a:b")))
		s.Zero(engine.CategoricalScore(catSet("a:b"), catSet()))
	})

	s.Run("identical sets score one", func() {
		set := catSet("tech:ai", "tech:web")
		s.InDelta(1.0, engine.CategoricalScore(set, set), 1e-9)
	})

	s.Run("containment of smaller set scores one", func() {
		small := catSet("tech:ai")
		large := catSet("tech:ai", "tech:web", "tech:infra")
		s.InDelta(1.0, engine.CategoricalScore(small, large), 1e-9)
	})

	s.Run("shared domain only scores the domain weight", func() {
		a := catSet("tech:ai")
		b := catSet("tech:web")
		// No shared sub-categories, full domain overlap: 0.6*0 + 0.4*1.
		s.InDelta(0.4, engine.CategoricalScore(a, b), 1e-9)
	})

	s.Run("disjoint sets score zero", func() {
		s.Zero(engine.CategoricalScore(catSet("tech:ai"), catSet("health:gym")))
	})
}

func (s *EngineSuite) TestApplyBonuses() {
	engine := s.newEngine(constantComparer(0))

	s.Run("empty matrix scores zero", func() {
		s.Zero(engine.applyBonuses(similarity.Matrix{}))
	})

	s.Run("plain mean with no bonuses", func() {
		m := similarity.Matrix{{0.2, 0.2}}
		s.InDelta(0.2, engine.applyBonuses(m), 1e-9)
	})

	s.Run("perfect match bonus", func() {
		m := similarity.Matrix{{0.96, 0.0}}
		// mean 0.48 + one perfect bonus 0.25.
		s.InDelta(0.73, engine.applyBonuses(m), 1e-9)
	})

	s.Run("mid band bonus is capped", func() {
		row := make([]float64, 10)
		for i := range row {
			row[i] = 0.5
		}
		m := similarity.Matrix{row}
		// mean 0.5 + min(0.05, 10*0.01) = 0.55.
		s.InDelta(0.55, engine.applyBonuses(m), 1e-9)
	})

	s.Run("clamped to one", func() {
		m := similarity.Matrix{{0.99, 0.99, 0.99, 0.99}}
		s.InDelta(1.0, engine.applyBonuses(m), 1e-9)
	})
}

func (s *EngineSuite) TestSemanticCompatibility() {
	goalsOnly := models.ProfileData{Goals: []string{"ship a side project"}}
	full := models.ProfileData{
		Goals:  []string{"ship a side project"},
		Habits: []string{"daily standup journal"},
	}

	s.Run("nothing to compare scores zero", func() {
		engine := s.newEngine(constantComparer(0.9))
		score, err := engine.SemanticCompatibility(s.ctx, models.ProfileData{}, full)
		s.Require().NoError(err)
		s.Zero(score)
	})

	s.Run("goals only", func() {
		engine := s.newEngine(constantComparer(0.3))
		score, err := engine.SemanticCompatibility(s.ctx, goalsOnly, full)
		s.Require().NoError(err)
		s.InDelta(0.3, score, 1e-9)
	})

	s.Run("goals and habits averaged", func() {
		calls := 0
		comparer := similarity.ComparerFunc(func(_ context.Context, a, b []string) (similarity.Matrix, error) {
			calls++
			v := 0.2
			if calls == 2 {
				v = 0.8
			}
			return similarity.Matrix{{v}}, nil
		})
		engine := s.newEngine(comparer)
		score, err := engine.SemanticCompatibility(s.ctx, full, full)
		s.Require().NoError(err)
		s.Equal(2, calls)
		// 0.8 falls in no bonus band; (0.2 + 0.8)/2.
		s.InDelta(0.5, score, 1e-9)
	})

	s.Run("comparer error propagates", func() {
		boom := errors.New("capability down")
		engine := s.newEngine(similarity.ComparerFunc(func(_ context.Context, a, b []string) (similarity.Matrix, error) {
			return nil, boom
		}))
		_, err := engine.SemanticCompatibility(s.ctx, full, full)
		s.Require().ErrorIs(err, boom)
	})

	s.Run("zero matrix degradation scores zero not error", func() {
		engine := s.newEngine(constantComparer(0))
		score, err := engine.SemanticCompatibility(s.ctx, goalsOnly, full)
		s.Require().NoError(err)
		s.Zero(score)
	})
}

type recordingCache struct {
	scores map[string]float64
	gets   int
	sets   int
}

func (c *recordingCache) Get(_ context.Context, key string) (float64, bool, error) {
	c.gets++
	v, ok := c.scores[key]
	return v, ok, nil
}

func (c *recordingCache) Set(_ context.Context, key string, score float64, _ time.Duration) error {
	c.sets++
	c.scores[key] = score
	return nil
}

func (s *EngineSuite) TestScoreCache() {
	full := models.ProfileData{Goals: []string{"goal"}, Habits: []string{"habit"}}
	other := models.ProfileData{Goals: []string{"different"}, Habits: []string{"things"}}

	cache := &recordingCache{scores: make(map[string]float64)}
	comparerCalls := 0
	comparer := similarity.ComparerFunc(func(_ context.Context, a, b []string) (similarity.Matrix, error) {
		comparerCalls++
		return similarity.Matrix{{0.3}}, nil
	})
	engine := s.newEngine(comparer, WithScoreCache(cache))

	first, err := engine.SemanticCompatibility(s.ctx, full, other)
	s.Require().NoError(err)
	s.Equal(2, comparerCalls)
	s.Equal(1, cache.sets)

	second, err := engine.SemanticCompatibility(s.ctx, full, other)
	s.Require().NoError(err)
	s.Equal(2, comparerCalls, "cache hit must skip the comparer")
	s.InDelta(first, second, 1e-9)

	// Pair key is symmetric.
	third, err := engine.SemanticCompatibility(s.ctx, other, full)
	s.Require().NoError(err)
	s.Equal(2, comparerCalls)
	s.InDelta(first, third, 1e-9)
}

func (s *EngineSuite) TestMemberTeamFit() {
	engine := s.newEngine(constantComparer(0))

	leader := func(tz string, cats map[string][]string) *models.Member {
		return &models.Member{
			UserID:    "leader-" + tz,
			RoleTitle: models.RoleLeader,
			ProfileData: models.ProfileData{
				Timezone: tz,
				Category: cats,
			},
		}
	}

	s.Run("no leaders yields zero fit", func() {
		fit := engine.MemberTeamFit(models.ProfileData{Timezone: "EST"}, nil)
		s.Zero(fit.TZScore)
		s.Zero(fit.CatScore)
	})

	s.Run("perfect alignment", func() {
		member := models.ProfileData{
			Timezone: "EST",
			Category: map[string][]string{"technology_and_computing": {"emerging_tech_and_ai"}},
		}
		leaders := []*models.Member{
			leader("EST", map[string][]string{"technology_and_computing": {"emerging_tech_and_ai"}}),
		}
		fit := engine.MemberTeamFit(member, leaders)
		s.InDelta(1.0, fit.TZScore, 1e-9)
		s.InDelta(1.0, fit.CatScore, 1e-9)
	})

	s.Run("averages across leaders", func() {
		member := models.ProfileData{Timezone: "UTC"}
		leaders := []*models.Member{
			leader("UTC", nil),   // tz score 1.0
			leader("UTC+9", nil), // tz score 0.0
		}
		fit := engine.MemberTeamFit(member, leaders)
		s.InDelta(0.5, fit.TZScore, 1e-9)
	})

	s.Run("unknown timezone scores zero", func() {
		fit := engine.MemberTeamFit(models.ProfileData{Timezone: "nowhere"}, []*models.Member{leader("EST", nil)})
		s.Zero(fit.TZScore)
	})
}

func (s *EngineSuite) TestComparerCallContract() {
	s.Run("compares goals and habits separately", func() {
		ctrl := gomock.NewController(s.T())
		comparer := mocks.NewMockComparer(ctrl)

		a := models.ProfileData{
			Goals:  []string{"launch an app"},
			Habits: []string{"morning review", "weekly retro"},
		}
		b := models.ProfileData{
			Goals:  []string{"learn backend dev", "find collaborators"},
			Habits: []string{"pomodoro blocks"},
		}

		comparer.EXPECT().
			Compare(s.ctx, a.Goals, b.Goals).
			Return(similarity.Matrix{{0.2, 0.2}}, nil)
		comparer.EXPECT().
			Compare(s.ctx, a.Habits, b.Habits).
			Return(similarity.Matrix{{0.3}, {0.3}}, nil)

		engine := s.newEngine(comparer)
		score, err := engine.SemanticCompatibility(s.ctx, a, b)
		s.Require().NoError(err)
		s.InDelta(0.25, score, 1e-9)
	})

	s.Run("skips lists one side lacks", func() {
		ctrl := gomock.NewController(s.T())
		comparer := mocks.NewMockComparer(ctrl)

		a := models.ProfileData{Goals: []string{"launch an app"}}
		b := models.ProfileData{
			Goals:  []string{"learn backend dev"},
			Habits: []string{"pomodoro blocks"},
		}

		comparer.EXPECT().
			Compare(s.ctx, a.Goals, b.Goals).
			Return(similarity.Matrix{{0.35}}, nil)

		engine := s.newEngine(comparer)
		score, err := engine.SemanticCompatibility(s.ctx, a, b)
		s.Require().NoError(err)
		s.InDelta(0.35, score, 1e-9)
	})
}
