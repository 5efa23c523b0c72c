package category

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type MatcherSuite struct {
	suite.Suite
	matcher *Matcher
}

func (s *MatcherSuite) SetupSuite() {
	s.matcher = NewMatcher()
}

func TestMatcherSuite(t *testing.T) {
	suite.Run(t, new(MatcherSuite))
}

func (s *MatcherSuite) TestSpecificity() {
	s.Run("unique keyword scores 1.0", func() {
		s.InDelta(1.0, s.matcher.Specificity("kubernetes"), 1e-9)
	})

	s.Run("shared keyword scores below 1.0", func() {
		// "training" belongs to both physical_health and emerging_tech_and_ai.
		s.InDelta(0.5, s.matcher.Specificity("training"), 1e-9)
	})

	s.Run("unknown keyword scores 0", func() {
		s.Zero(s.matcher.Specificity("zebra-juggling"))
	})
}

func (s *MatcherSuite) TestScoredCategories() {
	s.Run("empty input yields empty map", func() {
		s.Empty(s.matcher.ScoredCategories(""))
		s.Empty(s.matcher.ScoredCategories("   "))
	})

	s.Run("whole word matching only", func() {
		// "training" contains the letters "ai" but must not match the "ai"
		// keyword as a substring.
		scores := s.matcher.ScoredCategories("I am focused on my training")
		s.Contains(scores, Category("health_and_fitness:physical_health"))
		s.Contains(scores, Category("technology_and_computing:emerging_tech_and_ai"))
		// Both hits come from "training" alone; the shared keyword
		// contributes its 0.5 specificity to each side, not the 1.0 an "ai"
		// match would add.
		s.InDelta(0.5, scores["technology_and_computing:emerging_tech_and_ai"], 1e-9)
	})

	s.Run("standalone ai keyword matches", func() {
		scores := s.matcher.ScoredCategories("building an ai assistant")
		s.InDelta(1.0, scores["technology_and_computing:emerging_tech_and_ai"], 1e-9)
	})

	s.Run("case insensitive", func() {
		scores := s.matcher.ScoredCategories("LEARNING Kubernetes")
		s.Contains(scores, Category("technology_and_computing:infrastructure_and_security"))
	})

	s.Run("accumulates multiple keywords per category", func() {
		one := s.matcher.ScoredCategories("gym")["health_and_fitness:physical_health"]
		two := s.matcher.ScoredCategories("gym workout")["health_and_fitness:physical_health"]
		s.Greater(two, one)
	})
}

func (s *MatcherSuite) TestTopCategories() {
	s.Run("orders by score descending", func() {
		top := s.matcher.TopCategories("I want to win a coding competition and improve my gym squat", 2)
		s.Require().Len(top, 2)
		s.GreaterOrEqual(top[0].Score, top[1].Score)
	})

	s.Run("truncates to n", func() {
		top := s.matcher.TopCategories("coding gym travel music research", 3)
		s.Len(top, 3)
	})

	s.Run("nil for no matches", func() {
		s.Nil(s.matcher.TopCategories("qwertyuiop", 2))
	})

	s.Run("tie order is deterministic", func() {
		first := s.matcher.TopCategories("training", 2)
		for i := 0; i < 10; i++ {
			s.Equal(first, s.matcher.TopCategories("training", 2))
		}
	})
}

func (s *MatcherSuite) TestCategoryDomain() {
	s.Equal("health_and_fitness", Category("health_and_fitness:physical_health").Domain())
	s.Equal("bare", Category("bare").Domain())
}
