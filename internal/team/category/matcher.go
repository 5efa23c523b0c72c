// Package category maps free text onto a fixed two-level domain taxonomy
// using keyword specificity scoring.
package category

import (
	"regexp"
	"sort"
	"strings"
)

// A Category identifies a "domain:subdomain" pair from the taxonomy.
type Category string

// Domain returns the prefix before the ':' separator.
func (c Category) Domain() string {
	if i := strings.IndexByte(string(c), ':'); i >= 0 {
		return string(c)[:i]
	}
	return string(c)
}

// ScoredCategory pairs a category with its accumulated relevance score.
type ScoredCategory struct {
	Category Category
	Score    float64
}

// Matcher finds and ranks relevant categories for a given text. It is built
// once from the taxonomy and is safe for concurrent use afterward.
type Matcher struct {
	keywords    map[string][]Category // lowercased keyword -> categories
	specificity map[string]float64    // keyword -> 1/len(categories)
	patterns    map[string]*regexp.Regexp
}

// NewMatcher precomputes the keyword map and per-keyword specificity scores.
// A keyword appearing in exactly one category has specificity 1.0; keywords
// shared across many categories score low.
func NewMatcher() *Matcher {
	m := &Matcher{
		keywords:    make(map[string][]Category),
		specificity: make(map[string]float64),
		patterns:    make(map[string]*regexp.Regexp),
	}

	for domain, subs := range baseDomainKeywords {
		for sub, keywords := range subs {
			cat := Category(domain + ":" + sub)
			for _, kw := range keywords {
				lower := strings.ToLower(kw)
				m.keywords[lower] = append(m.keywords[lower], cat)
			}
		}
	}

	for kw, cats := range m.keywords {
		m.specificity[kw] = 1.0 / float64(len(cats))
		// Whole-word match only: "ai" must not hit inside "training".
		m.patterns[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return m
}

// Specificity exposes a keyword's specificity score, 0 for unknown keywords.
func (m *Matcher) Specificity(keyword string) float64 {
	return m.specificity[strings.ToLower(keyword)]
}

// ScoredCategories scans text for whole-word keyword occurrences and returns
// the accumulated per-category specificity totals. Empty input yields an
// empty map.
func (m *Matcher) ScoredCategories(text string) map[Category]float64 {
	scores := make(map[Category]float64)
	if strings.TrimSpace(text) == "" {
		return scores
	}
	lower := strings.ToLower(text)

	for kw, pattern := range m.patterns {
		if !pattern.MatchString(lower) {
			continue
		}
		spec := m.specificity[kw]
		for _, cat := range m.keywords[kw] {
			scores[cat] += spec
		}
	}
	return scores
}

// TopCategories returns the n highest scoring categories for text, sorted by
// score descending. Exact score ties are broken by category name ascending so
// the order is deterministic.
func (m *Matcher) TopCategories(text string, n int) []ScoredCategory {
	scores := m.ScoredCategories(text)
	if len(scores) == 0 {
		return nil
	}

	ranked := make([]ScoredCategory, 0, len(scores))
	for cat, score := range scores {
		ranked = append(ranked, ScoredCategory{Category: cat, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Category < ranked[j].Category
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
