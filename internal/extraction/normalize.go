package extraction

import (
	"strings"

	"cohort/internal/team/models"
)

// normalizeProfile cleans up model output before it enters the roster:
// whitespace trimmed, empties dropped, duplicates removed with order
// preserved. Category domains and sub-domains are lowercased so taxonomy
// matching is case-insensitive downstream.
func normalizeProfile(p models.ProfileData) models.ProfileData {
	p.Timezone = strings.TrimSpace(p.Timezone)
	p.Goals = dedupeTrim(p.Goals, false)
	p.Habits = dedupeTrim(p.Habits, false)

	if len(p.Category) > 0 {
		cleaned := make(map[string][]string, len(p.Category))
		for domain, subs := range p.Category {
			domain = strings.ToLower(strings.TrimSpace(domain))
			if domain == "" {
				continue
			}
			cleaned[domain] = append(cleaned[domain], dedupeTrim(subs, true)...)
		}
		for domain, subs := range cleaned {
			cleaned[domain] = dedupeTrim(subs, true)
			if len(cleaned[domain]) == 0 {
				delete(cleaned, domain)
			}
		}
		p.Category = cleaned
	}
	return p
}

// dedupeTrim removes duplicates and empty strings, trimming whitespace and
// optionally lowercasing each element. Order is preserved.
func dedupeTrim(values []string, lower bool) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
