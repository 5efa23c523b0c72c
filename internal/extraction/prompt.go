package extraction

import (
	"fmt"
	"sort"
	"strings"

	"cohort/internal/team/category"
	"cohort/internal/team/timezone"
)

// BuildPrompt assembles the extraction prompt: the model must answer with a
// single JSON object whose category values come from the fixed taxonomy and
// whose timezone is one of the known abbreviations or a UTC offset.
func BuildPrompt(text string) string {
	var b strings.Builder

	b.WriteString("Extract structured profile data from the introduction below.\n")
	b.WriteString("Respond with a single JSON object and nothing else, using this shape:\n")
	b.WriteString(`{"timezone": "", "goals": [], "habits": [], "category": {}}` + "\n\n")

	b.WriteString("timezone: one of ")
	b.WriteString(strings.Join(sortedAbbreviations(), ", "))
	b.WriteString(`, or a UTC offset like "UTC+5:30". Empty string when not stated.` + "\n")

	b.WriteString("goals: short phrases quoting what the person wants to achieve.\n")
	b.WriteString("habits: short phrases quoting how they work or practice.\n")

	b.WriteString("category: map of domain to sub-domains, only from this taxonomy:\n")
	for _, domain := range sortedDomains() {
		subs := category.SubDomains(domain)
		sort.Strings(subs)
		fmt.Fprintf(&b, "- %s: %s\n", domain, strings.Join(subs, ", "))
	}

	b.WriteString("\nIntroduction:\n")
	b.WriteString(text)
	return b.String()
}

func sortedAbbreviations() []string {
	names := timezone.Abbreviations()
	sort.Strings(names)
	return names
}

func sortedDomains() []string {
	domains := category.Domains()
	sort.Strings(domains)
	return domains
}
