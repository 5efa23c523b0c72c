// Package timezone parses free-form timezone text into UTC offsets and scores
// pairwise closeness for team formation.
package timezone

import (
	"regexp"
	"strconv"
	"strings"
)

// Offset is a UTC offset in hours with an explicit validity flag, so unknown
// timezones are a first-class value rather than a nil pointer.
type Offset struct {
	Hours float64
	Known bool
}

// Unknown is the designated "could not parse" offset.
var Unknown = Offset{}

// Known builds a valid offset.
func Known(hours float64) Offset {
	return Offset{Hours: hours, Known: true}
}

// abbreviations is the single source of truth for supported timezone names.
var abbreviations = map[string]float64{
	"EST": -5, "EDT": -4, "CST": -6, "CDT": -5, "MST": -7, "MDT": -6,
	"PST": -8, "PDT": -7, "AKST": -9, "AKDT": -8, "HST": -10, "GMT": 0,
	"UTC": 0, "CET": 1, "CEST": 2, "EET": 2, "EEST": 3, "IST": 5.5,
	"JST": 9, "AEST": 10, "AEDT": 11,
}

var offsetPattern = regexp.MustCompile(`^(?:UTC|GMT)\s?([+-])(\d{1,2})(?::(\d{2}))?`)

// Abbreviations lists the supported timezone abbreviations, for building
// extraction prompts.
func Abbreviations() []string {
	names := make([]string, 0, len(abbreviations))
	for name := range abbreviations {
		names = append(names, name)
	}
	return names
}

// ParseUTCOffset resolves a timezone string (abbreviation or UTC/GMT offset)
// to a UTC offset. Malformed input yields Unknown, never an error.
func ParseUTCOffset(text string) Offset {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if upper == "" {
		return Unknown
	}
	if hours, ok := abbreviations[upper]; ok {
		return Known(hours)
	}

	m := offsetPattern.FindStringSubmatch(upper)
	if m == nil {
		return Unknown
	}
	hours, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Unknown
	}
	if m[3] != "" {
		minutes, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return Unknown
		}
		hours += minutes / 60.0
	}
	if m[1] == "-" {
		hours = -hours
	}
	return Known(hours)
}

// Compatibility scores how well two offsets overlap, using a linear decay
// that reaches zero at a 9 hour difference. Unknown offsets score 0.
func Compatibility(a, b Offset) float64 {
	if !a.Known || !b.Known {
		return 0.0
	}
	diff := a.Hours - b.Hours
	if diff < 0 {
		diff = -diff
	}
	score := 1.0 - diff/9.0
	if score < 0 {
		return 0.0
	}
	return score
}
