package models

import (
	"regexp"

	dErrors "cohort/pkg/domain-errors"
)

// TeamConfig bounds team shape and naming for a pool.
type TeamConfig struct {
	MaxTeamSize       int
	MaxTeamNumber     int
	MaxChannelNameLen int
	MinProfileLength  int
}

// DefaultTeamConfig mirrors the production defaults.
func DefaultTeamConfig() TeamConfig {
	return TeamConfig{
		MaxTeamSize:       12,
		MaxTeamNumber:     100,
		MaxChannelNameLen: 50,
		MinProfileLength:  20,
	}
}

var channelNameStrip = regexp.MustCompile(`[^a-z0-9\-]`)

// ValidateTeamNumber rejects numbers outside [1, MaxTeamNumber].
func (c TeamConfig) ValidateTeamNumber(n int) error {
	if n < 1 || n > c.MaxTeamNumber {
		return dErrors.Newf(dErrors.CodeBadRequest, "team number must be between 1 and %d", c.MaxTeamNumber)
	}
	return nil
}

// FormatChannelName normalizes a display name into a channel slug and
// validates its length. Spaces become hyphens, anything outside [a-z0-9-] is
// dropped.
func (c TeamConfig) FormatChannelName(name string) (string, error) {
	formatted := channelNameStrip.ReplaceAllString(toKebab(name), "")
	if len(formatted) < 3 || len(formatted) > c.MaxChannelNameLen {
		return "", dErrors.Newf(dErrors.CodeBadRequest,
			"channel name must be 3-%d alphanumeric characters or hyphens", c.MaxChannelNameLen)
	}
	return formatted, nil
}

func toKebab(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r == ' ':
			out = append(out, '-')
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
