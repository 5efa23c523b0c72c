// Package extraction turns free-form introduction text into structured
// profile data by calling a language-model provider. Extraction is
// best-effort: callers fall back to keyword matching when it fails.
package extraction

import (
	"context"
	"errors"

	"cohort/internal/team/models"
)

// Introductions shorter than this carry too little signal to extract from.
const minIntroLength = 20

// ErrTextTooShort is returned for introductions below the minimum length.
// The profile then has no structured data and scoring uses the keyword
// fallback.
var ErrTextTooShort = errors.New("introduction text too short to extract from")

// Extractor parses an introduction into structured profile data.
type Extractor interface {
	Extract(ctx context.Context, text string) (models.ProfileData, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, text string) (models.ProfileData, error)

func (f ExtractorFunc) Extract(ctx context.Context, text string) (models.ProfileData, error) {
	return f(ctx, text)
}
