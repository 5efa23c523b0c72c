package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"cohort/internal/platform/config"
	"cohort/internal/team/models"
)

const maxExtractionRetries = 3

// HTTPExtractor calls a language-model provider over HTTP and parses the
// JSON it returns. Transient failures are retried with exponential backoff;
// client errors from the provider are not.
type HTTPExtractor struct {
	cfg      config.ExtractionConfig
	registry *Registry
	http     *http.Client
	logger   *slog.Logger
}

// HTTPOption configures an HTTPExtractor.
type HTTPOption func(*HTTPExtractor)

// WithLogger sets the extractor's logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(e *HTTPExtractor) { e.logger = logger }
}

// WithRegistry replaces the default provider registry.
func WithRegistry(r *Registry) HTTPOption {
	return func(e *HTTPExtractor) { e.registry = r }
}

// NewHTTP constructs an HTTP-backed extractor.
func NewHTTP(cfg config.ExtractionConfig, opts ...HTTPOption) *HTTPExtractor {
	e := &HTTPExtractor{
		cfg:      cfg,
		registry: NewRegistry(),
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *HTTPExtractor) Extract(ctx context.Context, text string) (models.ProfileData, error) {
	if len(strings.TrimSpace(text)) < minIntroLength {
		return models.ProfileData{}, ErrTextTooShort
	}

	provider := e.registry.For(e.cfg.Model)
	prompt := BuildPrompt(text)

	var profile models.ProfileData
	operation := func() error {
		var err error
		profile, err = e.extractOnce(ctx, provider, prompt)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxExtractionRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		e.logger.WarnContext(ctx, "profile extraction failed",
			"model", e.cfg.Model,
			"error", err)
		return models.ProfileData{}, fmt.Errorf("extract profile: %w", err)
	}
	return profile, nil
}

func (e *HTTPExtractor) extractOnce(ctx context.Context, provider Provider, prompt string) (models.ProfileData, error) {
	req, err := provider.NewRequest(ctx, e.cfg, prompt)
	if err != nil {
		return models.ProfileData{}, backoff.Permanent(err)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return models.ProfileData{}, fmt.Errorf("call extraction provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.ProfileData{}, fmt.Errorf("read extraction response: %w", err)
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return models.ProfileData{}, backoff.Permanent(
			fmt.Errorf("extraction provider rejected request: status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return models.ProfileData{}, fmt.Errorf("extraction provider returned status %d", resp.StatusCode)
	}

	content, err := provider.ParseContent(body)
	if err != nil {
		return models.ProfileData{}, err
	}

	var profile models.ProfileData
	if err := json.Unmarshal([]byte(StripFences(content)), &profile); err != nil {
		// Model emitted malformed JSON; worth one more attempt.
		return models.ProfileData{}, fmt.Errorf("decode extracted profile: %w", err)
	}
	return normalizeProfile(profile), nil
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, from model output.
func StripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		first := strings.TrimSpace(trimmed[:idx])
		if first == "" || !strings.ContainsAny(first, "{[") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
