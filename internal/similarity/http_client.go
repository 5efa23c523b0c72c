package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"cohort/internal/platform/config"
)

// HTTPClient talks to an embedding inference service over HTTP. The service
// loads the sentence embedding model once per process; Ready lets callers
// fail fast when the model cannot be loaded at all.
type HTTPClient struct {
	cfg    config.SimilarityConfig
	http   *http.Client
	logger *slog.Logger
}

// NewHTTPClient builds a client for the configured inference endpoint.
func NewHTTPClient(cfg config.SimilarityConfig, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type compareRequest struct {
	Model string   `json:"model"`
	A     []string `json:"a"`
	B     []string `json:"b"`
}

type compareResponse struct {
	Matrix [][]float64 `json:"matrix"`
}

// Ready verifies the inference service has a usable model handle. A failure
// here is fatal to formation runs: no meaningful cohesion scoring can happen
// without the capability.
func (c *HTTPClient) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/v1/ready", nil)
	if err != nil {
		return fmt.Errorf("build readiness request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("similarity service unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("similarity service not ready: status %d", resp.StatusCode)
	}
	return nil
}

// Compare requests the pairwise similarity matrix for a against b. Per-call
// failures degrade to an all-zero matrix per the capability contract; only
// context cancellation is surfaced as an error.
func (c *HTTPClient) Compare(ctx context.Context, a, b []string) (Matrix, error) {
	if len(a) == 0 || len(b) == 0 {
		return Zeros(len(a), len(b)), nil
	}

	body, err := json.Marshal(compareRequest{Model: c.cfg.Model, A: a, B: b})
	if err != nil {
		return nil, fmt.Errorf("marshal compare request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/v1/similarity", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build compare request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WarnContext(ctx, "similarity comparison failed, degrading to zero matrix", "error", err)
		return Zeros(len(a), len(b)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "similarity comparison failed, degrading to zero matrix",
			"status", resp.StatusCode)
		return Zeros(len(a), len(b)), nil
	}

	var out compareResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.WarnContext(ctx, "similarity response malformed, degrading to zero matrix", "error", err)
		return Zeros(len(a), len(b)), nil
	}
	if len(out.Matrix) != len(a) {
		c.logger.WarnContext(ctx, "similarity matrix has wrong shape, degrading to zero matrix",
			"rows", len(out.Matrix), "want", len(a))
		return Zeros(len(a), len(b)), nil
	}
	return Matrix(out.Matrix), nil
}
