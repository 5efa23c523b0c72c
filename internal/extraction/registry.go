package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"cohort/internal/platform/config"
)

// Provider adapts one language-model API shape: it builds the HTTP request
// for a prompt and pulls the completion text out of the response body.
type Provider interface {
	NewRequest(ctx context.Context, cfg config.ExtractionConfig, prompt string) (*http.Request, error)
	ParseContent(body []byte) (string, error)
}

// Registry maps model identifiers to providers. Lookup is by registered
// prefix so one entry covers a model family.
type Registry struct {
	providers map[string]Provider
	fallback  Provider
}

// NewRegistry builds the default registry: chat-completion API for most
// models, the generate API for local models.
func NewRegistry() *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		fallback:  ChatProvider{},
	}
	r.Register("ollama", GenerateProvider{})
	return r
}

// Register binds a model-identifier prefix to a provider.
func (r *Registry) Register(prefix string, p Provider) {
	r.providers[prefix] = p
}

// For returns the provider for a model identifier, longest matching prefix
// first, falling back to the default.
func (r *Registry) For(model string) Provider {
	var best Provider
	bestLen := -1
	for prefix, p := range r.providers {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best = p
			bestLen = len(prefix)
		}
	}
	if best == nil {
		return r.fallback
	}
	return best
}

// ChatProvider speaks the OpenAI-style chat completions API.
type ChatProvider struct{}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (ChatProvider) NewRequest(ctx context.Context, cfg config.ExtractionConfig, prompt string) (*http.Request, error) {
	body, err := json.Marshal(chatRequest{
		Model:    cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	return req, nil
}

func (ChatProvider) ParseContent(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateProvider speaks the Ollama-style generate API.
type GenerateProvider struct{}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (GenerateProvider) NewRequest(ctx context.Context, cfg config.ExtractionConfig, prompt string) (*http.Request, error) {
	body, err := json.Marshal(generateRequest{
		Model:  cfg.Model,
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode generate request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (GenerateProvider) ParseContent(body []byte) (string, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if resp.Response == "" {
		return "", fmt.Errorf("generate response is empty")
	}
	return resp.Response, nil
}
