package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cohort/internal/platform/config"
	"cohort/internal/team/models"
)

const sampleIntro = "I am a backend engineer who wants to ship a machine learning side project this year."

type ExtractionSuite struct {
	suite.Suite
	ctx context.Context
}

func TestExtractionSuite(t *testing.T) {
	suite.Run(t, new(ExtractionSuite))
}

func (s *ExtractionSuite) SetupSuite() {
	s.ctx = context.Background()
}

func (s *ExtractionSuite) TestStripFences() {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"timezone":"EST"}`, `{"timezone":"EST"}`},
		{"plain fence", "```\n{\"timezone\":\"EST\"}\n```", `{"timezone":"EST"}`},
		{"json fence", "```json\n{\"timezone\":\"EST\"}\n```", `{"timezone":"EST"}`},
		{"fence on same line", "```{\"timezone\":\"EST\"}```", `{"timezone":"EST"}`},
		{"surrounding whitespace", "  ```json\n{}\n```  ", "{}"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, StripFences(tc.in))
		})
	}
}

func (s *ExtractionSuite) TestRegistryFor() {
	registry := NewRegistry()

	s.Run("ollama models use the generate provider", func() {
		s.IsType(GenerateProvider{}, registry.For("ollama/llama3"))
	})

	s.Run("unknown models fall back to chat", func() {
		s.IsType(ChatProvider{}, registry.For("gpt-4o-mini"))
	})

	s.Run("longest prefix wins", func() {
		type markerProvider struct{ ChatProvider }
		registry.Register("ollama/special", markerProvider{})
		s.IsType(markerProvider{}, registry.For("ollama/special-v2"))
		s.IsType(GenerateProvider{}, registry.For("ollama/llama3"))
	})
}

func (s *ExtractionSuite) TestBuildPrompt() {
	prompt := BuildPrompt(sampleIntro)
	s.Contains(prompt, sampleIntro)
	s.Contains(prompt, "technology_and_computing")
	s.Contains(prompt, "EST")
	s.Contains(prompt, `"timezone"`)
}

func (s *ExtractionSuite) newExtractor(url string) *HTTPExtractor {
	return NewHTTP(config.ExtractionConfig{
		URL:     url,
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	})
}

func chatReply(content string) []byte {
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	body, _ := json.Marshal(reply)
	return body
}

func (s *ExtractionSuite) TestExtract() {
	s.Run("short text is rejected without a call", func() {
		extractor := s.newExtractor("http://unreachable.invalid")
		_, err := extractor.Extract(s.ctx, "hi there")
		s.ErrorIs(err, ErrTextTooShort)
	})

	s.Run("happy path parses fenced JSON", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.Equal("/v1/chat/completions", r.URL.Path)
			w.Write(chatReply("```json\n" +
				`{"timezone":"EST","goals":["ship a project"],"category":{"technology_and_computing":["emerging_tech_and_ai"]}}` +
				"\n```"))
		}))
		defer server.Close()

		profile, err := s.newExtractor(server.URL).Extract(s.ctx, sampleIntro)
		s.Require().NoError(err)
		s.Equal("EST", profile.Timezone)
		s.Equal([]string{"ship a project"}, profile.Goals)
		s.True(profile.HasStructuredCategories())
	})

	s.Run("server error is retried", func() {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write(chatReply(`{"timezone":"JST"}`))
		}))
		defer server.Close()

		profile, err := s.newExtractor(server.URL).Extract(s.ctx, sampleIntro)
		s.Require().NoError(err)
		s.Equal("JST", profile.Timezone)
		s.Equal(int32(2), calls.Load())
	})

	s.Run("client error is not retried", func() {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := s.newExtractor(server.URL).Extract(s.ctx, sampleIntro)
		s.Require().Error(err)
		s.Equal(int32(1), calls.Load())
	})

	s.Run("malformed model output eventually fails", func() {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Write(chatReply("not json at all"))
		}))
		defer server.Close()

		_, err := s.newExtractor(server.URL).Extract(s.ctx, sampleIntro)
		s.Require().Error(err)
		s.Equal(int32(1+maxExtractionRetries), calls.Load())
	})
}

func (s *ExtractionSuite) TestNormalizeProfile() {
	s.Run("trims dedupes and preserves order", func() {
		got := normalizeProfile(models.ProfileData{
			Timezone: " EST ",
			Goals:    []string{"  ship an mvp ", "learn go", "ship an mvp", "", "  "},
			Habits:   []string{"daily journal"},
		})
		s.Equal("EST", got.Timezone)
		s.Equal([]string{"ship an mvp", "learn go"}, got.Goals)
		s.Equal([]string{"daily journal"}, got.Habits)
	})

	s.Run("lowercases category taxonomy", func() {
		got := normalizeProfile(models.ProfileData{
			Category: map[string][]string{
				" Tech ": {"AI", "ai ", "Web Dev"},
				"":       {"orphaned"},
				"Health": {"", "  "},
			},
		})
		s.Equal(map[string][]string{"tech": {"ai", "web dev"}}, got.Category)
	})

	s.Run("empty input stays empty", func() {
		got := normalizeProfile(models.ProfileData{})
		s.Empty(got.Goals)
		s.Empty(got.Habits)
		s.Empty(got.Category)
	})
}
