package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"cohort/internal/extraction"
	"cohort/internal/platform/config"
	"cohort/internal/platform/middleware"
	"cohort/internal/similarity"
	"cohort/internal/team/category"
	"cohort/internal/team/formation"
	"cohort/internal/team/handler"
	"cohort/internal/team/models"
	"cohort/internal/team/scoring"
	"cohort/internal/team/service"
	"cohort/internal/team/store/eventstate"
	"cohort/internal/team/store/roster"
	teamstore "cohort/internal/team/store/team"
)

type HandlerSuite struct {
	suite.Suite
	router *chi.Mux
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	comparer := similarity.ComparerFunc(func(_ context.Context, a, b []string) (similarity.Matrix, error) {
		return similarity.Zeros(len(a), len(b)), nil
	})
	scorer := scoring.NewEngine(comparer, category.NewMatcher(), config.DefaultFormation())
	engine := formation.New(scorer, config.DefaultFormation())

	teams := teamstore.NewInMemory()
	rosterStore := roster.NewInMemory()
	events := eventstate.NewInMemory()
	cfg := models.DefaultTeamConfig()

	extractor := extraction.ExtractorFunc(func(_ context.Context, text string) (models.ProfileData, error) {
		return models.ProfileData{
			Timezone: "EST",
			Category: map[string][]string{"technology_and_computing": {"emerging_tech_and_ai"}},
		}, nil
	})

	logger := slog.New(slog.DiscardHandler)
	h := handler.New(
		service.NewFormationService(engine, rosterStore, teams, events, cfg, service.WithLogger(logger)),
		service.NewTeamService(teams, cfg, service.WithLogger(logger)),
		service.NewRosterService(rosterStore, events, extractor, service.WithLogger(logger)),
		logger,
	)

	s.router = chi.NewRouter()
	s.router.Use(middleware.ContentTypeJSON)
	h.Register(s.router)
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) openEvent(poolID string) {
	rec := s.do(http.MethodPost, "/pools/"+poolID+"/event", map[string]any{"active": true})
	s.Require().Equal(http.StatusNoContent, rec.Code)
}

func (s *HandlerSuite) register(poolID, userID, role string) {
	rec := s.do(http.MethodPost, "/pools/"+poolID+"/roster", map[string]any{
		"user_id":      userID,
		"display_name": "User " + userID,
		"role_title":   role,
		"introduction": "I build machine learning systems and want to ship a project.",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *HandlerSuite) TestFormationFlow() {
	s.openEvent("pool-1")
	s.register("pool-1", "L1", string(models.RoleLeader))
	for i := 0; i < 4; i++ {
		s.register("pool-1", fmt.Sprintf("M%d", i), string(models.RoleMember))
	}

	rec := s.do(http.MethodPost, "/pools/pool-1/formation/run", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("application/json", rec.Header().Get("Content-Type"))

	var run struct {
		Teams      []*models.Team   `json:"teams"`
		Unassigned []*models.Member `json:"unassigned"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &run))
	s.Require().Len(run.Teams, 1)
	s.Len(run.Teams[0].Members, 5)
	s.Empty(run.Unassigned)

	// Every registered member lands exactly once across teams and unassigned.
	seen := make(map[string]int)
	for _, team := range run.Teams {
		for id := range team.Members {
			seen[id]++
		}
	}
	for _, m := range run.Unassigned {
		seen[m.UserID]++
	}
	s.Len(seen, 5)
	for id, n := range seen {
		s.Equal(1, n, id)
	}

	rec = s.do(http.MethodPost, "/pools/pool-1/teams", map[string]any{"teams": run.Teams})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var batch service.BatchResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &batch))
	s.Require().Len(batch.Created, 1)
	s.Equal("Team 1", batch.Created[0].Name)

	rec = s.do(http.MethodGet, "/pools/pool-1/teams", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/pools/pool-1/teams/Team%201", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var team models.Team
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &team))
	s.Equal(1, team.Number)
}

func (s *HandlerSuite) TestRunFormationRequiresOpenEvent() {
	rec := s.do(http.MethodPost, "/pools/pool-1/formation/run", nil)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestAssignmentAndRecommendations() {
	s.openEvent("pool-1")
	s.register("pool-1", "L1", string(models.RoleLeader))
	s.register("pool-1", "M1", string(models.RoleMember))

	rec := s.do(http.MethodPost, "/pools/pool-1/teams", map[string]any{
		"teams": []map[string]any{{
			"pool_id": "pool-1",
			"name":    "Team Seed",
			"members": map[string]any{
				"L1": map[string]any{"user_id": "L1", "role_title": string(models.RoleLeader)},
			},
		}},
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	s.Run("recommendations rank the open team", func() {
		rec := s.do(http.MethodGet, "/pools/pool-1/recommendations/M1", nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp struct {
			Recommendations []formation.Recommendation `json:"recommendations"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().Len(resp.Recommendations, 1)
		s.Equal("Team 1", resp.Recommendations[0].TeamName)
	})

	s.Run("assign member", func() {
		rec := s.do(http.MethodPost, "/pools/pool-1/assignments", map[string]any{
			"team_name": "Team 1",
			"user_id":   "M1",
		})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("double assignment conflicts", func() {
		rec := s.do(http.MethodPost, "/pools/pool-1/assignments", map[string]any{
			"team_name": "Team 1",
			"user_id":   "M1",
		})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("missing fields rejected", func() {
		rec := s.do(http.MethodPost, "/pools/pool-1/assignments", map[string]any{})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestRosterEndpoints() {
	s.openEvent("pool-1")
	s.register("pool-1", "u1", string(models.RoleMember))

	s.Run("change role", func() {
		rec := s.do(http.MethodPut, "/pools/pool-1/roster/u1/role", map[string]any{
			"role_title": string(models.RoleLeader),
		})
		s.Require().Equal(http.StatusOK, rec.Code)

		var member models.Member
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &member))
		s.True(member.IsLeader())
	})

	s.Run("register while closed conflicts", func() {
		rec := s.do(http.MethodPost, "/pools/pool-2/roster", map[string]any{
			"user_id":    "u9",
			"role_title": string(models.RoleMember),
		})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("unregister", func() {
		rec := s.do(http.MethodDelete, "/pools/pool-1/roster/u1", nil)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodDelete, "/pools/pool-1/roster/u1", nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestNotFoundMappings() {
	rec := s.do(http.MethodGet, "/pools/pool-1/teams/Nope", nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/pools/pool-1/teams/Nope", nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/pools/pool-1/recommendations/ghost", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}
