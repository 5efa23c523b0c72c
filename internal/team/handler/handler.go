package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cohort/internal/team/formation"
	"cohort/internal/team/models"
	"cohort/internal/team/service"
	dErrors "cohort/pkg/domain-errors"
	"cohort/pkg/platform/httputil"
)

// FormationAPI is the slice of FormationService the handler needs.
type FormationAPI interface {
	RunFormation(ctx context.Context, poolID string) (*formation.Result, error)
	BatchCreateTeams(ctx context.Context, poolID string, proposals []*models.Team) (*service.BatchResult, error)
	AssignMember(ctx context.Context, poolID, teamName, userID string) (*models.Team, error)
	RecommendTeams(ctx context.Context, poolID, userID string) ([]formation.Recommendation, error)
	SetEventActive(ctx context.Context, poolID string, active bool) error
}

// TeamAPI is the slice of TeamService the handler needs.
type TeamAPI interface {
	GetTeam(ctx context.Context, poolID, name string) (*models.Team, error)
	ListTeams(ctx context.Context, poolID string) ([]*models.Team, error)
	DeleteTeam(ctx context.Context, poolID, name string) error
}

// RosterAPI is the slice of RosterService the handler needs.
type RosterAPI interface {
	Register(ctx context.Context, poolID string, member models.Member, intro string) (*models.Member, error)
	ChangeRole(ctx context.Context, poolID, userID string, role models.RoleTitle) (*models.Member, error)
	Unregister(ctx context.Context, poolID, userID string) error
}

// Handler wires the pool endpoints to the team services.
type Handler struct {
	formation FormationAPI
	teams     TeamAPI
	roster    RosterAPI
	logger    *slog.Logger
}

// New constructs a handler with its dependencies.
func New(formation FormationAPI, teams TeamAPI, roster RosterAPI, logger *slog.Logger) *Handler {
	return &Handler{
		formation: formation,
		teams:     teams,
		roster:    roster,
		logger:    logger,
	}
}

// Register mounts the pool endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/pools/{poolID}", func(r chi.Router) {
		r.Post("/formation/run", h.HandleRunFormation)
		r.Get("/teams", h.HandleListTeams)
		r.Post("/teams", h.HandleBatchCreateTeams)
		r.Get("/teams/{teamName}", h.HandleGetTeam)
		r.Delete("/teams/{teamName}", h.HandleDeleteTeam)
		r.Post("/assignments", h.HandleAssignMember)
		r.Get("/recommendations/{userID}", h.HandleRecommendations)
		r.Post("/event", h.HandleSetEvent)
		r.Post("/roster", h.HandleRegister)
		r.Put("/roster/{userID}/role", h.HandleChangeRole)
		r.Delete("/roster/{userID}", h.HandleUnregister)
	})
}

// HandleRunFormation handles POST /pools/{poolID}/formation/run.
func (h *Handler) HandleRunFormation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	poolID := chi.URLParam(r, "poolID")

	result, err := h.formation.RunFormation(ctx, poolID)
	if err != nil {
		h.logger.ErrorContext(ctx, "formation run failed", "pool_id", poolID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "formation run completed",
		"pool_id", poolID,
		"teams", len(result.Teams),
		"unassigned", len(result.Unassigned))
	httputil.WriteJSON(w, http.StatusOK, result)
}

type batchCreateRequest struct {
	Teams []*models.Team `json:"teams"`
}

// HandleBatchCreateTeams handles POST /pools/{poolID}/teams.
func (h *Handler) HandleBatchCreateTeams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	poolID := chi.URLParam(r, "poolID")

	var req batchCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.formation.BatchCreateTeams(ctx, poolID, req.Teams)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusCreated
	if len(result.Failures) > 0 {
		status = http.StatusMultiStatus
		h.logger.WarnContext(ctx, "batch create finished with failures",
			"pool_id", poolID,
			"created", len(result.Created),
			"failed", len(result.Failures))
	}
	httputil.WriteJSON(w, status, result)
}

// HandleListTeams handles GET /pools/{poolID}/teams.
func (h *Handler) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.ListTeams(r.Context(), chi.URLParam(r, "poolID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

// HandleGetTeam handles GET /pools/{poolID}/teams/{teamName}.
func (h *Handler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.teams.GetTeam(r.Context(), chi.URLParam(r, "poolID"), chi.URLParam(r, "teamName"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, team)
}

// HandleDeleteTeam handles DELETE /pools/{poolID}/teams/{teamName}.
func (h *Handler) HandleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.teams.DeleteTeam(r.Context(), chi.URLParam(r, "poolID"), chi.URLParam(r, "teamName")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignRequest struct {
	TeamName string `json:"team_name"`
	UserID   string `json:"user_id"`
}

// HandleAssignMember handles POST /pools/{poolID}/assignments.
func (h *Handler) HandleAssignMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	poolID := chi.URLParam(r, "poolID")

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.TeamName == "" || req.UserID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "team_name and user_id are required"))
		return
	}

	team, err := h.formation.AssignMember(ctx, poolID, req.TeamName, req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "member assigned",
		"pool_id", poolID,
		"team", team.Name,
		"user_id", req.UserID)
	httputil.WriteJSON(w, http.StatusOK, team)
}

// HandleRecommendations handles GET /pools/{poolID}/recommendations/{userID}.
func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.formation.RecommendTeams(r.Context(), chi.URLParam(r, "poolID"), chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

type eventRequest struct {
	Active bool `json:"active"`
}

// HandleSetEvent handles POST /pools/{poolID}/event.
func (h *Handler) HandleSetEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.formation.SetEventActive(r.Context(), chi.URLParam(r, "poolID"), req.Active); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type registerRequest struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	RoleTitle    string `json:"role_title"`
	Introduction string `json:"introduction"`
}

// HandleRegister handles POST /pools/{poolID}/roster.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	poolID := chi.URLParam(r, "poolID")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	member, err := h.roster.Register(ctx, poolID, models.Member{
		UserID:      req.UserID,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		RoleTitle:   models.RoleTitle(req.RoleTitle),
	}, req.Introduction)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "member registered",
		"pool_id", poolID,
		"user_id", member.UserID,
		"role", string(member.RoleTitle))
	httputil.WriteJSON(w, http.StatusCreated, member)
}

type changeRoleRequest struct {
	RoleTitle string `json:"role_title"`
}

// HandleChangeRole handles PUT /pools/{poolID}/roster/{userID}/role.
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	member, err := h.roster.ChangeRole(r.Context(), chi.URLParam(r, "poolID"), chi.URLParam(r, "userID"),
		models.RoleTitle(req.RoleTitle))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

// HandleUnregister handles DELETE /pools/{poolID}/roster/{userID}.
func (h *Handler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	if err := h.roster.Unregister(r.Context(), chi.URLParam(r, "poolID"), chi.URLParam(r, "userID")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
