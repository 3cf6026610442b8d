package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/corpcare/agentbooking/internal/application/services"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// AgentService defines the agent profile operations used by the handler
type AgentService interface {
	GetProfile(ctx context.Context, agentID string) (*entities.Agent, error)
	UpdateProfile(ctx context.Context, agentID string, input services.UpdateAgentInput) (*entities.Agent, error)
	List(ctx context.Context, filter repositories.AgentFilter) (pagination.Page[*entities.Agent], error)
	SetVerified(ctx context.Context, agentID string, verified bool) (*entities.Agent, error)
	SetActive(ctx context.Context, agentID string, active bool) (*entities.Agent, error)
}

// DashboardService builds the agent dashboard
type DashboardService interface {
	AgentDashboard(ctx context.Context, agentID string) (*entities.AgentDashboard, error)
}

// AgentHandler handles agent profile, dashboard and admin agent management
type AgentHandler struct {
	service   AgentService
	dashboard DashboardService
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(service AgentService, dashboard DashboardService) *AgentHandler {
	return &AgentHandler{service: service, dashboard: dashboard}
}

type verifyRequest struct {
	IsVerified *bool `json:"isVerified"`
}

type activeRequest struct {
	IsActive *bool `json:"isActive"`
}

// GetProfile handles GET /api/agents/me
func (h *AgentHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	agent, err := h.service.GetProfile(r.Context(), agentID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", agent)
}

// UpdateProfile handles PUT /api/agents/me
func (h *AgentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	var input services.UpdateAgentInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	agent, err := h.service.UpdateProfile(r.Context(), agentID, input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "profile updated", agent)
}

// Dashboard handles GET /api/agents/me/dashboard
func (h *AgentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	dashboard, err := h.dashboard.AgentDashboard(r.Context(), agentID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", dashboard)
}

// ListAgents handles GET /api/agents
func (h *AgentHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.AgentFilter{
		Search: q.Get("search"),
		Page:   pagination.FromQuery(q, services.AgentSorting),
	}
	if raw := q.Get("verified"); raw != "" {
		if verified, err := strconv.ParseBool(raw); err == nil {
			filter.Verified = &verified
		}
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", page)
}

// VerifyAgent handles PATCH /api/agents/{id}/verify
func (h *AgentHandler) VerifyAgent(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if req.IsVerified == nil {
		respondWithError(w, http.StatusBadRequest, "isVerified is required")
		return
	}

	agent, err := h.service.SetVerified(r.Context(), r.PathValue("id"), *req.IsVerified)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "agent verification updated", agent)
}

// SetAgentStatus handles PATCH /api/agents/{id}/status
func (h *AgentHandler) SetAgentStatus(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if req.IsActive == nil {
		respondWithError(w, http.StatusBadRequest, "isActive is required")
		return
	}

	agent, err := h.service.SetActive(r.Context(), r.PathValue("id"), *req.IsActive)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "agent status updated", agent)
}
