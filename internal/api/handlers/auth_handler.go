package handlers

import (
	"context"
	"net/http"

	"github.com/corpcare/agentbooking/internal/application/services"
	"github.com/corpcare/agentbooking/internal/domain/entities"
)

// AuthService defines the authentication operations used by the handler
type AuthService interface {
	Register(ctx context.Context, input services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, input services.LoginInput) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (*entities.User, *entities.Agent, error)
}

// AuthHandler handles registration, login and token rotation
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type profileResponse struct {
	User  *entities.User  `json:"user"`
	Agent *entities.Agent `json:"agent,omitempty"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.service.Register(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, "registration successful", result)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "login successful", result)
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", result)
}

// Logout handles POST /api/auth/logout. Unknown tokens are not an error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "logged out", nil)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	user, agent, err := h.service.Me(r.Context(), claims.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", profileResponse{User: user, Agent: agent})
}
