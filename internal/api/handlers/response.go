package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/infrastructure/auth"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

const maxBodyBytes = 1 << 20

// envelope is the shape of every JSON response
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithData(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	respondWithJSON(w, statusCode, envelope{Success: true, Message: message, Data: data})
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, envelope{Success: false, Error: message})
}

// respondWithAppError maps err onto a status code. Internal details are
// logged and replaced with a generic message.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Type == apperrors.ErrorTypeInternal || appErr.Type == apperrors.ErrorTypeExternal {
		observability.LoggerFromContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		status := http.StatusInternalServerError
		if ok {
			status = appErr.HTTPStatus()
		}
		respondWithError(w, status, "internal server error")
		return
	}
	respondWithError(w, appErr.HTTPStatus(), appErr.Message)
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.NewValidationError("request body is required")
		case errors.As(err, &tooLarge):
			return apperrors.NewValidationError("request body is too large")
		default:
			return apperrors.NewValidationError("invalid request payload")
		}
	}
	return nil
}

// requireClaims returns the caller's identity or writes 401
func requireClaims(w http.ResponseWriter, r *http.Request) (*providers.AccessClaims, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return claims, true
}

// requireAgent returns the caller's agent ID or writes 403 for callers
// without an agent profile.
func requireAgent(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return "", false
	}
	if claims.AgentID == "" {
		respondWithError(w, http.StatusForbidden, "an agent account is required")
		return "", false
	}
	return claims.AgentID, true
}

// scope returns the agent the caller is restricted to, or "" for administrators
func scope(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return "", false
	}
	return auth.ScopeAgentID(claims), true
}
