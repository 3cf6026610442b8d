package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/infrastructure/auth"
)

// Authenticator verifies bearer tokens and attaches their claims to the request
type Authenticator struct {
	issuer providers.TokenIssuer
}

// NewAuthenticator creates an authenticator backed by issuer
func NewAuthenticator(issuer providers.TokenIssuer) *Authenticator {
	return &Authenticator{issuer: issuer}
}

// Authenticate rejects requests without a valid access token. Browsers cannot
// set headers on websocket and EventSource requests, so the token may also
// arrive in the "token" query parameter.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing access token")
			return
		}

		claims, err := a.issuer.ParseAccessToken(token)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected access token")
			writeError(w, http.StatusUnauthorized, "invalid or expired access token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// RequireRole admits only callers holding one of roles. It must run after
// Authenticate.
func RequireRole(roles ...entities.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing access token")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}

// writeError writes the same envelope the handlers use
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
