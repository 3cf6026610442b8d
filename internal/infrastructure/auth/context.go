package auth

import (
	"context"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
)

type claimsKey struct{}

// WithClaims stores verified access claims on the request context
func WithClaims(ctx context.Context, claims *providers.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the caller's claims, if the request was authenticated
func ClaimsFromContext(ctx context.Context) (*providers.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*providers.AccessClaims)
	return claims, ok && claims != nil
}

// ScopeAgentID returns the agent an operation is restricted to. Administrators
// are unrestricted and get an empty scope.
func ScopeAgentID(claims *providers.AccessClaims) string {
	if claims == nil || claims.Role == entities.UserRoleAdmin {
		return ""
	}
	return claims.AgentID
}
