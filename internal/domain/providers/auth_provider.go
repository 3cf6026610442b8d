package providers

import (
	"time"

	"github.com/corpcare/agentbooking/internal/domain/entities"
)

// AccessClaims are the identity facts carried by an access token
type AccessClaims struct {
	UserID  string
	Role    entities.UserRole
	AgentID string
}

// TokenIssuer signs and verifies access tokens
type TokenIssuer interface {
	// IssueAccessToken returns a signed token and its expiry
	IssueAccessToken(claims AccessClaims) (string, time.Time, error)

	// ParseAccessToken verifies a token and returns its claims
	ParseAccessToken(token string) (*AccessClaims, error)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
