package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/pkg/config"
)

const tokenTypeAccess = "access"

// Claims are the JWT claims of an access token
type Claims struct {
	jwt.RegisteredClaims
	Role    entities.UserRole `json:"role"`
	AgentID string            `json:"agentId,omitempty"`
	Type    string            `json:"type"`
}

// JWTIssuer signs HS256 access tokens
type JWTIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates a token issuer from the JWT configuration
func NewJWTIssuer(cfg config.JWTConfig) *JWTIssuer {
	return &JWTIssuer{
		secret: []byte(cfg.AccessSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTTL,
		now:    time.Now,
	}
}

var _ providers.TokenIssuer = (*JWTIssuer)(nil)

// IssueAccessToken signs a token for the given identity
func (j *JWTIssuer) IssueAccessToken(identity providers.AccessClaims) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:    identity.Role,
		AgentID: identity.AgentID,
		Type:    tokenTypeAccess,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAccessToken verifies signature, issuer, expiry and token type
func (j *JWTIssuer) ParseAccessToken(tokenString string) (*providers.AccessClaims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	if claims.Type != tokenTypeAccess {
		return nil, errors.New("invalid access token: wrong token type")
	}

	return &providers.AccessClaims{
		UserID:  claims.Subject,
		Role:    claims.Role,
		AgentID: claims.AgentID,
	}, nil
}
