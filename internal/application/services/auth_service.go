package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

const refreshTokenBytes = 32

// RegisterInput signs up a new agent
type RegisterInput struct {
	Email              string `json:"email" validate:"required,email,max=255"`
	Password           string `json:"password" validate:"required,min=8,max=72"`
	CompanyName        string `json:"companyName" validate:"required,min=2,max=255"`
	ContactPerson      string `json:"contactPerson" validate:"required,min=2,max=255"`
	Phone              string `json:"phone" validate:"required,min=7,max=20"`
	Address            string `json:"address,omitempty" validate:"max=500"`
	RegistrationNumber string `json:"registrationNumber,omitempty" validate:"max=100"`
}

// LoginInput exchanges credentials for tokens
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// normalized trims every field and lowercases the email. Passwords are kept as sent.
func (in RegisterInput) normalized() RegisterInput {
	in.Email = normalizeEmail(in.Email)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.ContactPerson = strings.TrimSpace(in.ContactPerson)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.RegistrationNumber = strings.TrimSpace(in.RegistrationNumber)
	return in
}

// AuthResult is returned by every operation that issues tokens
type AuthResult struct {
	AccessToken      string          `json:"accessToken"`
	RefreshToken     string          `json:"refreshToken"`
	TokenType        string          `json:"tokenType"`
	ExpiresAt        time.Time       `json:"expiresAt"`
	RefreshExpiresAt time.Time       `json:"refreshExpiresAt"`
	User             *entities.User  `json:"user"`
	Agent            *entities.Agent `json:"agent,omitempty"`
}

// AuthService handles registration, login and token rotation
type AuthService struct {
	tx         repositories.Transactor
	users      repositories.UserRepository
	agents     repositories.AgentRepository
	tokens     repositories.RefreshTokenRepository
	issuer     providers.TokenIssuer
	hasher     providers.PasswordHasher
	refreshTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	tx repositories.Transactor,
	users repositories.UserRepository,
	agents repositories.AgentRepository,
	tokens repositories.RefreshTokenRepository,
	issuer providers.TokenIssuer,
	hasher providers.PasswordHasher,
	refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		tx:         tx,
		users:      users,
		agents:     agents,
		tokens:     tokens,
		issuer:     issuer,
		hasher:     hasher,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Register creates an AGENT user and its agent profile, then signs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	email := input.Email
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	now := s.now().UTC()
	user := &entities.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         entities.UserRoleAgent,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	agent := &entities.Agent{
		ID:                 uuid.New().String(),
		UserID:             user.ID,
		CompanyName:        input.CompanyName,
		ContactPerson:      input.ContactPerson,
		Phone:              input.Phone,
		Address:            input.Address,
		RegistrationNumber: input.RegistrationNumber,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
		Email:              email,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.agents.Create(ctx, agent)
	})
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("user_id", user.ID).
		Str("agent_id", agent.ID).
		Msg("Agent registered")
	return s.issueTokens(ctx, user, agent)
}

// CreateAdmin creates an ADMIN user. It is used by operator tooling.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password string) (*entities.User, error) {
	email = normalizeEmail(email)
	if err := validateInput(LoginInput{Email: email, Password: password}); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters")
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	now := s.now().UTC()
	user := &entities.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         entities.UserRoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return apperrors.NewConflictError("email is already registered")
	case apperrors.IsType(err, apperrors.ErrorTypeNotFound):
		return nil
	default:
		return err
	}
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	invalid := apperrors.NewUnauthorizedError("invalid email or password")

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, invalid
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorizedError("account is disabled")
	}

	agent, err := s.agentFor(ctx, user)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record last login")
	}

	return s.issueTokens(ctx, user, agent)
}

// Refresh exchanges a usable refresh token for a new pair and revokes it
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	invalid := apperrors.NewUnauthorizedError("invalid or expired refresh token")
	if refreshToken == "" {
		return nil, invalid
	}

	stored, err := s.tokens.GetByHash(ctx, hashToken(refreshToken))
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	now := s.now().UTC()
	if !stored.IsUsable(now) {
		return nil, invalid
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorizedError("account is disabled")
	}
	agent, err := s.agentFor(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Revoke(ctx, stored.ID, now); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user, agent)
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	stored, err := s.tokens.GetByHash(ctx, hashToken(refreshToken))
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil
		}
		return err
	}
	if stored.RevokedAt != nil {
		return nil
	}
	return s.tokens.Revoke(ctx, stored.ID, s.now().UTC())
}

// Me returns the user and, for agents, the agent profile
func (s *AuthService) Me(ctx context.Context, userID string) (*entities.User, *entities.Agent, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	agent, err := s.agentFor(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, agent, nil
}

func (s *AuthService) agentFor(ctx context.Context, user *entities.User) (*entities.Agent, error) {
	if user.Role != entities.UserRoleAgent {
		return nil, nil
	}
	agent, err := s.agents.GetByUserID(ctx, user.ID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnauthorizedError("agent profile not found")
		}
		return nil, err
	}
	if !agent.IsActive {
		return nil, apperrors.NewUnauthorizedError("agent account is deactivated")
	}
	agent.Email = user.Email
	return agent, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *entities.User, agent *entities.Agent) (*AuthResult, error) {
	claims := providers.AccessClaims{UserID: user.ID, Role: user.Role}
	if agent != nil {
		claims.AgentID = agent.ID
	}

	accessToken, expiresAt, err := s.issuer.IssueAccessToken(claims)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue access token", err)
	}

	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, apperrors.NewInternalError("failed to generate refresh token", err)
	}
	refreshToken := hex.EncodeToString(raw)

	now := s.now().UTC()
	stored := &entities.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, stored); err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		ExpiresAt:        expiresAt,
		RefreshExpiresAt: stored.ExpiresAt,
		User:             user,
		Agent:            agent,
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
