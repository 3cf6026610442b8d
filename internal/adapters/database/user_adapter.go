package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

const (
	usersTable         = "users"
	refreshTokensTable = "refresh_tokens"
)

var userColumns = []interface{}{
	"id", "email", "password_hash", "role", "is_active", "last_login_at", "created_at", "updated_at",
}

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	baseAdapter
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{baseAdapter: newBaseAdapter(client)}
}

// Create creates a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	record := goqu.Record{
		"id":            user.ID,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          user.Role,
		"is_active":     user.IsActive,
		"last_login_at": nullableTime(user.LastLoginAt),
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}

	_, err := a.exec(ctx, a.db.Insert(usersTable).Rows(record), "create user")
	return err
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"id": id}, fmt.Sprintf("user with id %s not found", id))
}

// GetByEmail retrieves a user by email
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return a.getOne(ctx, goqu.Ex{"email": email}, "user not found")
}

func (a *UserAdapter) getOne(ctx context.Context, where goqu.Ex, notFound string) (*entities.User, error) {
	ds := a.db.Select(userColumns...).From(usersTable).Where(where).Limit(1)

	var found []*entities.User
	if err := a.selectAll(ctx, &found, ds); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	return found[0], nil
}

// Update updates a user
func (a *UserAdapter) Update(ctx context.Context, user *entities.User) error {
	user.UpdatedAt = time.Now().UTC()

	rowsAffected, err := a.exec(ctx, a.db.Update(usersTable).Set(goqu.Record{
		"email":         strings.ToLower(user.Email),
		"password_hash": user.PasswordHash,
		"role":          user.Role,
		"is_active":     user.IsActive,
		"last_login_at": nullableTime(user.LastLoginAt),
		"updated_at":    user.UpdatedAt,
	}).Where(goqu.Ex{"id": user.ID}), "update user")
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", user.ID))
	}
	return nil
}

// RefreshTokenAdapter implements the RefreshTokenRepository interface
type RefreshTokenAdapter struct {
	baseAdapter
}

// NewRefreshTokenAdapter creates a new refresh token adapter
func NewRefreshTokenAdapter(client *postgres.Client) repositories.RefreshTokenRepository {
	return &RefreshTokenAdapter{baseAdapter: newBaseAdapter(client)}
}

// Create stores a hashed refresh token
func (a *RefreshTokenAdapter) Create(ctx context.Context, token *entities.RefreshToken) error {
	_, err := a.exec(ctx, a.db.Insert(refreshTokensTable).Rows(goqu.Record{
		"id":         token.ID,
		"user_id":    token.UserID,
		"token_hash": token.TokenHash,
		"expires_at": token.ExpiresAt,
		"created_at": token.CreatedAt,
	}), "store refresh token")
	return err
}

// GetByHash retrieves a refresh token by the hash of its value
func (a *RefreshTokenAdapter) GetByHash(ctx context.Context, tokenHash string) (*entities.RefreshToken, error) {
	ds := a.db.Select("id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at").
		From(refreshTokensTable).
		Where(goqu.Ex{"token_hash": tokenHash}).
		Limit(1)

	var found []*entities.RefreshToken
	if err := a.selectAll(ctx, &found, ds); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperrors.NewNotFoundError("refresh token not found")
	}
	return found[0], nil
}

// Revoke marks a refresh token as revoked. Revoking twice is a no-op.
func (a *RefreshTokenAdapter) Revoke(ctx context.Context, id string, at time.Time) error {
	_, err := a.exec(ctx, a.db.Update(refreshTokensTable).
		Set(goqu.Record{"revoked_at": at}).
		Where(goqu.Ex{"id": id}, goqu.C("revoked_at").IsNull()), "revoke refresh token")
	return err
}
