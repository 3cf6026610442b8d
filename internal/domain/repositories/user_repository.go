package repositories

import (
	"context"
	"time"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user. A duplicate email fails with a ConflictError.
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user by lower-cased email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// Update updates a user
	Update(ctx context.Context, user *entities.User) error
}

// AgentRepository defines the interface for agent data operations
type AgentRepository interface {
	Create(ctx context.Context, agent *entities.Agent) error
	GetByID(ctx context.Context, id string) (*entities.Agent, error)
	GetByUserID(ctx context.Context, userID string) (*entities.Agent, error)
	Update(ctx context.Context, agent *entities.Agent) error
	List(ctx context.Context, filter AgentFilter) ([]*entities.Agent, int, error)
}

// AgentFilter defines filters for listing agents
type AgentFilter struct {
	// Search matches company name or contact person case-insensitively
	Search   string
	Verified *bool
	Page     pagination.Params
}

// RefreshTokenRepository stores hashed refresh tokens
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entities.RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*entities.RefreshToken, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}
