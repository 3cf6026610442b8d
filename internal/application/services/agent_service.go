package services

import (
	"context"
	"time"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// AgentSorting is the sort allow-list for agent listings
var AgentSorting = pagination.Sorting{
	Allowed: map[string]string{
		"companyName": "company_name",
		"createdAt":   "created_at",
	},
	DefaultKey: "createdAt",
	DefaultDir: pagination.SortDesc,
}

// UpdateAgentInput changes an agent profile. Nil fields are left as they are.
type UpdateAgentInput struct {
	CompanyName        *string `json:"companyName,omitempty" validate:"omitnil,min=2,max=255"`
	ContactPerson      *string `json:"contactPerson,omitempty" validate:"omitnil,min=2,max=255"`
	Phone              *string `json:"phone,omitempty" validate:"omitnil,min=7,max=20"`
	Address            *string `json:"address,omitempty" validate:"omitempty,max=500"`
	RegistrationNumber *string `json:"registrationNumber,omitempty" validate:"omitempty,max=100"`
}

func (in UpdateAgentInput) normalized() UpdateAgentInput {
	in.CompanyName = trimmed(in.CompanyName)
	in.ContactPerson = trimmed(in.ContactPerson)
	in.Phone = trimmed(in.Phone)
	in.Address = trimmed(in.Address)
	in.RegistrationNumber = trimmed(in.RegistrationNumber)
	return in
}

// AgentService manages agent profiles
type AgentService struct {
	repo  repositories.AgentRepository
	users repositories.UserRepository
	now   func() time.Time
}

// NewAgentService creates a new agent service
func NewAgentService(repo repositories.AgentRepository, users repositories.UserRepository) *AgentService {
	return &AgentService{
		repo:  repo,
		users: users,
		now:   time.Now,
	}
}

// GetProfile returns an agent with its login email
func (s *AgentService) GetProfile(ctx context.Context, agentID string) (*entities.Agent, error) {
	agent, err := s.repo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	s.attachEmail(ctx, agent)
	return agent, nil
}

func (s *AgentService) attachEmail(ctx context.Context, agent *entities.Agent) {
	user, err := s.users.GetByID(ctx, agent.UserID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("agent_id", agent.ID).Msg("Failed to load agent user")
		return
	}
	agent.Email = user.Email
}

// UpdateProfile edits the agent's own company details
func (s *AgentService) UpdateProfile(ctx context.Context, agentID string, input UpdateAgentInput) (*entities.Agent, error) {
	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	agent, err := s.repo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&agent.CompanyName, input.CompanyName)
	set(&agent.ContactPerson, input.ContactPerson)
	set(&agent.Phone, input.Phone)
	set(&agent.Address, input.Address)
	set(&agent.RegistrationNumber, input.RegistrationNumber)

	agent.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, agent); err != nil {
		return nil, err
	}
	s.attachEmail(ctx, agent)
	return agent, nil
}

// List returns one page of agents
func (s *AgentService) List(ctx context.Context, filter repositories.AgentFilter) (pagination.Page[*entities.Agent], error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*entities.Agent]{}, err
	}
	return pagination.NewPage(items, total, filter.Page), nil
}

// SetVerified marks an agent as verified or unverified
func (s *AgentService) SetVerified(ctx context.Context, agentID string, verified bool) (*entities.Agent, error) {
	return s.setFlag(ctx, agentID, func(a *entities.Agent) { a.IsVerified = verified })
}

// SetActive activates or deactivates an agent. Deactivated agents cannot sign in.
func (s *AgentService) SetActive(ctx context.Context, agentID string, active bool) (*entities.Agent, error) {
	return s.setFlag(ctx, agentID, func(a *entities.Agent) { a.IsActive = active })
}

func (s *AgentService) setFlag(ctx context.Context, agentID string, apply func(*entities.Agent)) (*entities.Agent, error) {
	agent, err := s.repo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	apply(agent)
	agent.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, agent); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("agent_id", agentID).
		Bool("verified", agent.IsVerified).
		Bool("active", agent.IsActive).
		Msg("Agent flags updated")
	return agent, nil
}
