package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

const agentsTable = "agents"

// AgentAdapter implements the AgentRepository interface
type AgentAdapter struct {
	baseAdapter
}

// NewAgentAdapter creates a new agent adapter
func NewAgentAdapter(client *postgres.Client) repositories.AgentRepository {
	return &AgentAdapter{baseAdapter: newBaseAdapter(client)}
}

func agentColumns() []interface{} {
	return []interface{}{
		"id", "user_id", "company_name", "contact_person", "phone",
		goqu.COALESCE(goqu.I("address"), "").As("address"),
		goqu.COALESCE(goqu.I("registration_number"), "").As("registration_number"),
		"is_verified", "is_active", "created_at", "updated_at",
	}
}

// Create creates a new agent profile
func (a *AgentAdapter) Create(ctx context.Context, agent *entities.Agent) error {
	record := goqu.Record{
		"id":                  agent.ID,
		"user_id":             agent.UserID,
		"company_name":        agent.CompanyName,
		"contact_person":      agent.ContactPerson,
		"phone":               agent.Phone,
		"address":             nullIfEmpty(agent.Address),
		"registration_number": nullIfEmpty(agent.RegistrationNumber),
		"is_verified":         agent.IsVerified,
		"is_active":           agent.IsActive,
		"created_at":          agent.CreatedAt,
		"updated_at":          agent.UpdatedAt,
	}

	_, err := a.exec(ctx, a.db.Insert(agentsTable).Rows(record), "create agent")
	return err
}

// GetByID retrieves an agent by ID
func (a *AgentAdapter) GetByID(ctx context.Context, id string) (*entities.Agent, error) {
	return a.getOne(ctx, goqu.Ex{"id": id}, fmt.Sprintf("agent with id %s not found", id))
}

// GetByUserID retrieves the agent profile owned by a user
func (a *AgentAdapter) GetByUserID(ctx context.Context, userID string) (*entities.Agent, error) {
	return a.getOne(ctx, goqu.Ex{"user_id": userID}, "agent profile not found")
}

func (a *AgentAdapter) getOne(ctx context.Context, where goqu.Ex, notFound string) (*entities.Agent, error) {
	ds := a.db.Select(agentColumns()...).From(agentsTable).Where(where).Limit(1)

	var found []*entities.Agent
	if err := a.selectAll(ctx, &found, ds); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	return found[0], nil
}

// Update updates an agent profile
func (a *AgentAdapter) Update(ctx context.Context, agent *entities.Agent) error {
	agent.UpdatedAt = time.Now().UTC()

	rowsAffected, err := a.exec(ctx, a.db.Update(agentsTable).Set(goqu.Record{
		"company_name":        agent.CompanyName,
		"contact_person":      agent.ContactPerson,
		"phone":               agent.Phone,
		"address":             nullIfEmpty(agent.Address),
		"registration_number": nullIfEmpty(agent.RegistrationNumber),
		"is_verified":         agent.IsVerified,
		"is_active":           agent.IsActive,
		"updated_at":          agent.UpdatedAt,
	}).Where(goqu.Ex{"id": agent.ID}), "update agent")
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("agent with id %s not found", agent.ID))
	}
	return nil
}

// List returns one page of agents
func (a *AgentAdapter) List(ctx context.Context, filter repositories.AgentFilter) ([]*entities.Agent, int, error) {
	ds := a.db.Select(agentColumns()...).From(agentsTable)

	if filter.Search != "" {
		ds = ds.Where(ilike(filter.Search, "company_name", "contact_person"))
	}
	if filter.Verified != nil {
		ds = ds.Where(goqu.Ex{"is_verified": *filter.Verified})
	}

	total, err := a.count(ctx, ds)
	if err != nil {
		return nil, 0, err
	}

	agents := make([]*entities.Agent, 0)
	if err := a.selectAll(ctx, &agents, paginate(ds, filter.Page)); err != nil {
		return nil, 0, err
	}
	return agents, total, nil
}
