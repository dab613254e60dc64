package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// AgentRepository resolves assignment targets.
type AgentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
}

// GroupRepository resolves routing targets.
type GroupRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Group, error)
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository builds repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	const query = `SELECT id, name, email FROM agents WHERE id=$1`
	var agent domain.Agent
	if err := r.pool.QueryRow(ctx, query, id).Scan(&agent.ID, &agent.Name, &agent.Email); err != nil {
		return nil, err
	}
	return &agent, nil
}

type groupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository builds repository.
func NewGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &groupRepository{pool: pool}
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	const query = `SELECT id, name FROM groups WHERE id=$1`
	var group domain.Group
	if err := r.pool.QueryRow(ctx, query, id).Scan(&group.ID, &group.Name); err != nil {
		return nil, err
	}
	return &group, nil
}
