package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// AutomationRepository reads operator-configured rules. The engine never
// writes rules; mutation happens through the dashboard, which is out of
// scope here.
type AutomationRepository interface {
	ListActiveByTrigger(ctx context.Context, trigger domain.AutomationTrigger) ([]domain.Automation, error)
}

type automationRepository struct {
	pool *pgxpool.Pool
}

// NewAutomationRepository builds repository.
func NewAutomationRepository(pool *pgxpool.Pool) AutomationRepository {
	return &automationRepository{pool: pool}
}

func (r *automationRepository) ListActiveByTrigger(ctx context.Context, trigger domain.AutomationTrigger) ([]domain.Automation, error) {
	const query = `
        SELECT id, name, is_active, trigger, priority, conditions, actions, created_at, updated_at
        FROM automations
        WHERE is_active = TRUE AND trigger = $1
        ORDER BY priority ASC, created_at ASC`
	rows, err := r.pool.Query(ctx, query, trigger)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Automation
	for rows.Next() {
		var (
			rule          domain.Automation
			rawConditions []byte
			rawActions    []byte
		)
		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&rule.IsActive,
			&rule.Trigger,
			&rule.Priority,
			&rawConditions,
			&rawActions,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if rule.Conditions, err = domain.DecodeConditions(rawConditions); err != nil {
			return nil, err
		}
		if rule.Actions, err = domain.DecodeActions(rawActions); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}
