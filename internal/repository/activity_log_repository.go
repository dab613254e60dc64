package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// ActivityLogRepository appends audit entries. Entries are immutable; there
// is deliberately no update or delete.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLogEntry) error
	ListRecent(ctx context.Context, channel string, limit int) ([]domain.ActivityLogEntry, error)
}

type activityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository builds repository.
func NewActivityLogRepository(pool *pgxpool.Pool) ActivityLogRepository {
	return &activityLogRepository{pool: pool}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *domain.ActivityLogEntry) error {
	const query = `
        INSERT INTO activity_log (account_id, channel, operation, severity, message, detail, duration_ms)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.AccountID,
		entry.Channel,
		entry.Operation,
		entry.Severity,
		entry.Message,
		entry.Detail,
		entry.Duration.Milliseconds(),
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityLogRepository) ListRecent(ctx context.Context, channel string, limit int) ([]domain.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, account_id, channel, operation, severity, message, detail, duration_ms, created_at
        FROM activity_log WHERE channel=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, channel, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityLogEntry
	for rows.Next() {
		var (
			entry      domain.ActivityLogEntry
			durationMS int64
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Channel,
			&entry.Operation,
			&entry.Severity,
			&entry.Message,
			&entry.Detail,
			&durationMS,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Duration = millisToDuration(durationMS)
		result = append(result, entry)
	}
	return result, rows.Err()
}

func millisToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
