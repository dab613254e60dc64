package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// TagRepository manages tags and the ticket-tag association. Association
// writes are idempotent: adding an existing pair or removing a missing one
// is a no-op, not an error.
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	GetByName(ctx context.Context, name string) (*domain.Tag, error)
	AttachToTicket(ctx context.Context, ticketID, tagID string) error
	DetachFromTicket(ctx context.Context, ticketID, tagID string) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Tag, error)
}

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository builds repository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	const query = `
        INSERT INTO tags (name, color)
        VALUES ($1,$2)
        ON CONFLICT (name) DO UPDATE SET name=EXCLUDED.name
        RETURNING id, name, color, created_at`
	return r.pool.QueryRow(ctx, query, tag.Name, tag.Color).
		Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt)
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	const query = `SELECT id, name, color, created_at FROM tags WHERE name=$1`
	var tag domain.Tag
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&tag.ID,
		&tag.Name,
		&tag.Color,
		&tag.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) AttachToTicket(ctx context.Context, ticketID, tagID string) error {
	const query = `
        INSERT INTO ticket_tags (ticket_id, tag_id)
        VALUES ($1,$2)
        ON CONFLICT (ticket_id, tag_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, ticketID, tagID)
	return err
}

func (r *tagRepository) DetachFromTicket(ctx context.Context, ticketID, tagID string) error {
	const query = `DELETE FROM ticket_tags WHERE ticket_id=$1 AND tag_id=$2`
	_, err := r.pool.Exec(ctx, query, ticketID, tagID)
	return err
}

func (r *tagRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Tag, error) {
	const query = `
        SELECT t.id, t.name, t.color, t.created_at
        FROM tags t
        JOIN ticket_tags tt ON tt.tag_id = t.id
        WHERE tt.ticket_id=$1 ORDER BY t.name ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}
