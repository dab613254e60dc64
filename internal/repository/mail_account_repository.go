package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// MailAccountRepository reads operator-configured mailbox accounts.
type MailAccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.MailAccount, error)
	ListEnabled(ctx context.Context) ([]domain.MailAccount, error)
}

type mailAccountRepository struct {
	pool *pgxpool.Pool
}

// NewMailAccountRepository builds repository.
func NewMailAccountRepository(pool *pgxpool.Pool) MailAccountRepository {
	return &mailAccountRepository{pool: pool}
}

const mailAccountColumns = `id, name, host, port, username, password, use_tls, enabled, created_at, updated_at`

func (r *mailAccountRepository) GetByID(ctx context.Context, id string) (*domain.MailAccount, error) {
	query := `SELECT ` + mailAccountColumns + ` FROM mail_accounts WHERE id=$1`
	var account domain.MailAccount
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.Name,
		&account.Host,
		&account.Port,
		&account.Username,
		&account.Password,
		&account.UseTLS,
		&account.Enabled,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *mailAccountRepository) ListEnabled(ctx context.Context) ([]domain.MailAccount, error) {
	query := `SELECT ` + mailAccountColumns + ` FROM mail_accounts WHERE enabled = TRUE ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MailAccount
	for rows.Next() {
		var account domain.MailAccount
		if err := rows.Scan(
			&account.ID,
			&account.Name,
			&account.Host,
			&account.Port,
			&account.Username,
			&account.Password,
			&account.UseTLS,
			&account.Enabled,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}
