package memory

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// MailAccountStore is an in-memory repository.MailAccountRepository.
type MailAccountStore struct {
	mu       sync.RWMutex
	accounts []domain.MailAccount
}

// NewMailAccountStore builds a store seeded with the given accounts.
func NewMailAccountStore(accounts ...domain.MailAccount) *MailAccountStore {
	return &MailAccountStore{accounts: accounts}
}

func (s *MailAccountStore) GetByID(ctx context.Context, id string) (*domain.MailAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if account.ID == id {
			a := account
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *MailAccountStore) ListEnabled(ctx context.Context) ([]domain.MailAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.MailAccount
	for _, account := range s.accounts {
		if account.Enabled {
			result = append(result, account)
		}
	}
	return result, nil
}
