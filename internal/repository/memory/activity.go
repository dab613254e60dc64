package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// ActivityStore is an in-memory repository.ActivityLogRepository.
type ActivityStore struct {
	mu      sync.RWMutex
	entries []domain.ActivityLogEntry
}

// NewActivityStore builds an empty store.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{}
}

func (s *ActivityStore) Create(ctx context.Context, entry *domain.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *ActivityStore) ListRecent(ctx context.Context, channel string, limit int) ([]domain.ActivityLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.ActivityLogEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Channel != channel {
			continue
		}
		result = append(result, s.entries[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// All returns every entry in insertion order, for assertions in tests.
func (s *ActivityStore) All() []domain.ActivityLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ActivityLogEntry(nil), s.entries...)
}
