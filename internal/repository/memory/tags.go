package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

type tagPair struct {
	ticketID string
	tagID    string
}

// TagStore is an in-memory repository.TagRepository.
type TagStore struct {
	mu     sync.RWMutex
	byName map[string]domain.Tag
	pairs  map[tagPair]struct{}
}

// NewTagStore builds an empty store.
func NewTagStore() *TagStore {
	return &TagStore{
		byName: make(map[string]domain.Tag),
		pairs:  make(map[tagPair]struct{}),
	}
}

func (s *TagStore) Create(ctx context.Context, tag *domain.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byName[tag.Name]; ok {
		*tag = existing
		return nil
	}
	tag.ID = uuid.NewString()
	tag.CreatedAt = time.Now()
	s.byName[tag.Name] = *tag
	return nil
}

func (s *TagStore) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tag, ok := s.byName[name]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &tag, nil
}

func (s *TagStore) AttachToTicket(ctx context.Context, ticketID, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[tagPair{ticketID: ticketID, tagID: tagID}] = struct{}{}
	return nil
}

func (s *TagStore) DetachFromTicket(ctx context.Context, ticketID, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pairs, tagPair{ticketID: ticketID, tagID: tagID})
	return nil
}

func (s *TagStore) ListByTicket(ctx context.Context, ticketID string) ([]domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Tag
	for pair := range s.pairs {
		if pair.ticketID != ticketID {
			continue
		}
		for _, tag := range s.byName {
			if tag.ID == pair.tagID {
				result = append(result, tag)
			}
		}
	}
	return result, nil
}
