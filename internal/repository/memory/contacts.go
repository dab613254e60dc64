package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// ContactStore is an in-memory repository.ContactRepository.
type ContactStore struct {
	mu      sync.RWMutex
	byID    map[string]domain.Contact
	byEmail map[string]string
}

// NewContactStore builds an empty store.
func NewContactStore() *ContactStore {
	return &ContactStore{
		byID:    make(map[string]domain.Contact),
		byEmail: make(map[string]string),
	}
}

func (s *ContactStore) Create(ctx context.Context, contact *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact.Email = strings.ToLower(strings.TrimSpace(contact.Email))
	if id, ok := s.byEmail[contact.Email]; ok {
		existing := s.byID[id]
		if contact.Name != "" {
			existing.Name = contact.Name
			s.byID[id] = existing
		}
		*contact = existing
		return nil
	}
	contact.ID = uuid.NewString()
	contact.CreatedAt = time.Now()
	s.byID[contact.ID] = *contact
	s.byEmail[contact.Email] = contact.ID
	return nil
}

func (s *ContactStore) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contact, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &contact, nil
}

func (s *ContactStore) GetByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	contact := s.byID[id]
	return &contact, nil
}
