package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// MessageStore is an in-memory repository.TicketMessageRepository.
type MessageStore struct {
	mu       sync.RWMutex
	messages []domain.TicketMessage
}

// NewMessageStore builds an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

func (s *MessageStore) Create(ctx context.Context, msg *domain.TicketMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *MessageStore) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.TicketMessage
	for _, msg := range s.messages {
		if msg.TicketID == ticketID {
			result = append(result, msg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
