package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// AutomationStore is an in-memory repository.AutomationRepository.
type AutomationStore struct {
	mu    sync.RWMutex
	rules []domain.Automation
}

// NewAutomationStore builds a store seeded with the given rules.
func NewAutomationStore(rules ...domain.Automation) *AutomationStore {
	return &AutomationStore{rules: rules}
}

// Add appends a rule.
func (s *AutomationStore) Add(rule domain.Automation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule)
}

func (s *AutomationStore) ListActiveByTrigger(ctx context.Context, trigger domain.AutomationTrigger) ([]domain.Automation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Automation
	for _, rule := range s.rules {
		if rule.IsActive && rule.Trigger == trigger {
			result = append(result, rule)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority < result[j].Priority
	})
	return result, nil
}
