package memory

import (
	"context"
	"sync"
)

// CounterStore is an in-memory repository.CounterRepository. Next is atomic
// under the mutex, so concurrent callers always see distinct values.
type CounterStore struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewCounterStore builds an empty store.
func NewCounterStore() *CounterStore {
	return &CounterStore{values: make(map[string]int64)}
}

func (s *CounterStore) Next(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name]++
	return s.values[name], nil
}

func (s *CounterStore) EnsureAtLeast(ctx context.Context, name string, floor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[name] < floor {
		s.values[name] = floor
	}
	return nil
}
