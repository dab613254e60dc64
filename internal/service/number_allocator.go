package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/spec-kit/helpdesk-core/internal/repository"
)

const ticketNumberCounter = "ticket_number"

// NumberAllocator hands out unique, increasing ticket numbers. The counter
// primitive provides atomicity; on first use the allocator reconciles it
// against the highest number already persisted so pre-existing tickets are
// never collided with. Uniqueness under concurrent creation is a
// correctness invariant, not best-effort.
type NumberAllocator struct {
	counters repository.CounterRepository
	tickets  repository.TicketRepository

	mu     sync.Mutex
	synced bool
}

// NewNumberAllocator constructs the allocator.
func NewNumberAllocator(counters repository.CounterRepository, tickets repository.TicketRepository) *NumberAllocator {
	return &NumberAllocator{counters: counters, tickets: tickets}
}

// Next returns the next ticket number.
func (a *NumberAllocator) Next(ctx context.Context) (int64, error) {
	if err := a.syncFloor(ctx); err != nil {
		return 0, err
	}
	number, err := a.counters.Next(ctx, ticketNumberCounter)
	if err != nil {
		return 0, fmt.Errorf("advance ticket counter: %w", err)
	}
	return number, nil
}

// syncFloor raises the counter to MAX(number) once per process. A failed
// sync is retried on the next allocation rather than poisoning all of them.
func (a *NumberAllocator) syncFloor(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.synced {
		return nil
	}
	max, err := a.tickets.MaxNumber(ctx)
	if err != nil {
		return fmt.Errorf("read max ticket number: %w", err)
	}
	if err := a.counters.EnsureAtLeast(ctx, ticketNumberCounter, max); err != nil {
		return fmt.Errorf("reconcile ticket counter: %w", err)
	}
	a.synced = true
	return nil
}
