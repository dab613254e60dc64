package service

import (
	"context"
	"sync"
	"testing"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/repository/memory"
)

func TestNumberAllocatorIsSequential(t *testing.T) {
	allocator := NewNumberAllocator(memory.NewCounterStore(), memory.NewTicketStore())

	for want := int64(1); want <= 3; want++ {
		got, err := allocator.Next(context.Background())
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}
}

func TestNumberAllocatorSkipsExistingNumbers(t *testing.T) {
	tickets := memory.NewTicketStore()
	if err := tickets.Create(context.Background(), &domain.Ticket{Number: 41}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	allocator := NewNumberAllocator(memory.NewCounterStore(), tickets)
	got, err := allocator.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != 42 {
		t.Fatalf("allocator must start above existing numbers, got %d", got)
	}
}

func TestNumberAllocatorConcurrentUniqueness(t *testing.T) {
	const goroutines = 64

	allocator := NewNumberAllocator(memory.NewCounterStore(), memory.NewTicketStore())

	var wg sync.WaitGroup
	numbers := make(chan int64, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := allocator.Next(context.Background())
			if err != nil {
				t.Errorf("next: %v", err)
				return
			}
			numbers <- n
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int64]bool)
	for n := range numbers {
		if seen[n] {
			t.Fatalf("number %d allocated twice", n)
		}
		seen[n] = true
	}
	if len(seen) != goroutines {
		t.Fatalf("expected %d distinct numbers, got %d", goroutines, len(seen))
	}
}
