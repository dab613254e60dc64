package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/ingestion"
)

// IngestionWorker polls mailbox accounts on a fixed interval.
type IngestionWorker struct {
	coordinator *ingestion.Coordinator
	interval    time.Duration
	log         *zap.Logger
	done        chan struct{}
}

// NewIngestionWorker constructs the polling worker.
func NewIngestionWorker(coordinator *ingestion.Coordinator, interval time.Duration, log *zap.Logger) *IngestionWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &IngestionWorker{
		coordinator: coordinator,
		interval:    interval,
		log:         log,
		done:        make(chan struct{}),
	}
}

// Start begins the polling loop in a goroutine. It runs until the context
// is cancelled; a cycle already in flight finishes before the loop exits.
func (w *IngestionWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		w.log.Info("ingestion worker started", zap.Duration("interval", w.interval))

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				w.log.Info("ingestion worker stopping")
				return
			case <-ticker.C:
				result := w.coordinator.FetchAll(ctx)
				if len(result.Errors) > 0 {
					w.log.Warn("ingestion cycle finished with errors",
						zap.Int("new_tickets", result.NewTickets),
						zap.Int("new_messages", result.NewMessages),
						zap.Strings("errors", result.Errors))
				} else if result.NewTickets > 0 || result.NewMessages > 0 {
					w.log.Info("ingestion cycle finished",
						zap.Int("new_tickets", result.NewTickets),
						zap.Int("new_messages", result.NewMessages))
				}
			}
		}
	}()
}

// Wait blocks until the polling loop has exited.
func (w *IngestionWorker) Wait() {
	<-w.done
}
