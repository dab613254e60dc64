// Package ai abstracts the reply-generation collaborator. The core never
// interprets the model output; confidence and reasoning travel through as
// opaque metadata on the audit trail.
package ai

import (
	"context"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// Reply is the collaborator's answer for a ticket.
type Reply struct {
	Text       string
	Confidence float64
	Reasoning  string
}

// Adapter generates an analysis note for a ticket and its thread.
type Adapter interface {
	GenerateReply(ctx context.Context, ticket domain.Ticket, thread []domain.TicketMessage) (Reply, error)
}
