package ai

import (
	"context"
	"fmt"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// MockAdapter returns a canned reply; used in tests and local development.
type MockAdapter struct {
	Text       string
	Confidence float64
	Reasoning  string
	Err        error
	Calls      int
}

func (m *MockAdapter) GenerateReply(ctx context.Context, ticket domain.Ticket, thread []domain.TicketMessage) (Reply, error) {
	m.Calls++
	if m.Err != nil {
		return Reply{}, m.Err
	}
	text := m.Text
	if text == "" {
		text = fmt.Sprintf("Automated analysis for ticket #%d", ticket.Number)
	}
	return Reply{Text: text, Confidence: m.Confidence, Reasoning: m.Reasoning}, nil
}
