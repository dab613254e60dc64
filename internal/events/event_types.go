package events

import (
	"time"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketReopened     EventType = "ticket_reopened"
	EventTicketMessageAdded EventType = "ticket_message_added"
	EventAutomationExecuted EventType = "automation_executed"
)

// Event represents a domain event emitted by the pipelines.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Number    int64                 `json:"number"`
	Subject   string                `json:"subject"`
	Priority  domain.TicketPriority `json:"priority"`
	Source    domain.TicketSource   `json:"source"`
	ContactID *string               `json:"contact_id,omitempty"`
}

// TicketReopenedPayload payload.
type TicketReopenedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   string                   `json:"message_id"`
	AuthorType  domain.MessageAuthorType `json:"author_type"`
	BodyPreview string                   `json:"body_preview"`
}

// AutomationExecutedPayload payload.
type AutomationExecutedPayload struct {
	Trigger         domain.AutomationTrigger `json:"trigger"`
	ActionsExecuted int                      `json:"actions_executed"`
	Applied         []string                 `json:"applied"`
}
