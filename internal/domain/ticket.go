package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "OPEN"
	TicketStatusPending  TicketStatus = "PENDING"
	TicketStatusResolved TicketStatus = "RESOLVED"
	TicketStatusClosed   TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// TicketSource records where a ticket originated.
type TicketSource string

const (
	TicketSourceEmail       TicketSource = "EMAIL"
	TicketSourcePortal      TicketSource = "PORTAL"
	TicketSourceAIGenerated TicketSource = "AI_GENERATED"
)

// Ticket is the aggregate for support requests. Number is globally unique
// and monotonic; it is assigned exactly once at creation.
type Ticket struct {
	ID          string
	Number      int64
	Subject     string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	AssigneeID  *string
	GroupID     *string
	ContactID   *string
	Source      TicketSource
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketPatch is a partial update produced by automation actions. Nil
// pointer fields mean "unchanged"; the Set* flags distinguish "assign nil"
// (unassign) from "leave alone" for the nullable foreign keys.
type TicketPatch struct {
	Status      *TicketStatus
	Priority    *TicketPriority
	SetAssignee bool
	AssigneeID  *string
	SetGroup    bool
	GroupID     *string
}

// IsZero reports whether the patch changes nothing.
func (p TicketPatch) IsZero() bool {
	return p.Status == nil && p.Priority == nil && !p.SetAssignee && !p.SetGroup
}

// Apply returns a copy of the ticket with the patch folded in.
func (p TicketPatch) Apply(t Ticket) Ticket {
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.SetAssignee {
		t.AssigneeID = p.AssigneeID
	}
	if p.SetGroup {
		t.GroupID = p.GroupID
	}
	return t
}
