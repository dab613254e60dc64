package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/repository"
)

// TicketsHandler exposes a read-only operational listing of tickets.
type TicketsHandler struct {
	tickets repository.TicketRepository
}

// NewTicketsHandler returns a new handler instance.
func NewTicketsHandler(tickets repository.TicketRepository) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

type ticketResponse struct {
	ID         string    `json:"id"`
	Number     int64     `json:"number"`
	Subject    string    `json:"subject"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority"`
	AssigneeID *string   `json:"assignee_id,omitempty"`
	GroupID    *string   `json:"group_id,omitempty"`
	ContactID  *string   `json:"contact_id,omitempty"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// List returns tickets matching the query filters, most recently updated
// first. Filters: status, priority, source (comma-separated), contact_id,
// assignee_id, group_id, q (subject/description search), limit, offset.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}

	for _, status := range splitQuery(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(status))
	}
	for _, priority := range splitQuery(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(priority))
	}
	for _, source := range splitQuery(c.Query("source")) {
		filter.Sources = append(filter.Sources, domain.TicketSource(source))
	}
	if v := c.Query("contact_id"); v != "" {
		filter.ContactID = &v
	}
	if v := c.Query("assignee_id"); v != "" {
		filter.AssigneeID = &v
	}
	if v := c.Query("group_id"); v != "" {
		filter.GroupID = &v
	}
	if v := c.Query("q"); v != "" {
		filter.SearchTerm = &v
	}

	tickets, err := h.tickets.ListWithFilter(c.UserContext(), filter)
	if err != nil {
		return err
	}

	response := make([]ticketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		response = append(response, ticketResponse{
			ID:         ticket.ID,
			Number:     ticket.Number,
			Subject:    ticket.Subject,
			Status:     string(ticket.Status),
			Priority:   string(ticket.Priority),
			AssigneeID: ticket.AssigneeID,
			GroupID:    ticket.GroupID,
			ContactID:  ticket.ContactID,
			Source:     string(ticket.Source),
			CreatedAt:  ticket.CreatedAt,
			UpdatedAt:  ticket.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"tickets": response, "count": len(response)})
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, strings.ToUpper(part))
		}
	}
	return result
}
