package domain

import "time"

// MessageAuthorType indicates who authored a message.
type MessageAuthorType string

const (
	AuthorTypeAgent   MessageAuthorType = "AGENT"
	AuthorTypeContact MessageAuthorType = "CONTACT"
	AuthorTypeSystem  MessageAuthorType = "SYSTEM"
)

// TicketMessage captures communications in a ticket thread. Messages are
// append-only and never mutated after creation.
type TicketMessage struct {
	ID         string
	TicketID   string
	Body       string
	Internal   bool
	AuthorType MessageAuthorType
	AuthorID   *string
	CreatedAt  time.Time
}
