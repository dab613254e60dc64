package domain

import "fmt"

// FormatEmailSubject embeds the ticket-number threading marker in an
// outbound subject line. Inbound mail carrying the same marker (with an
// optional "Ticket" keyword and optional "#") threads back to the ticket.
func FormatEmailSubject(number int64, subject string) string {
	return fmt.Sprintf("[Ticket #%d] %s", number, subject)
}
