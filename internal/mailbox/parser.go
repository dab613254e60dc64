package mailbox

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	_ "github.com/emersion/go-message/charset"
)

// InboundMessage is one parsed email ready for ingestion.
type InboundMessage struct {
	AccountID   string
	FromAddress string
	FromName    string
	Subject     string
	Date        time.Time
	TextBody    string
	HTMLBody    string
}

// Body returns the preferred body text: plain text when present, otherwise
// the HTML part as-is.
func (m InboundMessage) Body() string {
	if strings.TrimSpace(m.TextBody) != "" {
		return m.TextBody
	}
	return m.HTMLBody
}

// ParseMessage decodes a raw RFC 822 message into an InboundMessage.
func ParseMessage(accountID string, raw io.Reader) (*InboundMessage, error) {
	mr, err := mail.CreateReader(raw)
	if err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}

	msg := &InboundMessage{AccountID: accountID}

	header := mr.Header
	if from, err := header.AddressList("From"); err == nil && len(from) > 0 {
		msg.FromAddress = strings.ToLower(strings.TrimSpace(from[0].Address))
		msg.FromName = strings.TrimSpace(from[0].Name)
	}
	if subject, err := header.Subject(); err == nil {
		msg.Subject = subject
	}
	if date, err := header.Date(); err == nil {
		msg.Date = date
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read part: %w", err)
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		switch contentType {
		case "text/plain":
			if msg.TextBody == "" {
				msg.TextBody = string(body)
			}
		case "text/html":
			if msg.HTMLBody == "" {
				msg.HTMLBody = string(body)
			}
		}
	}

	return msg, nil
}
