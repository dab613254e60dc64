package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// HTTPAdapter calls an external analysis service over HTTP.
type HTTPAdapter struct {
	BaseURL string
	Client  *http.Client
}

type requestBody struct {
	TicketID string          `json:"ticket_id"`
	Number   int64           `json:"ticket_number"`
	Subject  string          `json:"subject"`
	Priority string          `json:"priority"`
	Thread   []threadMessage `json:"thread"`
}

type threadMessage struct {
	AuthorType string `json:"author_type"`
	Body       string `json:"body"`
}

type responseBody struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func (h HTTPAdapter) GenerateReply(ctx context.Context, ticket domain.Ticket, thread []domain.TicketMessage) (Reply, error) {
	if h.BaseURL == "" {
		return Reply{}, errors.New("ai adapter not configured")
	}
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	payload := requestBody{
		TicketID: ticket.ID,
		Number:   ticket.Number,
		Subject:  ticket.Subject,
		Priority: string(ticket.Priority),
	}
	for _, msg := range thread {
		if msg.Internal {
			continue
		}
		payload.Thread = append(payload.Thread, threadMessage{
			AuthorType: string(msg.AuthorType),
			Body:       msg.Body,
		})
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return Reply{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/analyze", bytes.NewReader(b))
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Reply{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Reply{}, fmt.Errorf("ai service returned status %d", resp.StatusCode)
	}

	var body responseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Reply{}, err
	}
	return Reply{Text: body.Text, Confidence: body.Confidence, Reasoning: body.Reasoning}, nil
}
