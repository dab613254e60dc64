package service

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/events"
	"github.com/spec-kit/helpdesk-core/internal/repository/memory"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func TestNotificationOnTicketCreated(t *testing.T) {
	mailer := &fakeMailer{}
	contacts := memory.NewContactStore()
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(mailer, contacts, dispatcher, zap.NewNop())
	svc.RegisterHandlers()

	contact := &domain.Contact{Email: "alice@example.com"}
	if err := contacts.Create(context.Background(), contact); err != nil {
		t.Fatalf("seed contact: %v", err)
	}

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCreated,
		TicketID: "t-1",
		Payload: events.TicketCreatedPayload{
			Number:    42,
			Subject:   "printer jammed",
			ContactID: &contact.ID,
		},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	svc.Wait()

	sent := mailer.all()
	if len(sent) != 1 {
		t.Fatalf("expected one acknowledgement email, got %d", len(sent))
	}
	if sent[0].to != "alice@example.com" {
		t.Fatalf("wrong recipient: %q", sent[0].to)
	}
	if sent[0].subject != "[Ticket #42] printer jammed" {
		t.Fatalf("subject must carry the threading marker: %q", sent[0].subject)
	}
}

func TestEnqueueTicketEmail(t *testing.T) {
	mailer := &fakeMailer{}
	contacts := memory.NewContactStore()
	svc := NewNotificationService(mailer, contacts, nil, zap.NewNop())

	contact := &domain.Contact{Email: "bob@example.com"}
	if err := contacts.Create(context.Background(), contact); err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	ticket := domain.Ticket{ID: "t-2", Number: 7, Subject: "vpn broken", ContactID: &contact.ID}

	svc.EnqueueTicketEmail(context.Background(), ticket, "We are on it.")
	svc.Wait()

	sent := mailer.all()
	if len(sent) != 1 || sent[0].body != "We are on it." {
		t.Fatalf("automation email not delivered: %+v", sent)
	}

	// A ticket without a contact is silently skipped.
	svc.EnqueueTicketEmail(context.Background(), domain.Ticket{ID: "t-3", Number: 8}, "x")
	svc.Wait()
	if len(mailer.all()) != 1 {
		t.Fatalf("ticket without contact must not send mail")
	}
}
