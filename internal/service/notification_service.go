package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/events"
	"github.com/spec-kit/helpdesk-core/internal/repository"
)

// NotificationService sends contact-facing email for domain events and for
// the SEND_EMAIL automation action. Delivery is fire-and-forget: a send
// runs in its own goroutine and a failure is captured by the logger, never
// propagated to the caller.
type NotificationService struct {
	mailer     Mailer
	contacts   repository.ContactRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger

	wg sync.WaitGroup
}

// NewNotificationService creates the service.
func NewNotificationService(mailer Mailer, contacts repository.ContactRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		mailer:     mailer,
		contacts:   contacts,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketReopened, n.handleTicketReopened)
}

// EnqueueTicketEmail satisfies the automation executor's Notifier contract.
func (n *NotificationService) EnqueueTicketEmail(ctx context.Context, ticket domain.Ticket, body string) {
	if ticket.ContactID == nil {
		n.logger.Debug("skipping automation email for ticket without contact",
			zap.String("ticket_id", ticket.ID))
		return
	}
	contact, err := n.contacts.GetByID(ctx, *ticket.ContactID)
	if err != nil {
		n.logger.Warn("automation email contact lookup failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}
	subject := domain.FormatEmailSubject(ticket.Number, ticket.Subject)
	n.dispatch(contact.Email, subject, body, "automation")
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok || payload.ContactID == nil {
		return nil
	}
	contact, err := n.contacts.GetByID(ctx, *payload.ContactID)
	if err != nil {
		n.logger.Warn("created-notification contact lookup failed",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
		return nil
	}
	subject := domain.FormatEmailSubject(payload.Number, payload.Subject)
	body := fmt.Sprintf("Your request has been received and assigned ticket #%d. We will be in touch shortly.", payload.Number)
	n.dispatch(contact.Email, subject, body, "ticket_created")
	return nil
}

func (n *NotificationService) handleTicketReopened(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket reopened",
		zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

// dispatch sends asynchronously; the completion callback logs the outcome.
func (n *NotificationService) dispatch(to, subject, body, reason string) {
	if n.mailer == nil {
		n.logger.Debug("no mailer configured; dropping notification",
			zap.String("to", to), zap.String("reason", reason))
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.mailer.Send(to, subject, body); err != nil {
			n.logger.Error("notification send failed",
				zap.String("to", to), zap.String("reason", reason), zap.Error(err))
			return
		}
		n.logger.Info("notification sent",
			zap.String("to", to), zap.String("reason", reason))
	}()
}

// Wait blocks until in-flight sends complete; used on shutdown and in tests.
func (n *NotificationService) Wait() {
	n.wg.Wait()
}
