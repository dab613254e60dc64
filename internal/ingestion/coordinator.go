// Package ingestion turns inbound email into ticket activity: each parsed
// message either threads onto an existing ticket as a reply or becomes a
// new ticket, and every creation or update runs the automation engine.
package ingestion

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/activity"
	"github.com/spec-kit/helpdesk-core/internal/automation"
	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/events"
	"github.com/spec-kit/helpdesk-core/internal/mailbox"
	"github.com/spec-kit/helpdesk-core/internal/observability"
	"github.com/spec-kit/helpdesk-core/internal/repository"
	"github.com/spec-kit/helpdesk-core/internal/service"
)

// Source yields parsed messages for one mailbox account. The IMAP reader is
// the production implementation; tests substitute a fake.
type Source interface {
	Fetch(ctx context.Context, account domain.MailAccount) ([]mailbox.InboundMessage, error)
}

// Result summarizes one ingestion cycle.
type Result struct {
	Success     bool     `json:"success"`
	NewTickets  int      `json:"new_tickets"`
	NewMessages int      `json:"new_messages"`
	Errors      []string `json:"errors"`
}

// Summary renders a short operator-facing line.
func (r Result) Summary() string {
	return fmt.Sprintf("created %d ticket(s), added %d reply(ies), %d error(s)",
		r.NewTickets, r.NewMessages, len(r.Errors))
}

// Coordinator drives mailbox accounts through fetch and message-to-ticket
// resolution. Accounts are processed sequentially; per-ticket mutation and
// number allocation are serialized by the repository and allocator, which
// is what actually guards against races if callers overlap cycles.
type Coordinator struct {
	accounts  repository.MailAccountRepository
	source    Source
	tickets   repository.TicketRepository
	contacts  repository.ContactRepository
	messages  repository.TicketMessageRepository
	allocator *service.NumberAllocator
	engine    *automation.Engine
	dispatch  events.Dispatcher
	audit     *activity.Logger
	metrics   *observability.Metrics
	log       *zap.Logger

	accountTimeout time.Duration
}

// CoordinatorDependencies bundles collaborators for the coordinator.
type CoordinatorDependencies struct {
	Accounts  repository.MailAccountRepository
	Source    Source
	Tickets   repository.TicketRepository
	Contacts  repository.ContactRepository
	Messages  repository.TicketMessageRepository
	Allocator *service.NumberAllocator
	Engine    *automation.Engine
	Dispatch  events.Dispatcher
	Audit     *activity.Logger
	Metrics   *observability.Metrics
	Logger    *zap.Logger

	// AccountTimeout bounds one account's fetch so a hung server cannot
	// stall the whole cycle.
	AccountTimeout time.Duration
}

// NewCoordinator constructs the coordinator.
func NewCoordinator(deps CoordinatorDependencies) *Coordinator {
	timeout := deps.AccountTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Coordinator{
		accounts:       deps.Accounts,
		source:         deps.Source,
		tickets:        deps.Tickets,
		contacts:       deps.Contacts,
		messages:       deps.Messages,
		allocator:      deps.Allocator,
		engine:         deps.Engine,
		dispatch:       deps.Dispatch,
		audit:          deps.Audit,
		metrics:        deps.Metrics,
		log:            deps.Logger,
		accountTimeout: timeout,
	}
}

// FetchAll processes every enabled mailbox account.
func (c *Coordinator) FetchAll(ctx context.Context) Result {
	started := time.Now()
	result := Result{Success: true}

	accounts, err := c.accounts.ListEnabled(ctx)
	if err != nil {
		c.log.Error("failed to list mailbox accounts", zap.Error(err))
		result.Success = false
		result.Errors = append(result.Errors, fmt.Sprintf("list accounts: %v", err))
		return result
	}
	if len(accounts) == 0 {
		c.audit.Warn(ctx, nil, activity.ChannelIngestion, "cycle",
			"no mailbox accounts configured; nothing to ingest", nil, time.Since(started))
		return result
	}

	for _, account := range accounts {
		c.runAccount(ctx, account, &result)
	}

	c.audit.Info(ctx, nil, activity.ChannelIngestion, "cycle",
		"ingestion cycle complete: "+result.Summary(),
		map[string]any{
			"accounts":     len(accounts),
			"new_tickets":  result.NewTickets,
			"new_messages": result.NewMessages,
			"errors":       len(result.Errors),
		}, time.Since(started))
	return result
}

// FetchAccount processes a single mailbox account by id.
func (c *Coordinator) FetchAccount(ctx context.Context, accountID string) Result {
	result := Result{Success: true}
	account, err := c.accounts.GetByID(ctx, accountID)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, fmt.Sprintf("load account %s: %v", accountID, err))
		return result
	}
	c.runAccount(ctx, *account, &result)
	return result
}

func (c *Coordinator) runAccount(ctx context.Context, account domain.MailAccount, result *Result) {
	accountCtx, cancel := context.WithTimeout(ctx, c.accountTimeout)
	defer cancel()

	messages, err := c.source.Fetch(accountCtx, account)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, fmt.Sprintf("account %s: %v", account.Name, err))
		c.metrics.RecordIngestion(account.ID, 0, 0, 1)
		return
	}

	var newTickets, newMessages, failed int
	for _, msg := range messages {
		outcome, err := c.processMessage(accountCtx, msg)
		if err != nil {
			failed++
			result.Errors = append(result.Errors, fmt.Sprintf("account %s: %v", account.Name, err))
			c.audit.Error(accountCtx, &account.ID, activity.ChannelIngestion, "process_message",
				fmt.Sprintf("failed to ingest message %q: %v", msg.Subject, err),
				map[string]any{"from": msg.FromAddress}, 0)
			continue
		}
		switch outcome {
		case outcomeNewTicket:
			newTickets++
		case outcomeReply:
			newMessages++
		}
	}

	result.NewTickets += newTickets
	result.NewMessages += newMessages
	c.metrics.RecordIngestion(account.ID, newTickets, newMessages, failed)
}

type messageOutcome int

const (
	outcomeSkipped messageOutcome = iota
	outcomeNewTicket
	outcomeReply
)

func (c *Coordinator) processMessage(ctx context.Context, msg mailbox.InboundMessage) (messageOutcome, error) {
	if msg.FromAddress == "" {
		return outcomeSkipped, fmt.Errorf("message %q has no usable sender address", msg.Subject)
	}

	replyText := ExtractReplyText(msg.Body())

	if number, ok := TicketNumberFromSubject(msg.Subject); ok {
		ticket, err := c.tickets.GetByNumber(ctx, number)
		if err == nil && c.senderOwnsTicket(ctx, ticket, msg.FromAddress) {
			return c.appendReply(ctx, ticket, msg, replyText)
		}
		// No such ticket or sender mismatch: fall through to new-ticket
		// creation rather than guessing at a thread.
	}

	return c.createTicket(ctx, msg, replyText)
}

// senderOwnsTicket confirms the inbound sender matches the ticket's contact
// before threading a reply, so a forwarded subject line cannot inject into
// someone else's ticket.
func (c *Coordinator) senderOwnsTicket(ctx context.Context, ticket *domain.Ticket, sender string) bool {
	if ticket.ContactID == nil {
		return false
	}
	contact, err := c.contacts.GetByID(ctx, *ticket.ContactID)
	if err != nil {
		return false
	}
	return contact.Email == sender
}

func (c *Coordinator) appendReply(ctx context.Context, ticket *domain.Ticket, msg mailbox.InboundMessage, replyText string) (messageOutcome, error) {
	message := &domain.TicketMessage{
		TicketID:   ticket.ID,
		Body:       replyText,
		AuthorType: domain.AuthorTypeContact,
		AuthorID:   ticket.ContactID,
	}
	if err := c.messages.Create(ctx, message); err != nil {
		return outcomeSkipped, fmt.Errorf("append reply to ticket #%d: %w", ticket.Number, err)
	}
	c.publish(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:   message.ID,
			AuthorType:  message.AuthorType,
			BodyPreview: preview(replyText, 120),
		},
	})

	if ticket.Status == domain.TicketStatusClosed || ticket.Status == domain.TicketStatusResolved {
		previous := *ticket
		ticket.Status = domain.TicketStatusOpen
		if err := c.tickets.Update(ctx, ticket); err != nil {
			return outcomeSkipped, fmt.Errorf("reopen ticket #%d: %w", ticket.Number, err)
		}
		c.publish(ctx, events.Event{
			Type:     events.EventTicketReopened,
			TicketID: ticket.ID,
			Payload: events.TicketReopenedPayload{
				OldStatus: previous.Status,
				NewStatus: ticket.Status,
			},
		})
		c.runAutomationOnUpdate(ctx, ticket.ID, previous)
	} else if err := c.tickets.Touch(ctx, ticket.ID, time.Now()); err != nil {
		c.log.Warn("failed to touch ticket after reply",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	c.audit.Info(ctx, nil, activity.ChannelIngestion, "reply",
		fmt.Sprintf("reply from %s threaded onto ticket #%d", msg.FromAddress, ticket.Number),
		map[string]any{"ticket_id": ticket.ID}, 0)
	return outcomeReply, nil
}

func (c *Coordinator) createTicket(ctx context.Context, msg mailbox.InboundMessage, replyText string) (messageOutcome, error) {
	contact := &domain.Contact{Email: msg.FromAddress, Name: msg.FromName}
	if existing, err := c.contacts.GetByEmail(ctx, msg.FromAddress); err == nil {
		contact = existing
	} else if err := c.contacts.Create(ctx, contact); err != nil {
		return outcomeSkipped, fmt.Errorf("create contact %s: %w", msg.FromAddress, err)
	}

	number, err := c.allocator.Next(ctx)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("allocate ticket number: %w", err)
	}

	subject := CleanSubject(msg.Subject)
	if subject == "" {
		subject = "(no subject)"
	}

	ticket := &domain.Ticket{
		Number:      number,
		Subject:     subject,
		Description: replyText,
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityMedium,
		ContactID:   &contact.ID,
		Source:      domain.TicketSourceEmail,
	}
	if err := c.tickets.Create(ctx, ticket); err != nil {
		return outcomeSkipped, fmt.Errorf("create ticket #%d: %w", number, err)
	}

	message := &domain.TicketMessage{
		TicketID:   ticket.ID,
		Body:       replyText,
		AuthorType: domain.AuthorTypeContact,
		AuthorID:   &contact.ID,
	}
	if err := c.messages.Create(ctx, message); err != nil {
		return outcomeSkipped, fmt.Errorf("create first message for ticket #%d: %w", number, err)
	}

	c.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Number:    ticket.Number,
			Subject:   ticket.Subject,
			Priority:  ticket.Priority,
			Source:    ticket.Source,
			ContactID: ticket.ContactID,
		},
	})
	c.audit.Info(ctx, nil, activity.ChannelIngestion, "create_ticket",
		fmt.Sprintf("ticket #%d created from email by %s", ticket.Number, msg.FromAddress),
		map[string]any{"ticket_id": ticket.ID, "subject": ticket.Subject}, 0)

	if result, err := c.engine.OnTicketCreated(ctx, ticket.ID); err != nil {
		c.log.Warn("automation run failed after ticket creation",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	} else if result.ActionsExecuted > 0 {
		c.publish(ctx, events.Event{
			Type:     events.EventAutomationExecuted,
			TicketID: ticket.ID,
			Payload: events.AutomationExecutedPayload{
				Trigger:         domain.TriggerTicketCreated,
				ActionsExecuted: result.ActionsExecuted,
				Applied:         result.Applied,
			},
		})
	}

	return outcomeNewTicket, nil
}

func (c *Coordinator) runAutomationOnUpdate(ctx context.Context, ticketID string, previous domain.Ticket) {
	result, err := c.engine.OnTicketUpdated(ctx, ticketID, previous)
	if err != nil {
		c.log.Warn("automation run failed after ticket update",
			zap.String("ticket_id", ticketID), zap.Error(err))
		return
	}
	if result.ActionsExecuted > 0 {
		c.publish(ctx, events.Event{
			Type:     events.EventAutomationExecuted,
			TicketID: ticketID,
			Payload: events.AutomationExecutedPayload{
				Trigger:         domain.TriggerTicketUpdated,
				ActionsExecuted: result.ActionsExecuted,
				Applied:         result.Applied,
			},
		})
	}
}

func (c *Coordinator) publish(ctx context.Context, event events.Event) {
	if c.dispatch == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = c.dispatch.Publish(ctx, event)
}

// preview truncates to at most max bytes without splitting a rune.
func preview(body string, max int) string {
	if len(body) <= max {
		return body
	}
	cut := max - 3
	suffix := "..."
	if max <= 3 {
		cut = max
		suffix = ""
	}
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + suffix
}
