package ingestion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/activity"
	"github.com/spec-kit/helpdesk-core/internal/automation"
	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/events"
	"github.com/spec-kit/helpdesk-core/internal/mailbox"
	"github.com/spec-kit/helpdesk-core/internal/observability"
	"github.com/spec-kit/helpdesk-core/internal/repository/memory"
	"github.com/spec-kit/helpdesk-core/internal/service"
)

// fakeSource replays canned messages and optionally fails per account.
type fakeSource struct {
	messages map[string][]mailbox.InboundMessage
	err      error
}

func (s *fakeSource) Fetch(ctx context.Context, account domain.MailAccount) ([]mailbox.InboundMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.messages[account.ID], nil
}

// eventRecorder collects published events by type.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) byType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []events.Event
	for _, event := range r.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

type coordinatorFixture struct {
	tickets     *memory.TicketStore
	contacts    *memory.ContactStore
	messages    *memory.MessageStore
	rules       *memory.AutomationStore
	audit       *memory.ActivityStore
	source      *fakeSource
	recorder    *eventRecorder
	coordinator *Coordinator
}

func newCoordinatorFixture(t *testing.T, rules ...domain.Automation) *coordinatorFixture {
	t.Helper()
	logger := zap.NewNop()
	f := &coordinatorFixture{
		tickets:  memory.NewTicketStore(),
		contacts: memory.NewContactStore(),
		messages: memory.NewMessageStore(),
		rules:    memory.NewAutomationStore(rules...),
		audit:    memory.NewActivityStore(),
		source:   &fakeSource{messages: make(map[string][]mailbox.InboundMessage)},
		recorder: &eventRecorder{},
	}

	auditLog := activity.NewLogger(f.audit, logger)
	metrics := observability.NewMetrics()
	executor := automation.NewExecutor(automation.ExecutorDependencies{
		Tickets:  f.tickets,
		Messages: f.messages,
		Tags:     memory.NewTagStore(),
		Audit:    auditLog,
		Logger:   logger,
	})
	engine := automation.NewEngine(f.rules, f.tickets,
		automation.NewEvaluator(logger), executor, auditLog, metrics, logger)

	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{
		events.EventTicketCreated, events.EventTicketReopened,
		events.EventTicketMessageAdded, events.EventAutomationExecuted,
	} {
		dispatcher.Subscribe(eventType, f.recorder.record)
	}

	f.coordinator = NewCoordinator(CoordinatorDependencies{
		Accounts: memory.NewMailAccountStore(domain.MailAccount{
			ID: "acc-1", Name: "support inbox", Enabled: true,
		}),
		Source:    f.source,
		Tickets:   f.tickets,
		Contacts:  f.contacts,
		Messages:  f.messages,
		Allocator: service.NewNumberAllocator(memory.NewCounterStore(), f.tickets),
		Engine:    engine,
		Dispatch:  dispatcher,
		Audit:     auditLog,
		Metrics:   metrics,
		Logger:    logger,
	})
	return f
}

func TestFetchAllCreatesTicketFromEmail(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.source.messages["acc-1"] = []mailbox.InboundMessage{{
		AccountID:   "acc-1",
		FromAddress: "alice@example.com",
		FromName:    "Alice",
		Subject:     "Re: printer jammed",
		TextBody:    "Paper stuck in tray 2.\n\n> earlier text",
	}}

	result := f.coordinator.FetchAll(context.Background())
	if !result.Success || result.NewTickets != 1 || result.NewMessages != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	ticket, err := f.tickets.GetByNumber(context.Background(), 1)
	if err != nil {
		t.Fatalf("ticket not created: %v", err)
	}
	if ticket.Subject != "printer jammed" {
		t.Fatalf("subject prefix not stripped: %q", ticket.Subject)
	}
	if ticket.Status != domain.TicketStatusOpen || ticket.Priority != domain.TicketPriorityMedium || ticket.Source != domain.TicketSourceEmail {
		t.Fatalf("wrong defaults: %+v", ticket)
	}
	if ticket.Description != "Paper stuck in tray 2." {
		t.Fatalf("quoted text not stripped: %q", ticket.Description)
	}

	contact, err := f.contacts.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("contact not created: %v", err)
	}
	if ticket.ContactID == nil || *ticket.ContactID != contact.ID {
		t.Fatalf("ticket not linked to contact")
	}

	thread, _ := f.messages.ListByTicket(context.Background(), ticket.ID)
	if len(thread) != 1 || thread[0].AuthorType != domain.AuthorTypeContact {
		t.Fatalf("first message missing or wrong author: %+v", thread)
	}

	if created := f.recorder.byType(events.EventTicketCreated); len(created) != 1 {
		t.Fatalf("expected one ticket_created event, got %d", len(created))
	}
}

func TestFetchAllThreadsReplyOntoExistingTicket(t *testing.T) {
	f := newCoordinatorFixture(t)

	contact := &domain.Contact{Email: "bob@example.com", Name: "Bob"}
	if err := f.contacts.Create(context.Background(), contact); err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	ticket := &domain.Ticket{
		Number: 5, Subject: "vpn broken", Status: domain.TicketStatusOpen,
		Priority: domain.TicketPriorityMedium, ContactID: &contact.ID,
		Source: domain.TicketSourceEmail,
	}
	if err := f.tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}

	f.source.messages["acc-1"] = []mailbox.InboundMessage{{
		AccountID:   "acc-1",
		FromAddress: "bob@example.com",
		Subject:     "Re: [Ticket #5] vpn broken",
		TextBody:    "Still failing after restart.",
	}}

	result := f.coordinator.FetchAll(context.Background())
	if result.NewTickets != 0 || result.NewMessages != 1 {
		t.Fatalf("expected a threaded reply, got %+v", result)
	}

	thread, _ := f.messages.ListByTicket(context.Background(), ticket.ID)
	if len(thread) != 1 || thread[0].Body != "Still failing after restart." {
		t.Fatalf("reply not appended: %+v", thread)
	}
}

func TestFetchAllSenderMismatchCreatesNewTicket(t *testing.T) {
	f := newCoordinatorFixture(t)

	owner := &domain.Contact{Email: "owner@example.com"}
	if err := f.contacts.Create(context.Background(), owner); err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	ticket := &domain.Ticket{
		Number: 9, Subject: "billing question", Status: domain.TicketStatusOpen,
		Priority: domain.TicketPriorityMedium, ContactID: &owner.ID,
		Source: domain.TicketSourceEmail,
	}
	if err := f.tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}

	// Right marker, wrong sender: must not inject into the thread.
	f.source.messages["acc-1"] = []mailbox.InboundMessage{{
		AccountID:   "acc-1",
		FromAddress: "stranger@example.com",
		Subject:     "Re: [Ticket #9] billing question",
		TextBody:    "me too",
	}}

	result := f.coordinator.FetchAll(context.Background())
	if result.NewTickets != 1 || result.NewMessages != 0 {
		t.Fatalf("mismatched sender should open a new ticket, got %+v", result)
	}
	thread, _ := f.messages.ListByTicket(context.Background(), ticket.ID)
	if len(thread) != 0 {
		t.Fatalf("original thread must stay untouched")
	}
}

func TestFetchAllReopensClosedTicketOnReply(t *testing.T) {
	statusChangedRule := domain.Automation{
		ID: "r", Name: "notice reopen", IsActive: true,
		Trigger: domain.TriggerTicketUpdated, Priority: 1,
		Conditions: []domain.Condition{{Field: domain.FieldStatusChanged}},
		Actions:    []domain.Action{{Kind: domain.ActionSetPriority, Value: "HIGH"}},
	}
	f := newCoordinatorFixture(t, statusChangedRule)

	contact := &domain.Contact{Email: "carol@example.com"}
	if err := f.contacts.Create(context.Background(), contact); err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	ticket := &domain.Ticket{
		Number: 3, Subject: "laptop dead", Status: domain.TicketStatusClosed,
		Priority: domain.TicketPriorityMedium, ContactID: &contact.ID,
		Source: domain.TicketSourceEmail,
	}
	if err := f.tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}

	f.source.messages["acc-1"] = []mailbox.InboundMessage{{
		AccountID:   "acc-1",
		FromAddress: "carol@example.com",
		Subject:     "Re: [Ticket #3] laptop dead",
		TextBody:    "It died again.",
	}}

	result := f.coordinator.FetchAll(context.Background())
	if result.NewMessages != 1 {
		t.Fatalf("expected a threaded reply, got %+v", result)
	}

	stored, _ := f.tickets.GetByID(context.Background(), ticket.ID)
	if stored.Status != domain.TicketStatusOpen {
		t.Fatalf("closed ticket should reopen, got %s", stored.Status)
	}
	// The update-trigger rule saw the pre-reply CLOSED snapshot.
	if stored.Priority != domain.TicketPriorityHigh {
		t.Fatalf("status_changed automation did not fire, priority %s", stored.Priority)
	}

	reopened := f.recorder.byType(events.EventTicketReopened)
	if len(reopened) != 1 {
		t.Fatalf("expected one ticket_reopened event, got %d", len(reopened))
	}
	payload, ok := reopened[0].Payload.(events.TicketReopenedPayload)
	if !ok || payload.OldStatus != domain.TicketStatusClosed || payload.NewStatus != domain.TicketStatusOpen {
		t.Fatalf("unexpected reopen payload: %+v", reopened[0].Payload)
	}
}

func TestFetchAllSkipsMessageWithoutSender(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.source.messages["acc-1"] = []mailbox.InboundMessage{
		{AccountID: "acc-1", Subject: "anonymous"},
		{AccountID: "acc-1", FromAddress: "dave@example.com", Subject: "real one", TextBody: "hi"},
	}

	result := f.coordinator.FetchAll(context.Background())
	if result.NewTickets != 1 {
		t.Fatalf("valid sibling message should still be ingested, got %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("missing sender should be reported, got %+v", result.Errors)
	}
}

func TestFetchAllReportsSourceFailure(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.source.err = errors.New("dial tcp: connection refused")

	result := f.coordinator.FetchAll(context.Background())
	if result.Success {
		t.Fatalf("source failure must mark the cycle unsuccessful")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "support inbox") {
		t.Fatalf("error should name the account: %+v", result.Errors)
	}
}

func TestFetchAllEndToEndWithCreationRule(t *testing.T) {
	escalate := domain.Automation{
		ID: "esc", Name: "escalate mediums", IsActive: true,
		Trigger: domain.TriggerTicketCreated, Priority: 1,
		Conditions: []domain.Condition{{Field: domain.FieldPriority, Operator: domain.OpEquals, Value: "MEDIUM"}},
		Actions:    []domain.Action{{Kind: domain.ActionSetPriority, Value: "HIGH"}},
	}
	f := newCoordinatorFixture(t, escalate)

	f.source.messages["acc-1"] = []mailbox.InboundMessage{{
		AccountID:   "acc-1",
		FromAddress: "eve@example.com",
		Subject:     "everything is slow",
		TextBody:    "please help",
	}}

	result := f.coordinator.FetchAll(context.Background())
	if result.NewTickets != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	ticket, err := f.tickets.GetByNumber(context.Background(), 1)
	if err != nil {
		t.Fatalf("ticket missing: %v", err)
	}
	if ticket.Priority != domain.TicketPriorityHigh {
		t.Fatalf("creation rule did not run, priority %s", ticket.Priority)
	}

	var fired int
	for _, entry := range f.audit.All() {
		if entry.Operation == "rule_fired" {
			fired++
		}
	}
	if fired != 1 {
		t.Fatalf("expected exactly one rule_fired entry, got %d", fired)
	}

	if executed := f.recorder.byType(events.EventAutomationExecuted); len(executed) != 1 {
		t.Fatalf("expected one automation_executed event, got %d", len(executed))
	}
}

func TestPreviewKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("héllo wörld ", 20)

	for _, max := range []int{1, 2, 3, 4, 5, 7, 10, 13, 40, 120} {
		got := preview(long, max)
		if len(got) > max {
			t.Fatalf("max %d: preview is %d bytes", max, len(got))
		}
		if !utf8.ValidString(got) {
			t.Fatalf("max %d: preview split a rune: %q", max, got)
		}
	}

	if got := preview("short", 120); got != "short" {
		t.Fatalf("short body must pass through unchanged, got %q", got)
	}
}

func TestFetchAccountUnknownID(t *testing.T) {
	f := newCoordinatorFixture(t)
	result := f.coordinator.FetchAccount(context.Background(), "missing")
	if result.Success || len(result.Errors) != 1 {
		t.Fatalf("unknown account should fail, got %+v", result)
	}
}
