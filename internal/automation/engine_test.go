package automation

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/activity"
	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/observability"
	"github.com/spec-kit/helpdesk-core/internal/repository/memory"
)

type engineFixture struct {
	tickets *memory.TicketStore
	rules   *memory.AutomationStore
	audit   *memory.ActivityStore
	engine  *Engine
}

func newEngineFixture(t *testing.T, rules ...domain.Automation) *engineFixture {
	t.Helper()
	f := &engineFixture{
		tickets: memory.NewTicketStore(),
		rules:   memory.NewAutomationStore(rules...),
		audit:   memory.NewActivityStore(),
	}
	logger := zap.NewNop()
	auditLog := activity.NewLogger(f.audit, logger)
	executor := NewExecutor(ExecutorDependencies{
		Tickets:  f.tickets,
		Messages: memory.NewMessageStore(),
		Tags:     memory.NewTagStore(),
		Audit:    auditLog,
		Logger:   logger,
	})
	f.engine = NewEngine(f.rules, f.tickets, NewEvaluator(logger), executor,
		auditLog, observability.NewMetrics(), logger)
	return f
}

func (f *engineFixture) seedTicket(t *testing.T, ticket domain.Ticket) string {
	t.Helper()
	if err := f.tickets.Create(context.Background(), &ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket.ID
}

func TestEngineSnapshotFoldsAcrossRules(t *testing.T) {
	// Rule A (priority 1) raises the priority; rule B (priority 2) only
	// fires for HIGH tickets. B must observe A's write within the same run.
	f := newEngineFixture(t,
		domain.Automation{
			ID: "a", Name: "escalate", IsActive: true,
			Trigger: domain.TriggerTicketCreated, Priority: 1,
			Actions: []domain.Action{{Kind: domain.ActionSetPriority, Value: "HIGH"}},
		},
		domain.Automation{
			ID: "b", Name: "flag high", IsActive: true,
			Trigger: domain.TriggerTicketCreated, Priority: 2,
			Conditions: []domain.Condition{{Field: domain.FieldPriority, Operator: domain.OpEquals, Value: "HIGH"}},
			Actions:    []domain.Action{{Kind: domain.ActionSetStatus, Value: "PENDING"}},
		},
	)
	id := f.seedTicket(t, domain.Ticket{Number: 7, Priority: domain.TicketPriorityMedium, Status: domain.TicketStatusOpen})

	result, err := f.engine.OnTicketCreated(context.Background(), id)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ActionsExecuted != 2 {
		t.Fatalf("expected 2 actions, got %d (errors: %v)", result.ActionsExecuted, result.Errors)
	}

	stored, _ := f.tickets.GetByID(context.Background(), id)
	if stored.Priority != domain.TicketPriorityHigh || stored.Status != domain.TicketStatusPending {
		t.Fatalf("chained rules not applied: %+v", stored)
	}
}

func TestEngineRuleOrderByPriority(t *testing.T) {
	// Both rules set the status; the higher Priority value runs last and wins.
	f := newEngineFixture(t,
		domain.Automation{
			ID: "late", Name: "late", IsActive: true,
			Trigger: domain.TriggerTicketCreated, Priority: 10,
			Actions: []domain.Action{{Kind: domain.ActionSetStatus, Value: "CLOSED"}},
		},
		domain.Automation{
			ID: "early", Name: "early", IsActive: true,
			Trigger: domain.TriggerTicketCreated, Priority: 1,
			Actions: []domain.Action{{Kind: domain.ActionSetStatus, Value: "PENDING"}},
		},
	)
	id := f.seedTicket(t, domain.Ticket{Number: 8, Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow})

	if _, err := f.engine.OnTicketCreated(context.Background(), id); err != nil {
		t.Fatalf("run: %v", err)
	}
	stored, _ := f.tickets.GetByID(context.Background(), id)
	if stored.Status != domain.TicketStatusClosed {
		t.Fatalf("expected the priority-10 rule to run last, got status %s", stored.Status)
	}
}

func TestEngineActionErrorIsolation(t *testing.T) {
	f := newEngineFixture(t,
		domain.Automation{
			ID: "r", Name: "mixed", IsActive: true,
			Trigger: domain.TriggerTicketCreated, Priority: 1,
			Actions: []domain.Action{
				{Kind: "BOGUS"},
				{Kind: domain.ActionSetPriority, Value: "URGENT"},
			},
		},
	)
	id := f.seedTicket(t, domain.Ticket{Number: 9, Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow})

	result, err := f.engine.OnTicketCreated(context.Background(), id)
	if err != nil {
		t.Fatalf("run must not fail as a whole: %v", err)
	}
	if result.ActionsExecuted != 1 || len(result.Errors) != 1 {
		t.Fatalf("expected 1 success and 1 error, got %+v", result)
	}

	stored, _ := f.tickets.GetByID(context.Background(), id)
	if stored.Priority != domain.TicketPriorityUrgent {
		t.Fatalf("sibling action should still apply, got %s", stored.Priority)
	}
}

func TestEnginePreviousSnapshotStaysPinned(t *testing.T) {
	// Rule A changes the status. Rule B's status_changed condition must be
	// judged against the pre-run snapshot, so it fires because of the
	// caller's mutation, not rule A's.
	f := newEngineFixture(t,
		domain.Automation{
			ID: "a", Name: "pend", IsActive: true,
			Trigger: domain.TriggerTicketUpdated, Priority: 1,
			Actions: []domain.Action{{Kind: domain.ActionSetStatus, Value: "PENDING"}},
		},
		domain.Automation{
			ID: "b", Name: "on change", IsActive: true,
			Trigger: domain.TriggerTicketUpdated, Priority: 2,
			Conditions: []domain.Condition{{Field: domain.FieldStatusChanged}},
			Actions:    []domain.Action{{Kind: domain.ActionSetPriority, Value: "HIGH"}},
		},
	)
	id := f.seedTicket(t, domain.Ticket{Number: 10, Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow})
	previous := domain.Ticket{Number: 10, Status: domain.TicketStatusClosed, Priority: domain.TicketPriorityLow}

	result, err := f.engine.OnTicketUpdated(context.Background(), id, previous)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ActionsExecuted != 2 {
		t.Fatalf("expected both rules to act, got %+v", result)
	}
}

func TestEngineSkipsInactiveAndWrongTrigger(t *testing.T) {
	f := newEngineFixture(t,
		domain.Automation{
			ID: "off", Name: "off", IsActive: false,
			Trigger: domain.TriggerTicketCreated, Priority: 1,
			Actions: []domain.Action{{Kind: domain.ActionSetStatus, Value: "CLOSED"}},
		},
		domain.Automation{
			ID: "upd", Name: "upd", IsActive: true,
			Trigger: domain.TriggerTicketUpdated, Priority: 1,
			Actions: []domain.Action{{Kind: domain.ActionSetStatus, Value: "CLOSED"}},
		},
	)
	id := f.seedTicket(t, domain.Ticket{Number: 11, Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow})

	result, err := f.engine.OnTicketCreated(context.Background(), id)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ActionsExecuted != 0 {
		t.Fatalf("no rule should fire, got %+v", result)
	}
}

func TestEngineRecordsOneActivityEntryPerFiredRule(t *testing.T) {
	f := newEngineFixture(t,
		domain.Automation{
			ID: "a", Name: "first", IsActive: true,
			Trigger: domain.TriggerTicketCreated, Priority: 1,
			Actions: []domain.Action{
				{Kind: domain.ActionSetPriority, Value: "HIGH"},
				{Kind: domain.ActionSetStatus, Value: "PENDING"},
			},
		},
		domain.Automation{
			ID: "b", Name: "second", IsActive: true,
			Trigger: domain.TriggerTicketCreated, Priority: 2,
			Actions: []domain.Action{{Kind: domain.ActionAddTag, Value: "auto"}},
		},
	)
	id := f.seedTicket(t, domain.Ticket{Number: 12, Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow})

	if _, err := f.engine.OnTicketCreated(context.Background(), id); err != nil {
		t.Fatalf("run: %v", err)
	}

	var fired int
	for _, entry := range f.audit.All() {
		if entry.Operation == "rule_fired" {
			fired++
		}
	}
	if fired != 2 {
		t.Fatalf("expected one rule_fired entry per rule, got %d", fired)
	}
}

func TestEngineMissingTicketIsHardError(t *testing.T) {
	f := newEngineFixture(t)
	if _, err := f.engine.OnTicketCreated(context.Background(), "no-such-id"); err == nil {
		t.Fatalf("missing ticket must return a hard error")
	}
}
