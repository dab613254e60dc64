package automation

import (
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestEvaluateEmptyConditionListMatches(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	if !e.Evaluate(nil, domain.Ticket{Status: domain.TicketStatusOpen}, nil) {
		t.Fatalf("empty condition list should always match")
	}
}

func TestEvaluateAndSemantics(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	ticket := domain.Ticket{
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityHigh,
	}

	conditions := []domain.Condition{
		{Field: domain.FieldStatus, Operator: domain.OpEquals, Value: "OPEN"},
		{Field: domain.FieldPriority, Operator: domain.OpEquals, Value: "HIGH"},
	}
	if !e.Evaluate(conditions, ticket, nil) {
		t.Fatalf("both conditions hold, expected match")
	}

	conditions[1].Value = "LOW"
	if e.Evaluate(conditions, ticket, nil) {
		t.Fatalf("one failing condition should fail the whole list")
	}
}

func TestEvaluateOperators(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	ticket := domain.Ticket{
		Subject:    "URGENT: server down",
		Status:     domain.TicketStatusOpen,
		AssigneeID: nil,
		GroupID:    strPtr("g-1"),
	}

	tests := []struct {
		name      string
		condition domain.Condition
		want      bool
	}{
		{"equals exact", domain.Condition{Field: domain.FieldStatus, Operator: domain.OpEquals, Value: "OPEN"}, true},
		{"equals is case sensitive", domain.Condition{Field: domain.FieldStatus, Operator: domain.OpEquals, Value: "open"}, false},
		{"not_equals", domain.Condition{Field: domain.FieldStatus, Operator: domain.OpNotEquals, Value: "CLOSED"}, true},
		{"contains ignores case", domain.Condition{Field: domain.FieldSubject, Operator: domain.OpContains, Value: "server"}, true},
		{"not_contains", domain.Condition{Field: domain.FieldSubject, Operator: domain.OpNotContains, Value: "billing"}, true},
		{"starts_with ignores case", domain.Condition{Field: domain.FieldSubject, Operator: domain.OpStartsWith, Value: "urgent"}, true},
		{"ends_with ignores case", domain.Condition{Field: domain.FieldSubject, Operator: domain.OpEndsWith, Value: "DOWN"}, true},
		{"is_empty on nil assignee", domain.Condition{Field: domain.FieldAssigneeID, Operator: domain.OpIsEmpty}, true},
		{"is_not_empty on set group", domain.Condition{Field: domain.FieldGroupID, Operator: domain.OpIsNotEmpty}, true},
		{"is_not_empty on nil assignee", domain.Condition{Field: domain.FieldAssigneeID, Operator: domain.OpIsNotEmpty}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate([]domain.Condition{tt.condition}, ticket, nil)
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateAbsentFieldNeverMatchesValue(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	ticket := domain.Ticket{AssigneeID: nil}

	// A null assignee must not match a concrete value under any operator,
	// including negated ones.
	for _, op := range []domain.ConditionOperator{
		domain.OpEquals, domain.OpNotEquals, domain.OpContains,
		domain.OpNotContains, domain.OpStartsWith, domain.OpEndsWith,
	} {
		condition := domain.Condition{Field: domain.FieldAssigneeID, Operator: op, Value: "agent-1"}
		if e.Evaluate([]domain.Condition{condition}, ticket, nil) {
			t.Fatalf("operator %s matched a concrete value against an absent field", op)
		}
	}
}

func TestEvaluateChangeFields(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	current := domain.Ticket{
		Status:     domain.TicketStatusResolved,
		Priority:   domain.TicketPriorityHigh,
		AssigneeID: strPtr("agent-1"),
	}
	previous := domain.Ticket{
		Status:     domain.TicketStatusOpen,
		Priority:   domain.TicketPriorityHigh,
		AssigneeID: nil,
	}

	statusChanged := []domain.Condition{{Field: domain.FieldStatusChanged}}
	if !e.Evaluate(statusChanged, current, &previous) {
		t.Fatalf("status OPEN->RESOLVED should count as changed")
	}

	priorityChanged := []domain.Condition{{Field: domain.FieldPriorityChanged}}
	if e.Evaluate(priorityChanged, current, &previous) {
		t.Fatalf("priority did not change")
	}

	assigneeChanged := []domain.Condition{{Field: domain.FieldAssigneeChanged}}
	if !e.Evaluate(assigneeChanged, current, &previous) {
		t.Fatalf("nil -> agent-1 should count as assignee change")
	}

	// Without a previous snapshot every change field is false.
	if e.Evaluate(statusChanged, current, nil) {
		t.Fatalf("change field must be false when no previous snapshot exists")
	}
}

func TestEvaluateUnknownFieldAndOperator(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	ticket := domain.Ticket{Status: domain.TicketStatusOpen}

	unknownField := []domain.Condition{{Field: "reporter_mood", Operator: domain.OpEquals, Value: "x"}}
	if e.Evaluate(unknownField, ticket, nil) {
		t.Fatalf("unknown field must evaluate false")
	}

	unknownOp := []domain.Condition{{Field: domain.FieldStatus, Operator: "approximately", Value: "OPEN"}}
	if e.Evaluate(unknownOp, ticket, nil) {
		t.Fatalf("unknown operator must evaluate false")
	}
}
