// Package automation implements the rule engine: condition evaluation,
// action execution and run orchestration over ticket lifecycle events.
package automation

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// Evaluator decides whether a rule's conditions hold for a ticket snapshot.
// It performs no I/O and never panics on malformed rules; an unknown field
// or operator evaluates false with a diagnostic so one bad rule cannot take
// down automation for the whole system.
type Evaluator struct {
	log *zap.Logger
}

// NewEvaluator builds an Evaluator.
func NewEvaluator(log *zap.Logger) *Evaluator {
	return &Evaluator{log: log}
}

// Evaluate returns true iff every condition holds (logical AND). An empty
// condition list always matches: the rule fires unconditionally. previous
// carries the pre-run snapshot for change-detection fields; it is nil on
// creation triggers, where change fields always evaluate false.
func (e *Evaluator) Evaluate(conditions []domain.Condition, current domain.Ticket, previous *domain.Ticket) bool {
	for _, condition := range conditions {
		if !e.evaluateOne(condition, current, previous) {
			return false
		}
	}
	return true
}

func (e *Evaluator) evaluateOne(condition domain.Condition, current domain.Ticket, previous *domain.Ticket) bool {
	switch condition.Field {
	case domain.FieldStatusChanged:
		return previous != nil && previous.Status != current.Status
	case domain.FieldPriorityChanged:
		return previous != nil && previous.Priority != current.Priority
	case domain.FieldAssigneeChanged:
		return previous != nil && !equalPtr(previous.AssigneeID, current.AssigneeID)
	}

	raw, absent, known := resolveField(condition.Field, current)
	if !known {
		e.log.Warn("automation condition references unknown field",
			zap.String("field", string(condition.Field)))
		return false
	}
	return e.compare(condition, raw, absent)
}

func (e *Evaluator) compare(condition domain.Condition, raw string, absent bool) bool {
	switch condition.Operator {
	case domain.OpIsEmpty:
		return raw == ""
	case domain.OpIsNotEmpty:
		return raw != ""
	}

	// Absent fields never match a concrete value, not even via not_equals.
	if absent && condition.Value != "" {
		return false
	}

	lowerRaw := strings.ToLower(raw)
	lowerValue := strings.ToLower(condition.Value)

	switch condition.Operator {
	case domain.OpEquals:
		return raw == condition.Value
	case domain.OpNotEquals:
		return raw != condition.Value
	case domain.OpContains:
		return strings.Contains(lowerRaw, lowerValue)
	case domain.OpNotContains:
		return !strings.Contains(lowerRaw, lowerValue)
	case domain.OpStartsWith:
		return strings.HasPrefix(lowerRaw, lowerValue)
	case domain.OpEndsWith:
		return strings.HasSuffix(lowerRaw, lowerValue)
	default:
		e.log.Warn("automation condition uses unknown operator",
			zap.String("operator", string(condition.Operator)))
		return false
	}
}

// resolveField maps a value field to its string representation. absent is
// true when the underlying attribute is a null foreign key.
func resolveField(field domain.ConditionField, t domain.Ticket) (raw string, absent, known bool) {
	switch field {
	case domain.FieldStatus:
		return string(t.Status), false, true
	case domain.FieldPriority:
		return string(t.Priority), false, true
	case domain.FieldSubject:
		return t.Subject, false, true
	case domain.FieldDescription:
		return t.Description, false, true
	case domain.FieldSource:
		return string(t.Source), false, true
	case domain.FieldAssigneeID:
		return derefOrEmpty(t.AssigneeID), t.AssigneeID == nil, true
	case domain.FieldGroupID:
		return derefOrEmpty(t.GroupID), t.GroupID == nil, true
	case domain.FieldContactID:
		return derefOrEmpty(t.ContactID), t.ContactID == nil, true
	default:
		return "", false, false
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
