package domain

import (
	"encoding/json"
	"time"
)

// AutomationTrigger selects which lifecycle event a rule reacts to.
type AutomationTrigger string

const (
	TriggerTicketCreated AutomationTrigger = "TICKET_CREATED"
	TriggerTicketUpdated AutomationTrigger = "TICKET_UPDATED"
)

// ConditionField names a ticket attribute a condition inspects. Fields not
// in the known set decode to their raw string and evaluate false downstream.
type ConditionField string

const (
	FieldStatus      ConditionField = "status"
	FieldPriority    ConditionField = "priority"
	FieldAssigneeID  ConditionField = "assigneeId"
	FieldGroupID     ConditionField = "groupId"
	FieldSubject     ConditionField = "subject"
	FieldDescription ConditionField = "description"
	FieldSource      ConditionField = "source"
	FieldContactID   ConditionField = "contactId"

	FieldStatusChanged   ConditionField = "status_changed"
	FieldPriorityChanged ConditionField = "priority_changed"
	FieldAssigneeChanged ConditionField = "assignee_changed"
)

// ConditionOperator is the comparison applied to a value field.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpNotContains ConditionOperator = "not_contains"
	OpStartsWith  ConditionOperator = "starts_with"
	OpEndsWith    ConditionOperator = "ends_with"
	OpIsEmpty     ConditionOperator = "is_empty"
	OpIsNotEmpty  ConditionOperator = "is_not_empty"
)

// Condition is one clause of a rule; a rule fires only when every clause
// holds (logical AND, no OR support).
type Condition struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
}

// ActionKind identifies what an automation action does to a ticket.
type ActionKind string

const (
	ActionSetStatus         ActionKind = "SET_STATUS"
	ActionSetPriority       ActionKind = "SET_PRIORITY"
	ActionAssignAgent       ActionKind = "ASSIGN_AGENT"
	ActionAssignGroup       ActionKind = "ASSIGN_GROUP"
	ActionAddTag            ActionKind = "ADD_TAG"
	ActionRemoveTag         ActionKind = "REMOVE_TAG"
	ActionAddNote           ActionKind = "ADD_NOTE"
	ActionSendEmail         ActionKind = "SEND_EMAIL"
	ActionTriggerAIAnalysis ActionKind = "TRIGGER_AI_ANALYSIS"
)

// Action is one step of a rule's action list.
type Action struct {
	Kind  ActionKind `json:"type"`
	Value string     `json:"value"`
}

// Automation is an operator-configured rule: a trigger, an ordered AND-set
// of conditions and an ordered action list. Rules are read-only from the
// engine's perspective during a run.
type Automation struct {
	ID         string
	Name       string
	IsActive   bool
	Trigger    AutomationTrigger
	Priority   int
	Conditions []Condition
	Actions    []Action
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DecodeConditions parses the stored JSON condition list. Unrecognized
// fields or operators are kept verbatim rather than coerced; the evaluator
// treats them as non-matching and reports a diagnostic.
func DecodeConditions(raw []byte) ([]Condition, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var conditions []Condition
	if err := json.Unmarshal(raw, &conditions); err != nil {
		return nil, err
	}
	return conditions, nil
}

// DecodeActions parses the stored JSON action list.
func DecodeActions(raw []byte) ([]Action, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var actions []Action
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}
