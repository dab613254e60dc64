package automation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/activity"
	"github.com/spec-kit/helpdesk-core/internal/ai"
	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/repository"
)

// Notifier delivers outbound ticket email. Implementations must not block
// on delivery; send failures surface through their own logging, never to
// the automation run.
type Notifier interface {
	EnqueueTicketEmail(ctx context.Context, ticket domain.Ticket, body string)
}

// ActionResult describes one applied action: a human-readable effect line
// and the partial-ticket patch later rules must observe.
type ActionResult struct {
	Description string
	Patch       domain.TicketPatch
}

// Executor applies a single automation action to a ticket.
type Executor struct {
	tickets  repository.TicketRepository
	messages repository.TicketMessageRepository
	tags     repository.TagRepository
	agents   repository.AgentRepository
	groups   repository.GroupRepository
	notifier Notifier
	assist   ai.Adapter
	audit    *activity.Logger
	log      *zap.Logger
}

// ExecutorDependencies bundles collaborators for the executor.
type ExecutorDependencies struct {
	Tickets  repository.TicketRepository
	Messages repository.TicketMessageRepository
	Tags     repository.TagRepository
	Agents   repository.AgentRepository
	Groups   repository.GroupRepository
	Notifier Notifier
	Assist   ai.Adapter
	Audit    *activity.Logger
	Logger   *zap.Logger
}

// NewExecutor constructs the executor.
func NewExecutor(deps ExecutorDependencies) *Executor {
	return &Executor{
		tickets:  deps.Tickets,
		messages: deps.Messages,
		tags:     deps.Tags,
		agents:   deps.Agents,
		groups:   deps.Groups,
		notifier: deps.Notifier,
		assist:   deps.Assist,
		audit:    deps.Audit,
		log:      deps.Logger,
	}
}

// Execute applies one action against the given snapshot. An error means
// this one action failed; the caller continues with sibling actions.
func (x *Executor) Execute(ctx context.Context, action domain.Action, ticket domain.Ticket) (ActionResult, error) {
	switch action.Kind {
	case domain.ActionSetStatus:
		return x.setStatus(ctx, action.Value, ticket)
	case domain.ActionSetPriority:
		return x.setPriority(ctx, action.Value, ticket)
	case domain.ActionAssignAgent:
		return x.assignAgent(ctx, action.Value, ticket)
	case domain.ActionAssignGroup:
		return x.assignGroup(ctx, action.Value, ticket)
	case domain.ActionAddTag:
		return x.addTag(ctx, action.Value, ticket)
	case domain.ActionRemoveTag:
		return x.removeTag(ctx, action.Value, ticket)
	case domain.ActionAddNote:
		return x.addNote(ctx, action.Value, ticket)
	case domain.ActionSendEmail:
		return x.sendEmail(ctx, action.Value, ticket)
	case domain.ActionTriggerAIAnalysis:
		return x.triggerAIAnalysis(ctx, ticket)
	default:
		return ActionResult{}, fmt.Errorf("unknown action kind %q", action.Kind)
	}
}

func (x *Executor) setStatus(ctx context.Context, value string, ticket domain.Ticket) (ActionResult, error) {
	status := domain.TicketStatus(value)
	patch := domain.TicketPatch{Status: &status}
	if err := x.persist(ctx, ticket, patch); err != nil {
		return ActionResult{}, err
	}
	return ActionResult{
		Description: fmt.Sprintf("status set to %s", status),
		Patch:       patch,
	}, nil
}

func (x *Executor) setPriority(ctx context.Context, value string, ticket domain.Ticket) (ActionResult, error) {
	priority := domain.TicketPriority(value)
	patch := domain.TicketPatch{Priority: &priority}
	if err := x.persist(ctx, ticket, patch); err != nil {
		return ActionResult{}, err
	}
	return ActionResult{
		Description: fmt.Sprintf("priority set to %s", priority),
		Patch:       patch,
	}, nil
}

func (x *Executor) assignAgent(ctx context.Context, value string, ticket domain.Ticket) (ActionResult, error) {
	patch := domain.TicketPatch{SetAssignee: true}
	name := "Unassigned"
	if value = strings.TrimSpace(value); value != "" {
		patch.AssigneeID = &value
		if agent, err := x.agents.GetByID(ctx, value); err == nil {
			name = agent.Name
		}
	}
	if err := x.persist(ctx, ticket, patch); err != nil {
		return ActionResult{}, err
	}
	return ActionResult{
		Description: fmt.Sprintf("assigned to %s", name),
		Patch:       patch,
	}, nil
}

func (x *Executor) assignGroup(ctx context.Context, value string, ticket domain.Ticket) (ActionResult, error) {
	patch := domain.TicketPatch{SetGroup: true}
	name := "None"
	if value = strings.TrimSpace(value); value != "" {
		patch.GroupID = &value
		if group, err := x.groups.GetByID(ctx, value); err == nil {
			name = group.Name
		}
	}
	if err := x.persist(ctx, ticket, patch); err != nil {
		return ActionResult{}, err
	}
	return ActionResult{
		Description: fmt.Sprintf("moved to group %s", name),
		Patch:       patch,
	}, nil
}

func (x *Executor) addTag(ctx context.Context, name string, ticket domain.Ticket) (ActionResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ActionResult{}, fmt.Errorf("ADD_TAG requires a tag name")
	}
	tag, err := x.tags.GetByName(ctx, name)
	if err != nil {
		tag = &domain.Tag{Name: name}
		if err := x.tags.Create(ctx, tag); err != nil {
			return ActionResult{}, fmt.Errorf("create tag %q: %w", name, err)
		}
	}
	if err := x.tags.AttachToTicket(ctx, ticket.ID, tag.ID); err != nil {
		return ActionResult{}, fmt.Errorf("attach tag %q: %w", name, err)
	}
	return ActionResult{Description: fmt.Sprintf("added tag %q", name)}, nil
}

func (x *Executor) removeTag(ctx context.Context, name string, ticket domain.Ticket) (ActionResult, error) {
	name = strings.TrimSpace(name)
	tag, err := x.tags.GetByName(ctx, name)
	if err != nil {
		// Removing a tag that does not exist is a no-op.
		return ActionResult{Description: fmt.Sprintf("tag %q not present", name)}, nil
	}
	if err := x.tags.DetachFromTicket(ctx, ticket.ID, tag.ID); err != nil {
		return ActionResult{}, fmt.Errorf("detach tag %q: %w", name, err)
	}
	return ActionResult{Description: fmt.Sprintf("removed tag %q", name)}, nil
}

func (x *Executor) addNote(ctx context.Context, body string, ticket domain.Ticket) (ActionResult, error) {
	msg := &domain.TicketMessage{
		TicketID:   ticket.ID,
		Body:       body,
		Internal:   true,
		AuthorType: domain.AuthorTypeSystem,
	}
	if err := x.messages.Create(ctx, msg); err != nil {
		return ActionResult{}, fmt.Errorf("add note: %w", err)
	}
	return ActionResult{Description: "added internal note"}, nil
}

func (x *Executor) sendEmail(ctx context.Context, body string, ticket domain.Ticket) (ActionResult, error) {
	if x.notifier == nil {
		return ActionResult{}, fmt.Errorf("no notifier configured")
	}
	x.notifier.EnqueueTicketEmail(ctx, ticket, body)
	return ActionResult{Description: "queued email notification"}, nil
}

func (x *Executor) triggerAIAnalysis(ctx context.Context, ticket domain.Ticket) (ActionResult, error) {
	if x.assist == nil {
		return ActionResult{}, fmt.Errorf("no AI adapter configured")
	}
	thread, err := x.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return ActionResult{}, fmt.Errorf("load thread: %w", err)
	}
	reply, err := x.assist.GenerateReply(ctx, ticket, thread)
	if err != nil {
		return ActionResult{}, fmt.Errorf("ai analysis: %w", err)
	}
	note := &domain.TicketMessage{
		TicketID:   ticket.ID,
		Body:       reply.Text,
		Internal:   true,
		AuthorType: domain.AuthorTypeSystem,
	}
	if err := x.messages.Create(ctx, note); err != nil {
		return ActionResult{}, fmt.Errorf("store analysis note: %w", err)
	}
	// Confidence and reasoning are recorded, not interpreted.
	x.audit.Info(ctx, nil, activity.ChannelAutomation, "ai_analysis",
		fmt.Sprintf("AI analysis stored for ticket #%d", ticket.Number),
		map[string]any{
			"ticket_id":  ticket.ID,
			"confidence": reply.Confidence,
			"reasoning":  reply.Reasoning,
		}, 0)
	return ActionResult{Description: "triggered AI analysis"}, nil
}

// persist writes a patched copy of the snapshot through the repository.
func (x *Executor) persist(ctx context.Context, ticket domain.Ticket, patch domain.TicketPatch) error {
	updated := patch.Apply(ticket)
	return x.tickets.Update(ctx, &updated)
}
