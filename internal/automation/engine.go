package automation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/activity"
	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/observability"
	"github.com/spec-kit/helpdesk-core/internal/repository"
)

// RunResult summarizes one automation run. Callers use it for logging and
// operator-facing summaries only; nothing branches on it.
type RunResult struct {
	ActionsExecuted int
	Applied         []string
	Errors          []string
}

// Engine orchestrates rule evaluation and action execution for ticket
// lifecycle events. A run never fails as a whole: per-rule and per-action
// errors are logged with identifying context and processing continues.
type Engine struct {
	rules     repository.AutomationRepository
	tickets   repository.TicketRepository
	evaluator *Evaluator
	executor  *Executor
	audit     *activity.Logger
	metrics   *observability.Metrics
	log       *zap.Logger
}

// NewEngine constructs the engine.
func NewEngine(rules repository.AutomationRepository, tickets repository.TicketRepository, evaluator *Evaluator, executor *Executor, audit *activity.Logger, metrics *observability.Metrics, log *zap.Logger) *Engine {
	return &Engine{
		rules:     rules,
		tickets:   tickets,
		evaluator: evaluator,
		executor:  executor,
		audit:     audit,
		metrics:   metrics,
		log:       log,
	}
}

// OnTicketCreated runs TICKET_CREATED automations for a freshly created
// ticket. A missing ticket id is a programmer error and returns hard.
func (e *Engine) OnTicketCreated(ctx context.Context, ticketID string) (*RunResult, error) {
	ticket, err := e.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket %s: %w", ticketID, err)
	}
	result := e.run(ctx, domain.TriggerTicketCreated, *ticket, nil)
	return &result, nil
}

// OnTicketUpdated runs TICKET_UPDATED automations. previous is the snapshot
// from before the mutation, used by change-detection conditions; it stays
// fixed for the whole run.
func (e *Engine) OnTicketUpdated(ctx context.Context, ticketID string, previous domain.Ticket) (*RunResult, error) {
	ticket, err := e.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket %s: %w", ticketID, err)
	}
	result := e.run(ctx, domain.TriggerTicketUpdated, *ticket, &previous)
	return &result, nil
}

func (e *Engine) run(ctx context.Context, trigger domain.AutomationTrigger, current domain.Ticket, previous *domain.Ticket) RunResult {
	started := time.Now()
	var result RunResult

	rules, err := e.rules.ListActiveByTrigger(ctx, trigger)
	if err != nil {
		e.log.Error("failed to load automations",
			zap.String("trigger", string(trigger)), zap.Error(err))
		result.Errors = append(result.Errors, fmt.Sprintf("load automations: %v", err))
		return result
	}
	if len(rules) == 0 {
		e.log.Debug("no active automations for trigger", zap.String("trigger", string(trigger)))
		return result
	}

	// The snapshot folds forward through each rule's patches so that rule
	// N+1 observes rule N's writes. previous stays pinned to pre-run state.
	snapshot := current
	for _, rule := range rules {
		if !e.evaluator.Evaluate(rule.Conditions, snapshot, previous) {
			continue
		}

		var applied []string
		for _, action := range rule.Actions {
			res, err := e.executor.Execute(ctx, action, snapshot)
			if err != nil {
				e.log.Warn("automation action failed",
					zap.String("rule", rule.Name),
					zap.String("action", string(action.Kind)),
					zap.Error(err))
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s/%s: %v", rule.Name, action.Kind, err))
				continue
			}
			snapshot = res.Patch.Apply(snapshot)
			result.ActionsExecuted++
			applied = append(applied, res.Description)
			result.Applied = append(result.Applied, rule.Name+": "+res.Description)
		}

		if len(applied) > 0 {
			e.audit.Info(ctx, nil, activity.ChannelAutomation, "rule_fired",
				fmt.Sprintf("automation %q fired on ticket #%d", rule.Name, snapshot.Number),
				map[string]any{
					"rule_id":   rule.ID,
					"ticket_id": snapshot.ID,
					"trigger":   string(trigger),
					"applied":   applied,
				}, time.Since(started))
		}
	}

	e.metrics.RecordAutomationRun(string(trigger), result.ActionsExecuted)
	return result
}
