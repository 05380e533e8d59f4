package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/piazza-crm/leadflow/pkg/eventbus"
	"github.com/piazza-crm/leadflow/pkg/events"
	"github.com/piazza-crm/leadflow/pkg/mail"
	"github.com/piazza-crm/leadflow/pkg/otelhelper"
	"github.com/piazza-crm/leadflow/pkg/persistence"
	"github.com/piazza-crm/leadflow/pkg/services"
	"github.com/piazza-crm/leadflow/pkg/workflow"
)

// Automator subscribes to lead.created events and runs the saved workflow
// against each new lead.
type Automator struct {
	logger    *slog.Logger
	eventBus  eventbus.EventBus
	workflows *services.Workflows
}

func NewAutomator(
	logger *slog.Logger,
	p persistence.Persistence,
	eventBus eventbus.EventBus,
	transport mail.Transport,
	pacing time.Duration,
) *Automator {
	executor := workflow.NewExecutor(logger, p.LeadRepository(), transport, eventBus).
		WithPacing(pacing)

	if tracer, err := otelhelper.NewTracer(context.Background(), "leadflow-automator"); err == nil {
		executor.WithTracer(tracer)
	} else {
		logger.Warn("Tracing disabled", "error", err)
	}

	return &Automator{
		logger:    logger,
		eventBus:  eventBus,
		workflows: services.NewWorkflows(p, executor, logger),
	}
}

// Start subscribes and blocks until the process is signalled or the context
// is cancelled.
func (a *Automator) Start(ctx context.Context) error {
	err := a.eventBus.Handle(events.LeadCreatedEvent, a.handleLeadCreated)
	if err != nil {
		return fmt.Errorf("failed to register lead.created handler: %w", err)
	}

	err = a.eventBus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	a.logger.InfoContext(ctx, "Automator started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		a.logger.Info("Shutting down automator")
	case <-ctx.Done():
	}

	return nil
}

func (a *Automator) handleLeadCreated(ctx context.Context, event any) error {
	created, ok := event.(*events.LeadCreated)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", events.LeadCreatedEvent)
	}

	logger := a.logger.With("lead_id", created.Lead.ID)
	logger.InfoContext(ctx, "Lead created, running workflow")

	execution, err := a.workflows.RunForLead(ctx, created.Lead.ID, nil)
	if err != nil {
		if services.IsValidationError(err) {
			logger.InfoContext(ctx, "No workflow to run", "reason", err)

			return nil
		}

		return fmt.Errorf("failed to run workflow for lead %s: %w", created.Lead.ID, err)
	}

	logger.InfoContext(ctx, "Workflow finished",
		"execution_id", execution.ID,
		"status", execution.Status,
		"results", len(execution.Results))

	return nil
}
