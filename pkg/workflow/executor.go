package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/piazza-crm/leadflow/pkg/eventbus"
	"github.com/piazza-crm/leadflow/pkg/events"
	"github.com/piazza-crm/leadflow/pkg/mail"
	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/otelhelper"
	"github.com/piazza-crm/leadflow/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoActions is returned when an execution is requested with an empty
// action list. No execution record is created.
var ErrNoActions = errors.New("workflow has no executable actions")

// ProgressFunc observes execution progress. Callbacks are best-effort: a
// caller that stops observing does not affect the run.
type ProgressFunc func(progress int, message string)

// Executor runs extracted actions against a lead, one action at a time, and
// records every run in an in-memory history. Executions targeting the same
// lead are serialized; different leads may run concurrently.
type Executor struct {
	logger    *slog.Logger
	leads     persistence.LeadRepository
	transport mail.Transport
	publisher eventbus.EventPublisher
	tracer    trace.Tracer

	// pacing is the settling delay between actions. It exists to make
	// progress visible to a human observer and carries no correctness
	// requirement; tests leave it at zero.
	pacing time.Duration

	historyMu sync.Mutex
	history   []*models.WorkflowExecution

	leadLocksMu sync.Mutex
	leadLocks   map[string]*sync.Mutex
}

// NewExecutor creates a new executor. Pacing defaults to zero and tracing is
// disabled until configured.
func NewExecutor(
	logger *slog.Logger,
	leads persistence.LeadRepository,
	transport mail.Transport,
	publisher eventbus.EventPublisher,
) *Executor {
	return &Executor{
		logger:    logger.With("module", "workflow_executor"),
		leads:     leads,
		transport: transport,
		publisher: publisher,
		leadLocks: make(map[string]*sync.Mutex),
	}
}

// WithPacing sets the inter-action settling delay.
func (e *Executor) WithPacing(pacing time.Duration) *Executor {
	e.pacing = pacing

	return e
}

// WithTracer enables span emission for executions and actions.
func (e *Executor) WithTracer(tracer trace.Tracer) *Executor {
	e.tracer = tracer

	return e
}

// ExecuteForLead runs the given actions against the lead, in order. The
// returned execution is recorded in history before the first action runs.
//
// Individual action failures are downgraded to failed results and the run
// continues; only a failure of the loop itself (cancellation, panic) marks
// the whole execution failed, and even then the error is reported through
// the execution record rather than the return value.
func (e *Executor) ExecuteForLead(
	ctx context.Context,
	leadID string,
	actions []models.WorkflowAction,
	onProgress ProgressFunc,
) (*models.WorkflowExecution, error) {
	if len(actions) == 0 {
		return nil, ErrNoActions
	}

	lead, err := e.leads.LeadByID(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lead %s: %w", leadID, err)
	}

	unlock := e.lockLead(leadID)
	defer unlock()

	execution := &models.WorkflowExecution{
		ID:        generateExecutionID(),
		LeadID:    lead.ID,
		LeadName:  lead.Name,
		Actions:   actions,
		Status:    models.ExecutionStatusRunning,
		Progress:  0,
		Results:   make([]models.WorkflowResult, 0, len(actions)),
		StartedAt: time.Now().UTC(),
	}

	e.record(execution)

	logger := e.logger.With("execution_id", execution.ID, "lead_id", lead.ID)
	logger.Info("Starting workflow execution", "actions", len(actions))

	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
			attribute.String(otelhelper.ExecutionIDKey, execution.ID),
			attribute.String(otelhelper.LeadIDKey, lead.ID))
		defer span.End()
	}

	notify(onProgress, 0, "Starting workflow for "+lead.Name)

	runErr := e.runActions(ctx, execution, lead, onProgress)

	now := time.Now().UTC()

	e.historyMu.Lock()
	execution.CompletedAt = &now

	if runErr != nil {
		execution.Status = models.ExecutionStatusFailed
		execution.Results = append(execution.Results, models.WorkflowResult{
			ActionID:  "error",
			Kind:      models.KindError,
			Label:     "Execution error",
			Status:    models.ResultStatusFailed,
			Message:   runErr.Error(),
			Timestamp: now,
		})
	} else {
		execution.Status = models.ExecutionStatusCompleted
		execution.Progress = 100
	}
	e.historyMu.Unlock()

	if runErr != nil {
		logger.Error("Workflow execution failed", "error", runErr)
		notify(onProgress, execution.Progress, "Workflow failed: "+runErr.Error())
		e.publish(ctx, execution.LeadID, events.WorkflowExecutionFailed{
			BaseEvent: events.NewBaseEvent(events.WorkflowExecutionFailedEvent),
			Execution: execution,
			Error:     runErr.Error(),
		})

		return execution, nil
	}

	logger.Info("Workflow execution completed", "results", len(execution.Results))
	notify(onProgress, 100, "Workflow completed for "+lead.Name)
	e.publish(ctx, execution.LeadID, events.WorkflowExecutionCompleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowExecutionCompletedEvent),
		Execution: execution,
	})

	return execution, nil
}

// runActions drives the action loop. A panic from a handler is converted to
// an error so the execution record, not the process, absorbs it.
func (e *Executor) runActions(
	ctx context.Context,
	execution *models.WorkflowExecution,
	lead *models.Lead,
	onProgress ProgressFunc,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action loop panicked: %v", r)
		}
	}()

	total := len(execution.Actions)

	for i, action := range execution.Actions {
		if ctx.Err() != nil {
			return fmt.Errorf("execution aborted: %w", ctx.Err())
		}

		progress := (i + 1) * 100 / total

		notify(onProgress, progress, "Executing: "+action.Label)

		result := e.dispatch(ctx, action, lead)

		e.historyMu.Lock()
		execution.Results = append(execution.Results, result)
		execution.Progress = progress
		e.historyMu.Unlock()

		if i < total-1 {
			if err := e.wait(ctx); err != nil {
				return err
			}
		}
	}

	return nil
}

// wait sleeps for the pacing delay, aborting early on cancellation.
func (e *Executor) wait(ctx context.Context) error {
	if e.pacing <= 0 {
		return nil
	}

	timer := time.NewTimer(e.pacing)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("execution aborted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// lockLead serializes executions per lead id.
func (e *Executor) lockLead(leadID string) func() {
	e.leadLocksMu.Lock()

	lock, ok := e.leadLocks[leadID]
	if !ok {
		lock = &sync.Mutex{}
		e.leadLocks[leadID] = lock
	}

	e.leadLocksMu.Unlock()

	lock.Lock()

	return lock.Unlock
}

func (e *Executor) record(execution *models.WorkflowExecution) {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()

	e.history = append(e.history, execution)
}

// publish is fire-and-forget: a bus failure is logged, never surfaced. The
// key correlates the event with its lead.
func (e *Executor) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	err := e.publisher.Publish(ctx, key, event)
	if err != nil {
		e.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func notify(onProgress ProgressFunc, progress int, message string) {
	if onProgress != nil {
		onProgress(progress, message)
	}
}

// generateExecutionID generates a unique execution ID.
func generateExecutionID() string {
	return "exec-" + uuid.New().String()[:8]
}
