package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/piazza-crm/leadflow/pkg/events"
	"github.com/piazza-crm/leadflow/pkg/mail"
	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// dispatch runs one action against the lead and produces exactly one result.
// Handler errors are downgraded to failed results here; nothing escapes to
// the execution loop.
func (e *Executor) dispatch(ctx context.Context, action models.WorkflowAction, lead *models.Lead) models.WorkflowResult {
	var span trace.Span
	if e.tracer != nil {
		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "workflow.action",
			attribute.String(otelhelper.ActionIDKey, action.ID),
			attribute.String(otelhelper.ActionKindKey, string(action.Kind)))
		defer span.End()
	}

	result := models.WorkflowResult{
		ActionID:  action.ID,
		Kind:      action.Kind,
		Label:     action.Label,
		Status:    models.ResultStatusSuccess,
		Timestamp: time.Now().UTC(),
	}

	var (
		message string
		data    map[string]any
		err     error
	)

	switch action.Kind {
	case models.KindSendEmail:
		message, data, err = e.executeSendEmail(ctx, lead)
	case models.KindUpdateStatus:
		message, data, err = e.executeUpdateStatus(ctx, lead)
	case models.KindCreateTask:
		message, data, err = e.executeCreateTask(ctx, lead)
	default:
		err = fmt.Errorf("unknown action type: %s", action.Kind)
	}

	if err != nil {
		e.logger.Error("Action failed", "action_id", action.ID, "kind", action.Kind, "error", err)

		if span != nil {
			otelhelper.SetError(span, err)
		}

		result.Status = models.ResultStatusFailed
		result.Message = err.Error()

		return result
	}

	result.Message = message
	result.Data = data

	return result
}

// executeSendEmail renders the welcome template and delivers it through the
// transport. With no transport configured, delivery is simulated. Either
// way, a delivered (or simulated) email marks the lead contacted. A
// transport failure is a failed result; no silent fallback to simulation.
func (e *Executor) executeSendEmail(ctx context.Context, lead *models.Lead) (string, map[string]any, error) {
	subject, body, err := mail.RenderWelcome(lead, time.Now().UTC())
	if err != nil {
		return "", nil, fmt.Errorf("failed to render welcome email: %w", err)
	}

	simulated := e.transport == nil || !e.transport.IsConfigured()

	if !simulated {
		_, err := e.transport.Send(ctx, mail.Message{
			To:      lead.Email,
			ToName:  lead.Name,
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			return "", nil, fmt.Errorf("failed to send email to %s: %w", lead.Email, err)
		}
	}

	err = e.markContacted(ctx, lead)
	if err != nil {
		return "", nil, err
	}

	message := fmt.Sprintf("Email sent to %s", lead.Email)
	if simulated {
		message = fmt.Sprintf("Simulated email delivery to %s", lead.Email)
	}

	return message, map[string]any{
		"to":        lead.Email,
		"subject":   subject,
		"simulated": simulated,
	}, nil
}

// executeUpdateStatus moves the lead to contacted, the only transition the
// pipeline has. Repeating it is a no-op.
func (e *Executor) executeUpdateStatus(ctx context.Context, lead *models.Lead) (string, map[string]any, error) {
	oldStatus := lead.Status

	err := e.markContacted(ctx, lead)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("Status updated from %s to %s", oldStatus, lead.Status), map[string]any{
		"old_status": string(oldStatus),
		"new_status": string(lead.Status),
	}, nil
}

// executeCreateTask synthesizes a follow-up task. Tasks are not persisted;
// the result and the task.created notification are their only trace.
func (e *Executor) executeCreateTask(ctx context.Context, lead *models.Lead) (string, map[string]any, error) {
	task := models.NewFollowUpTask(uuid.New().String(), lead, time.Now().UTC())

	e.publish(ctx, lead.ID, events.TaskCreated{
		BaseEvent: events.NewBaseEvent(events.TaskCreatedEvent),
		Task:      task,
	})

	message := fmt.Sprintf("Created task %q due %s", task.Title, task.DueDate.Format("2006-01-02"))

	return message, map[string]any{
		"task_id":  task.ID,
		"title":    task.Title,
		"due_date": task.DueDate,
		"priority": task.Priority,
	}, nil
}

// markContacted persists the status transition and broadcasts it.
func (e *Executor) markContacted(ctx context.Context, lead *models.Lead) error {
	contacted := models.LeadStatusContacted
	patch := models.LeadUpdate{Status: &contacted}

	updated, err := e.leads.UpdateLead(ctx, lead.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to mark lead %s contacted: %w", lead.ID, err)
	}

	*lead = *updated

	e.publish(ctx, lead.ID, events.LeadUpdated{
		BaseEvent: events.NewBaseEvent(events.LeadUpdatedEvent),
		LeadID:    lead.ID,
		Changed:   patch,
	})

	return nil
}
