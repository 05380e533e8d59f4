// Package events defines event types and structures for lead and workflow
// lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/piazza-crm/leadflow/pkg/models"
)

type EventType string

// Topic carries all leadflow notifications.
const Topic = "leadflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Lead lifecycle events.
	LeadCreatedEvent EventType = "lead.created"
	LeadUpdatedEvent EventType = "lead.updated"

	// Workflow execution lifecycle events.
	WorkflowExecutionCompletedEvent EventType = "workflow.execution.completed"
	WorkflowExecutionFailedEvent    EventType = "workflow.execution.failed"

	// Informational: a follow-up task was synthesized by an action.
	TaskCreatedEvent EventType = "task.created"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type LeadCreated struct {
	BaseEvent

	Lead *models.Lead `json:"lead"`
}

func (l LeadCreated) GetType() EventType {
	return LeadCreatedEvent
}

type LeadUpdated struct {
	BaseEvent

	LeadID  string            `json:"lead_id"`
	Changed models.LeadUpdate `json:"changed"`
}

func (l LeadUpdated) GetType() EventType {
	return LeadUpdatedEvent
}

type WorkflowExecutionCompleted struct {
	BaseEvent

	Execution *models.WorkflowExecution `json:"execution"`
}

func (w WorkflowExecutionCompleted) GetType() EventType {
	return WorkflowExecutionCompletedEvent
}

type WorkflowExecutionFailed struct {
	BaseEvent

	Execution *models.WorkflowExecution `json:"execution"`
	Error     string                    `json:"error"`
}

func (w WorkflowExecutionFailed) GetType() EventType {
	return WorkflowExecutionFailedEvent
}

type TaskCreated struct {
	BaseEvent

	Task models.FollowUpTask `json:"task"`
}

func (t TaskCreated) GetType() EventType {
	return TaskCreatedEvent
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}
