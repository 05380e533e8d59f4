package models

import "time"

// ExecutionStatus is the lifecycle state of a workflow execution. It is
// terminal once it leaves running.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// ResultStatus is the outcome of a single attempted action.
type ResultStatus string

const (
	ResultStatusSuccess ResultStatus = "success"
	ResultStatusFailed  ResultStatus = "failed"
	ResultStatusSkipped ResultStatus = "skipped"
)

// WorkflowResult records the outcome of one action within an execution.
// Exactly one is appended per attempted action.
type WorkflowResult struct {
	ActionID  string         `json:"action_id"`
	Kind      ActionKind     `json:"kind"`
	Label     string         `json:"label"`
	Status    ResultStatus   `json:"status"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// WorkflowExecution is one run of the definition's actions against a single
// lead. It is owned by the executor for its lifetime and appended to the
// in-memory history on creation.
type WorkflowExecution struct {
	ID          string           `json:"id"`
	LeadID      string           `json:"lead_id"`
	LeadName    string           `json:"lead_name"`
	Actions     []WorkflowAction `json:"actions"`
	Status      ExecutionStatus  `json:"status"`
	Progress    int              `json:"progress"` // 0-100, monotonically increasing
	Results     []WorkflowResult `json:"results"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// Duration returns the wall-clock duration of a finished execution, zero
// while it is still running.
func (e *WorkflowExecution) Duration() time.Duration {
	if e.CompletedAt == nil {
		return 0
	}

	return e.CompletedAt.Sub(e.StartedAt)
}

// FollowUpTask is synthesized by the create_task action. Tasks are not
// persisted; they are observable only through the action result and the
// task.created notification.
type FollowUpTask struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	Title     string    `json:"title"`
	DueDate   time.Time `json:"due_date"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	TaskPriorityMedium = "medium"

	// FollowUpDelay is the fixed due-date offset for synthesized tasks.
	FollowUpDelay = 24 * time.Hour
)

// NewFollowUpTask builds the fixed follow-up task for a lead.
func NewFollowUpTask(id string, lead *Lead, now time.Time) FollowUpTask {
	return FollowUpTask{
		ID:        id,
		LeadID:    lead.ID,
		Title:     "Follow up with " + lead.Name,
		DueDate:   now.Add(FollowUpDelay),
		Priority:  TaskPriorityMedium,
		CreatedAt: now,
	}
}
