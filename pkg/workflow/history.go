package workflow

import "github.com/piazza-crm/leadflow/pkg/models"

// Metrics is a read-only aggregate derived from the execution history on
// each call; no aggregate state is stored.
type Metrics struct {
	TotalExecutions int `json:"total_executions"`
	Completed       int `json:"completed"`
	Failed          int `json:"failed"`
	Running         int `json:"running"`

	// SuccessRate is completed / total, zero when there are no executions.
	SuccessRate float64 `json:"success_rate"`

	// AverageDurationMS is the mean wall-clock duration of completed
	// executions, in milliseconds.
	AverageDurationMS float64 `json:"average_duration_ms"`

	EmailsSent   int `json:"emails_sent"`
	TasksCreated int `json:"tasks_created"`
}

// History returns all recorded executions, most recent first. The log is
// append-only and never pruned within a process lifetime.
func (e *Executor) History() []*models.WorkflowExecution {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()

	history := make([]*models.WorkflowExecution, len(e.history))
	for i, execution := range e.history {
		history[len(e.history)-1-i] = execution
	}

	return history
}

// Metrics derives aggregate counters from the execution history.
func (e *Executor) Metrics() Metrics {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()

	var metrics Metrics

	var completedDurationMS float64

	for _, execution := range e.history {
		metrics.TotalExecutions++

		switch execution.Status {
		case models.ExecutionStatusCompleted:
			metrics.Completed++
			completedDurationMS += float64(execution.Duration().Milliseconds())
		case models.ExecutionStatusFailed:
			metrics.Failed++
		case models.ExecutionStatusRunning:
			metrics.Running++
		}

		for _, result := range execution.Results {
			if result.Status != models.ResultStatusSuccess {
				continue
			}

			switch result.Kind {
			case models.KindSendEmail:
				metrics.EmailsSent++
			case models.KindCreateTask:
				metrics.TasksCreated++
			}
		}
	}

	if metrics.TotalExecutions > 0 {
		metrics.SuccessRate = float64(metrics.Completed) / float64(metrics.TotalExecutions)
	}

	if metrics.Completed > 0 {
		metrics.AverageDurationMS = completedDurationMS / float64(metrics.Completed)
	}

	return metrics
}
