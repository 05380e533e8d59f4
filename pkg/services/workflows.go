package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/persistence"
	"github.com/piazza-crm/leadflow/pkg/workflow"
)

// Workflows manages the single current workflow definition and runs it
// against leads.
type Workflows struct {
	persistence persistence.Persistence
	executor    *workflow.Executor
	logger      *slog.Logger
}

// NewWorkflows creates a new workflow service.
func NewWorkflows(p persistence.Persistence, executor *workflow.Executor, logger *slog.Logger) *Workflows {
	return &Workflows{
		persistence: p,
		executor:    executor,
		logger:      logger.With("module", "workflows_service"),
	}
}

// SaveDefinition overwrites the stored definition. The trigger node is not
// deletable: a definition arriving without one gets it prepended.
func (s *Workflows) SaveDefinition(ctx context.Context, def *models.WorkflowDefinition) error {
	if def == nil {
		return NewValidationError("SaveDefinition", "definition_nil", "", ErrDefinitionNil)
	}

	if def.TriggerNode() == nil {
		def.Nodes = append([]models.WorkflowNode{
			{ID: models.TriggerNodeID, Data: models.NodeData{Label: models.TriggerNodeLabel, Kind: models.KindTrigger}},
		}, def.Nodes...)
	}

	err := s.persistence.DefinitionStore().SaveDefinition(ctx, def)
	if err != nil {
		return fmt.Errorf("failed to save workflow definition: %w", err)
	}

	return nil
}

// Definition returns the stored definition, or the default trigger-only
// definition when nothing usable is stored.
func (s *Workflows) Definition(ctx context.Context) (*models.WorkflowDefinition, error) {
	def, err := s.persistence.DefinitionStore().LoadDefinition(ctx)
	if err != nil {
		if persistence.IsDefinitionNotFound(err) {
			return models.NewDefaultDefinition(), nil
		}

		return nil, fmt.Errorf("failed to load workflow definition: %w", err)
	}

	return def, nil
}

// ClearDefinition resets the store to empty.
func (s *Workflows) ClearDefinition(ctx context.Context) error {
	err := s.persistence.DefinitionStore().ClearDefinition(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear workflow definition: %w", err)
	}

	return nil
}

// RunForLead loads the current definition, extracts its actions, and
// executes them against the lead. A definition with no executable actions is
// a precondition failure; no execution is recorded.
func (s *Workflows) RunForLead(ctx context.Context, leadID string, onProgress workflow.ProgressFunc) (*models.WorkflowExecution, error) {
	def, err := s.Definition(ctx)
	if err != nil {
		return nil, err
	}

	actions := workflow.ExtractActions(def, s.logger)
	if len(actions) == 0 {
		return nil, ErrNoActions
	}

	return s.executor.ExecuteForLead(ctx, leadID, actions, onProgress)
}

// History returns all recorded executions, most recent first.
func (s *Workflows) History() []*models.WorkflowExecution {
	return s.executor.History()
}

// Metrics returns aggregate counters derived from the execution history.
func (s *Workflows) Metrics() workflow.Metrics {
	return s.executor.Metrics()
}
