package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/persistence/file"
	"github.com/piazza-crm/leadflow/pkg/services"
	"github.com/piazza-crm/leadflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkflows(t *testing.T) (*services.Workflows, *services.Leads) {
	t.Helper()

	logger := slog.Default()
	p := file.NewPersistence(t.TempDir())
	publisher := &capturingPublisher{}
	executor := workflow.NewExecutor(logger, p.LeadRepository(), nil, publisher)

	return services.NewWorkflows(p, executor, logger), services.NewLeads(p, publisher, logger)
}

func definitionWithActions() *models.WorkflowDefinition {
	def := models.NewDefaultDefinition()
	def.Nodes = append(def.Nodes,
		models.WorkflowNode{ID: "n1", Data: models.NodeData{Label: "Send Email", Kind: models.KindSendEmail}},
		models.WorkflowNode{ID: "n2", Data: models.NodeData{Label: "Create Task", Kind: models.KindCreateTask}},
	)
	def.Edges = append(def.Edges,
		models.WorkflowEdge{ID: "e1", Source: models.TriggerNodeID, Target: "n1"},
		models.WorkflowEdge{ID: "e2", Source: "n1", Target: "n2"},
	)

	return def
}

func TestWorkflows_DefinitionDefaultsWhenEmpty(t *testing.T) {
	svc, _ := setupWorkflows(t)

	def, err := svc.Definition(context.Background())

	require.NoError(t, err)
	require.Len(t, def.Nodes, 1)
	assert.True(t, def.Nodes[0].IsTrigger())
	assert.Empty(t, def.Edges)
}

func TestWorkflows_SaveDefinitionRoundTrip(t *testing.T) {
	svc, _ := setupWorkflows(t)
	ctx := context.Background()

	saved := definitionWithActions()
	require.NoError(t, svc.SaveDefinition(ctx, saved))

	loaded, err := svc.Definition(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.Nodes, loaded.Nodes)
	assert.Equal(t, saved.Edges, loaded.Edges)
}

func TestWorkflows_SaveDefinitionRestoresTrigger(t *testing.T) {
	svc, _ := setupWorkflows(t)
	ctx := context.Background()

	def := &models.WorkflowDefinition{
		Nodes: []models.WorkflowNode{
			{ID: "n1", Data: models.NodeData{Label: "Send Email", Kind: models.KindSendEmail}},
		},
	}

	require.NoError(t, svc.SaveDefinition(ctx, def))

	loaded, err := svc.Definition(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Nodes, 2)
	assert.True(t, loaded.Nodes[0].IsTrigger(), "trigger node is prepended when missing")
}

func TestWorkflows_SaveDefinitionNil(t *testing.T) {
	svc, _ := setupWorkflows(t)

	err := svc.SaveDefinition(context.Background(), nil)

	assert.True(t, services.IsValidationError(err))
}

func TestWorkflows_ClearDefinition(t *testing.T) {
	svc, _ := setupWorkflows(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveDefinition(ctx, definitionWithActions()))
	require.NoError(t, svc.ClearDefinition(ctx))

	def, err := svc.Definition(ctx)
	require.NoError(t, err)
	require.Len(t, def.Nodes, 1)
	assert.True(t, def.Nodes[0].IsTrigger())
}

func TestWorkflows_RunForLead(t *testing.T) {
	svc, leads := setupWorkflows(t)
	ctx := context.Background()

	lead, err := leads.Create(ctx, services.CreateLeadRequest{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	require.NoError(t, svc.SaveDefinition(ctx, definitionWithActions()))

	execution, err := svc.RunForLead(ctx, lead.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.Len(t, execution.Results, 2)

	history := svc.History()
	require.Len(t, history, 1)
	assert.Equal(t, execution.ID, history[0].ID)

	metrics := svc.Metrics()
	assert.Equal(t, 1, metrics.Completed)
	assert.Equal(t, 1, metrics.EmailsSent)
	assert.Equal(t, 1, metrics.TasksCreated)
}

func TestWorkflows_RunForLeadNoActions(t *testing.T) {
	svc, leads := setupWorkflows(t)
	ctx := context.Background()

	lead, err := leads.Create(ctx, services.CreateLeadRequest{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	// Nothing saved: the default definition is trigger-only.
	execution, err := svc.RunForLead(ctx, lead.ID, nil)

	assert.Nil(t, execution)
	assert.ErrorIs(t, err, services.ErrNoActions)
	assert.Empty(t, svc.History())
}
