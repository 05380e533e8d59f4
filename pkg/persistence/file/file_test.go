package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/persistence"
	"github.com/piazza-crm/leadflow/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPersistence(t *testing.T) (*file.Persistence, string) {
	t.Helper()

	tempDir := t.TempDir()

	return file.NewPersistence(tempDir), tempDir
}

func TestPersistence_HealthCheck(t *testing.T) {
	p, _ := setupPersistence(t)

	assert.NoError(t, p.HealthCheck(context.Background()))
	assert.NoError(t, p.Close(context.Background()))

	missing := file.NewPersistence(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, missing.HealthCheck(context.Background()))
}

func TestLeadRepository_SaveAndFetch(t *testing.T) {
	p, _ := setupPersistence(t)
	ctx := context.Background()
	repo := p.LeadRepository()

	lead := &models.Lead{
		ID:     "lead-1",
		Name:   "Ann",
		Email:  "a@x.com",
		Status: models.LeadStatusNew,
		Source: "document-upload",
	}

	require.NoError(t, repo.SaveLead(ctx, lead))
	assert.False(t, lead.CreatedAt.IsZero(), "save stamps creation time")

	fetched, err := repo.LeadByID(ctx, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", fetched.Name)
	assert.Equal(t, models.LeadStatusNew, fetched.Status)
}

func TestLeadRepository_LeadByIDNotFound(t *testing.T) {
	p, _ := setupPersistence(t)

	_, err := p.LeadRepository().LeadByID(context.Background(), "nope")

	assert.True(t, persistence.IsLeadNotFound(err))
}

func TestLeadRepository_LeadsNewestFirst(t *testing.T) {
	p, _ := setupPersistence(t)
	ctx := context.Background()
	repo := p.LeadRepository()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"older", "middle", "newest"} {
		lead := &models.Lead{
			ID:        id,
			Name:      id,
			Email:     id + "@x.com",
			Status:    models.LeadStatusNew,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.SaveLead(ctx, lead))
	}

	leads, err := repo.Leads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, "newest", leads[0].ID)
	assert.Equal(t, "middle", leads[1].ID)
	assert.Equal(t, "older", leads[2].ID)
}

func TestLeadRepository_UpdateLead(t *testing.T) {
	p, _ := setupPersistence(t)
	ctx := context.Background()
	repo := p.LeadRepository()

	lead := &models.Lead{ID: "lead-1", Name: "Ann", Email: "a@x.com", Status: models.LeadStatusNew}
	require.NoError(t, repo.SaveLead(ctx, lead))

	contacted := models.LeadStatusContacted

	updated, err := repo.UpdateLead(ctx, "lead-1", models.LeadUpdate{Status: &contacted})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, updated.Status)

	// Status transition is idempotent.
	updated, err = repo.UpdateLead(ctx, "lead-1", models.LeadUpdate{Status: &contacted})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, updated.Status)

	_, err = repo.UpdateLead(ctx, "missing", models.LeadUpdate{Status: &contacted})
	assert.True(t, persistence.IsLeadNotFound(err))
}

func TestLeadRepository_DeleteLead(t *testing.T) {
	p, _ := setupPersistence(t)
	ctx := context.Background()
	repo := p.LeadRepository()

	lead := &models.Lead{ID: "lead-1", Name: "Ann", Email: "a@x.com", Status: models.LeadStatusNew}
	require.NoError(t, repo.SaveLead(ctx, lead))

	require.NoError(t, repo.DeleteLead(ctx, "lead-1"))

	_, err := repo.LeadByID(ctx, "lead-1")
	assert.True(t, persistence.IsLeadNotFound(err))

	// Deleting again is not an error.
	assert.NoError(t, repo.DeleteLead(ctx, "lead-1"))
}

func TestDefinitionStore_RoundTrip(t *testing.T) {
	p, _ := setupPersistence(t)
	ctx := context.Background()
	store := p.DefinitionStore()

	def := models.NewDefaultDefinition()
	def.Nodes = append(def.Nodes,
		models.WorkflowNode{ID: "n1", Data: models.NodeData{Label: "Send Email", Kind: models.KindSendEmail}},
		models.WorkflowNode{ID: "n2", Data: models.NodeData{Label: "Create Task", Kind: models.KindCreateTask}},
	)
	def.Edges = append(def.Edges,
		models.WorkflowEdge{ID: "e1", Source: models.TriggerNodeID, Target: "n1"},
		models.WorkflowEdge{ID: "e2", Source: "n1", Target: "n2"},
	)

	require.NoError(t, store.SaveDefinition(ctx, def))

	loaded, err := store.LoadDefinition(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Nodes, 3)
	assert.Equal(t, def.Nodes, loaded.Nodes)
	assert.Equal(t, def.Edges, loaded.Edges)
}

func TestDefinitionStore_LoadAbsent(t *testing.T) {
	p, _ := setupPersistence(t)

	_, err := p.DefinitionStore().LoadDefinition(context.Background())

	assert.True(t, persistence.IsDefinitionNotFound(err))
}

func TestDefinitionStore_MalformedTreatedAsAbsent(t *testing.T) {
	p, tempDir := setupPersistence(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		document string
	}{
		{name: "not json", document: "definitely not json"},
		{name: "wrong shape", document: `{"steps": []}`},
		{name: "node without data", document: `{"nodes":[{"id":"n1"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, "workflow.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.document), 0600))

			_, err := p.DefinitionStore().LoadDefinition(ctx)
			assert.True(t, persistence.IsDefinitionNotFound(err))
		})
	}
}

func TestDefinitionStore_Clear(t *testing.T) {
	p, _ := setupPersistence(t)
	ctx := context.Background()
	store := p.DefinitionStore()

	require.NoError(t, store.SaveDefinition(ctx, models.NewDefaultDefinition()))
	require.NoError(t, store.ClearDefinition(ctx))

	_, err := store.LoadDefinition(ctx)
	assert.True(t, persistence.IsDefinitionNotFound(err))

	// Clearing an already-empty store is not an error.
	assert.NoError(t, store.ClearDefinition(ctx))
}
