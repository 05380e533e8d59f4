package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/persistence/file"
	"github.com/piazza-crm/leadflow/pkg/services"
	"github.com/piazza-crm/leadflow/pkg/web"
	"github.com/piazza-crm/leadflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.Default()
	persistence := file.NewPersistence(t.TempDir())
	executor := workflow.NewExecutor(logger, persistence.LeadRepository(), nil, nil)
	leadService := services.NewLeads(persistence, nil, logger)
	workflowService := services.NewWorkflows(persistence, executor, logger)
	validate := validator.New(validator.WithRequiredStructEnabled())

	handlers := web.NewAPIHandlers(leadService, workflowService, nil, validate, logger)

	app := fiber.New()

	l := app.Group("/leads")
	l.Get("/", handlers.GetLeads)
	l.Post("/", handlers.CreateLead)
	l.Get("/:id", handlers.GetLead)
	l.Patch("/:id", handlers.UpdateLead)
	l.Delete("/:id", handlers.DeleteLead)

	w := app.Group("/workflow")
	w.Get("/", handlers.GetWorkflow)
	w.Put("/", handlers.SaveWorkflow)
	w.Delete("/", handlers.DeleteWorkflow)
	w.Post("/run/:leadId", handlers.RunWorkflow)
	w.Get("/executions", handlers.GetExecutions)
	w.Get("/metrics", handlers.GetMetrics)

	app.Post("/email/test", handlers.TestEmail)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body []byte

	if payload != nil {
		if str, ok := payload.(string); ok {
			body = []byte(str)
		} else {
			var err error

			body, err = json.Marshal(payload)
			require.NoError(t, err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, respBody
}

func createLead(t *testing.T, app *fiber.App, name, email string) models.Lead {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/leads/", services.CreateLeadRequest{
		Name:  name,
		Email: email,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var lead models.Lead
	require.NoError(t, json.Unmarshal(body, &lead))

	return lead
}

func TestAPIHandlers_CreateLead(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
	}{
		{
			name:           "successful creation",
			requestBody:    services.CreateLeadRequest{Name: "Ann", Email: "ann@example.com", Source: "document-upload"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			requestBody:    services.CreateLeadRequest{Email: "ann@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad email",
			requestBody:    services.CreateLeadRequest{Name: "Ann", Email: "nope"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not-json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t)

			resp, body := doJSON(t, app, http.MethodPost, "/leads/", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated {
				var lead models.Lead
				require.NoError(t, json.Unmarshal(body, &lead))
				assert.NotEmpty(t, lead.ID)
				assert.Equal(t, models.LeadStatusNew, lead.Status)
			}
		})
	}
}

func TestAPIHandlers_LeadLifecycle(t *testing.T) {
	app := setupTestApp(t)

	lead := createLead(t, app, "Ann", "ann@example.com")

	resp, body := doJSON(t, app, http.MethodGet, "/leads/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Leads []models.Lead `json:"leads"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Equal(t, 1, listing.Count)

	resp, body = doJSON(t, app, http.MethodPatch, "/leads/"+lead.ID, map[string]string{"status": "contacted"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Lead
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, models.LeadStatusContacted, updated.Status)

	resp, _ = doJSON(t, app, http.MethodDelete, "/leads/"+lead.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/leads/"+lead.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_UpdateLeadRejectsUnknownStatus(t *testing.T) {
	app := setupTestApp(t)

	lead := createLead(t, app, "Ann", "ann@example.com")

	resp, _ := doJSON(t, app, http.MethodPatch, "/leads/"+lead.ID, map[string]string{"status": "qualified"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_WorkflowDefinition(t *testing.T) {
	app := setupTestApp(t)

	// Nothing stored yet: the default trigger-only definition is served.
	resp, body := doJSON(t, app, http.MethodGet, "/workflow/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var def models.WorkflowDefinition
	require.NoError(t, json.Unmarshal(body, &def))
	require.Len(t, def.Nodes, 1)
	assert.True(t, def.Nodes[0].IsTrigger())

	saved := models.WorkflowDefinition{
		Nodes: []models.WorkflowNode{
			{ID: models.TriggerNodeID, Data: models.NodeData{Label: models.TriggerNodeLabel, Kind: models.KindTrigger}},
			{ID: "n1", Data: models.NodeData{Label: "Send Email", Kind: models.KindSendEmail}},
		},
		Edges: []models.WorkflowEdge{
			{ID: "e1", Source: models.TriggerNodeID, Target: "n1"},
		},
	}

	resp, _ = doJSON(t, app, http.MethodPut, "/workflow/", saved)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/workflow/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &def))
	assert.Equal(t, saved.Nodes, def.Nodes)
	assert.Equal(t, saved.Edges, def.Edges)

	resp, _ = doJSON(t, app, http.MethodDelete, "/workflow/", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/workflow/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &def))
	require.Len(t, def.Nodes, 1)
}

func TestAPIHandlers_RunWorkflow(t *testing.T) {
	app := setupTestApp(t)

	lead := createLead(t, app, "Ann", "ann@example.com")

	def := models.WorkflowDefinition{
		Nodes: []models.WorkflowNode{
			{ID: models.TriggerNodeID, Data: models.NodeData{Label: models.TriggerNodeLabel, Kind: models.KindTrigger}},
			{ID: "n1", Data: models.NodeData{Label: "Send Email", Kind: models.KindSendEmail}},
			{ID: "n2", Data: models.NodeData{Label: "Create Task", Kind: models.KindCreateTask}},
		},
	}

	resp, _ := doJSON(t, app, http.MethodPut, "/workflow/", def)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/workflow/run/"+lead.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var execution models.WorkflowExecution
	require.NoError(t, json.Unmarshal(body, &execution))
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, 100, execution.Progress)
	require.Len(t, execution.Results, 2)

	resp, body = doJSON(t, app, http.MethodGet, "/workflow/executions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var executions struct {
		Executions []models.WorkflowExecution `json:"executions"`
		Count      int                        `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &executions))
	assert.Equal(t, 1, executions.Count)

	resp, body = doJSON(t, app, http.MethodGet, "/workflow/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var metrics workflow.Metrics
	require.NoError(t, json.Unmarshal(body, &metrics))
	assert.Equal(t, 1, metrics.Completed)
	assert.Equal(t, 1, metrics.EmailsSent)
	assert.Equal(t, 1, metrics.TasksCreated)
}

func TestAPIHandlers_RunWorkflowPreconditions(t *testing.T) {
	app := setupTestApp(t)

	// No executable actions in the (default) definition.
	lead := createLead(t, app, "Ann", "ann@example.com")

	resp, _ := doJSON(t, app, http.MethodPost, "/workflow/run/"+lead.ID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown lead.
	def := models.WorkflowDefinition{
		Nodes: []models.WorkflowNode{
			{ID: models.TriggerNodeID, Data: models.NodeData{Label: models.TriggerNodeLabel, Kind: models.KindTrigger}},
			{ID: "n1", Data: models.NodeData{Label: "Send Email", Kind: models.KindSendEmail}},
		},
	}

	resp, _ = doJSON(t, app, http.MethodPut, "/workflow/", def)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/workflow/run/missing-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/workflow/executions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var executions struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &executions))
	assert.Zero(t, executions.Count, "precondition failures record no execution")
}

func TestAPIHandlers_TestEmailUnconfigured(t *testing.T) {
	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/email/test", web.TestEmailRequest{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result web.TestEmailResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.False(t, result.Configured)
	assert.False(t, result.Sent)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health.Status)
}
