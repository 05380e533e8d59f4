// Package web provides the REST API for leads, the workflow definition, and
// workflow execution.
package web

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/piazza-crm/leadflow/pkg/mail"
	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/services"
)

type APIHandlers struct {
	leads     *services.Leads
	workflows *services.Workflows
	transport mail.Transport
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAPIHandlers(
	leads *services.Leads,
	workflows *services.Workflows,
	transport mail.Transport,
	validator *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		leads:     leads,
		workflows: workflows,
		transport: transport,
		validator: validator,
		logger:    logger.With("module", "web"),
	}
}

func (h *APIHandlers) GetLeads(c fiber.Ctx) error {
	leads, err := h.leads.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"leads": leads,
		"count": len(leads),
	})
}

func (h *APIHandlers) CreateLead(c fiber.Ctx) error {
	var req services.CreateLeadRequest

	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	lead, err := h.leads.Create(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(lead)
}

func (h *APIHandlers) GetLead(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Lead ID is required")
	}

	lead, err := h.leads.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(lead)
}

func (h *APIHandlers) UpdateLead(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Lead ID is required")
	}

	var patch models.LeadUpdate

	if err := c.Bind().JSON(&patch); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	lead, err := h.leads.Update(c.Context(), id, patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(lead)
}

func (h *APIHandlers) DeleteLead(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Lead ID is required")
	}

	err := h.leads.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetWorkflow returns the current definition, defaulting to the trigger-only
// definition when nothing is stored.
func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	def, err := h.workflows.Definition(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(def)
}

// SaveWorkflow overwrites the current definition.
func (h *APIHandlers) SaveWorkflow(c fiber.Ctx) error {
	var def models.WorkflowDefinition

	if err := c.Bind().JSON(&def); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	err := h.workflows.SaveDefinition(c.Context(), &def)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(&def)
}

// DeleteWorkflow clears the stored definition.
func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	err := h.workflows.ClearDefinition(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RunWorkflow executes the current definition against a lead and returns the
// finished execution record.
func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	leadID := c.Params("leadId")
	if leadID == "" {
		return badRequest(c, "Lead ID is required")
	}

	execution, err := h.workflows.RunForLead(c.Context(), leadID, nil)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	executions := h.workflows.History()

	return c.JSON(fiber.Map{
		"executions": executions,
		"count":      len(executions),
	})
}

func (h *APIHandlers) GetMetrics(c fiber.Ctx) error {
	return c.JSON(h.workflows.Metrics())
}

// TestEmail verifies the SMTP transport, optionally delivering a probe
// message when a recipient is given.
func (h *APIHandlers) TestEmail(c fiber.Ctx) error {
	var req TestEmailRequest

	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if h.transport == nil || !h.transport.IsConfigured() {
		return c.JSON(TestEmailResponse{
			Configured: false,
			Message:    "No SMTP transport configured; email delivery is simulated",
		})
	}

	if err := h.transport.TestConnection(c.Context()); err != nil {
		return badGateway(c, "SMTP connection failed: "+err.Error())
	}

	response := TestEmailResponse{
		Configured: true,
		Message:    "SMTP connection verified",
	}

	if req.To != "" {
		_, err := h.transport.Send(c.Context(), mail.Message{
			To:      req.To,
			Subject: "Leadflow SMTP test",
			Body:    "This is a test message from Leadflow. Your SMTP settings work.",
		})
		if err != nil {
			return badGateway(c, "SMTP test delivery failed: "+err.Error())
		}

		response.Sent = true
		response.Message = "Test email sent to " + req.To
	}

	return c.JSON(response)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	persistenceCheck, ok := h.leads.HealthCheck(c.Context())

	transportCheck := "No SMTP transport configured; email delivery is simulated"
	if h.transport != nil && h.transport.IsConfigured() {
		transportCheck = "SMTP transport configured"
	}

	status := "unhealthy"
	message := "Leadflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Leadflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"persistence":     persistenceCheck,
			"email_transport": transportCheck,
		},
	})
}
