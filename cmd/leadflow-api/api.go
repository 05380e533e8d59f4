package main

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/piazza-crm/leadflow/pkg/eventbus"
	"github.com/piazza-crm/leadflow/pkg/mail"
	"github.com/piazza-crm/leadflow/pkg/persistence"
	"github.com/piazza-crm/leadflow/pkg/services"
	"github.com/piazza-crm/leadflow/pkg/web"
	"github.com/piazza-crm/leadflow/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	transport   mail.Transport
	pacing      time.Duration
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	transport mail.Transport,
	pacing time.Duration,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		transport:   transport,
		pacing:      pacing,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	executor := workflow.NewExecutor(a.logger, a.persistence.LeadRepository(), a.transport, a.eventBus).
		WithPacing(a.pacing)

	leadService := services.NewLeads(a.persistence, a.eventBus, a.logger)
	workflowService := services.NewWorkflows(a.persistence, executor, a.logger)

	handlers := web.NewAPIHandlers(leadService, workflowService, a.transport, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Leadflow API")
	})

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

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
