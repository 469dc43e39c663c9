// Package main provides the Sampletrail API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/foodreg/sampletrail/pkg/audit"
	"github.com/foodreg/sampletrail/pkg/eventbus"
	"github.com/foodreg/sampletrail/pkg/persistence"
	"github.com/foodreg/sampletrail/pkg/services"
	"github.com/foodreg/sampletrail/pkg/session"
	"github.com/foodreg/sampletrail/pkg/web"
	"github.com/foodreg/sampletrail/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	sessions    session.Store
	trail       audit.Trail
	legacy      workflow.LegacyInference
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	sessions session.Store,
	trail audit.Trail,
	legacy workflow.LegacyInference,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		sessions:    sessions,
		trail:       trail,
		legacy:      legacy,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	graphService := services.NewGraph(a.persistence, a.eventBus, a.logger)
	trackerService := services.NewTracker(a.persistence, a.legacy)
	submissionService := services.NewSubmission(a.persistence, a.eventBus, a.logger)

	handlers := web.NewAPIHandlers(graphService, trackerService, submissionService, a.validate, a.sessions, a.trail)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Sampletrail API")
	})

	wf := app.Group("/workflow")
	wf.Get("/graph", handlers.GetGraph)
	wf.Post("/nodes", handlers.CreateNode)
	wf.Patch("/nodes/:nodeId", handlers.UpdateNode)
	wf.Delete("/nodes/:nodeId", handlers.DeleteNode)
	wf.Post("/transitions", handlers.CreateTransition)
	wf.Patch("/transitions/:transitionId", handlers.UpdateTransition)
	wf.Delete("/transitions/:transitionId", handlers.DeleteTransition)
	wf.Get("/settings", handlers.GetSettings)
	wf.Put("/settings", handlers.UpdateSettings)

	samples := app.Group("/samples")
	samples.Get("/:sampleId/workflow", handlers.GetSampleWorkflow)
	samples.Get("/:sampleId/workflow/states", handlers.GetSampleStates)
	samples.Post("/:sampleId/workflow/states", handlers.SubmitState)

	app.Get("/audit/recent", handlers.GetAuditRecent)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
