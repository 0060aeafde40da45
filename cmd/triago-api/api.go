// Package main provides the Triago API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/helpflow/triago/pkg/eventbus"
	"github.com/helpflow/triago/pkg/metrics"
	"github.com/helpflow/triago/pkg/persistence"
	"github.com/helpflow/triago/pkg/registry"
	"github.com/helpflow/triago/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persist persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		persistence: persist,
		logger:      logger,
		registry:    reg,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	learning := metrics.NewAccumulator(a.persistence.MetricsRepository(), a.logger)

	handlers := web.NewAPIHandlers(a.persistence, learning, a.validate, a.registry, a.eventBus)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Triago API")
	})

	t := app.Group("/tickets")
	t.Post("/", handlers.CreateTicket)
	t.Get("/:id", handlers.GetTicket)
	t.Post("/:id/feedback", handlers.SubmitFeedback)

	app.Get("/workflows/:id", handlers.GetWorkflow)
	app.Get("/learning-metrics", handlers.GetLearningMetrics)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
