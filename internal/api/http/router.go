package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-core/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Metrics   *handlers.MetricsHandler
	Tickets   *handlers.TicketsHandler
	Ingestion *handlers.IngestionHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Snapshot)

	app.Get("/tickets", cfg.Tickets.List)

	ingestionGroup := app.Group("/ingestion")
	ingestionGroup.Post("/run", cfg.Ingestion.Run)
	ingestionGroup.Post("/accounts/:id/run", cfg.Ingestion.RunAccount)
}
