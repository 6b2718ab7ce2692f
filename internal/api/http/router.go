package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/contract-ledger/internal/api/http/handlers"
	"github.com/spec-kit/contract-ledger/internal/auth"
	"github.com/spec-kit/contract-ledger/internal/observability"
	"github.com/spec-kit/contract-ledger/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health             *handlers.HealthHandler
	Contracts          *handlers.ContractsHandler
	Jobs               *handlers.JobsHandler
	Balances           *handlers.BalancesHandler
	Admin              *handlers.AdminHandler
	AuthMiddleware     *auth.AuthMiddleware
	AdminTokenRequired bool
	// Limiter throttles mutating routes. Nil disables throttling.
	Limiter *ratelimit.MapLimiter
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if registry := cfg.Metrics.Registry(); registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	throttle := ratelimit.Middleware(cfg.Limiter, nil)
	profile := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireProfile()}

	contracts := app.Group("/contracts", profile...)
	contracts.Get("/", cfg.Contracts.ListContracts)
	contracts.Get("/:id", cfg.Contracts.GetContract)

	jobs := app.Group("/jobs", profile...)
	jobs.Get("/unpaid", cfg.Jobs.ListUnpaid)
	jobs.Post("/:job_id/pay", throttle, cfg.Jobs.Pay)

	balances := app.Group("/balances", profile...)
	balances.Post("/deposit/:userId", throttle, cfg.Balances.Deposit)

	admin := app.Group("/admin", cfg.AuthMiddleware.RequireAdmin(cfg.AdminTokenRequired))
	admin.Get("/best-profession", cfg.Admin.BestProfession)
	admin.Get("/best-clients", cfg.Admin.BestClients)
}
