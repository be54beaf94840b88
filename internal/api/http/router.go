package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Incidents      *handlers.IncidentsHandler
	Technicians    *handlers.TechniciansHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Resolve, cfg.Auth.Me)

	incidents := app.Group("/incidents", cfg.AuthMiddleware.Handle)
	incidents.Get("/", cfg.Incidents.List)
	incidents.Post("/", cfg.Incidents.Create)
	incidents.Get("/:id", cfg.Incidents.Get)
	incidents.Patch("/:id", cfg.Incidents.Update)
	incidents.Post("/:id/start", cfg.Incidents.StartWork)
	incidents.Post("/:id/close", cfg.Incidents.CloseNow)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/technicians", auth.RequireRole(domain.RoleAdmin), cfg.Technicians.List)
}
