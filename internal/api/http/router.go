package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/findteam/identity-service/internal/api/http/handlers"
	"github.com/findteam/identity-service/internal/auth"
	"github.com/findteam/identity-service/internal/captcha"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Projects       *handlers.ProjectHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
	// Captcha gates the public auth routes; nil disables the gate.
	Captcha fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Get)
	}

	gate := cfg.Captcha
	if gate == nil {
		gate = captcha.Disabled()
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth", gate)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/verify", cfg.Auth.Verify)

	api.Get("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)

	if cfg.Projects != nil {
		projects := api.Group("/projects")
		projects.Get("/", cfg.Projects.List)
		projects.Get("/:id", cfg.Projects.Get)
		projects.Post("/", cfg.AuthMiddleware.Handle, cfg.Projects.Create)
	}
}
