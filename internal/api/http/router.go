package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/farm-portal/internal/api/http/handlers"
	"github.com/spec-kit/farm-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Me             *handlers.MeHandler
	AdminUsers     *handlers.AdminUsersHandler
	Ledger         *handlers.LedgerHandler
	Requests       *handlers.RequestsHandler
	Help           *handlers.HelpHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/challenge", cfg.Auth.Challenge)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/resume", cfg.Auth.Resume)
	authGroup.Post("/password/forgot", cfg.Auth.ForgotPassword)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Auth.Logout)

	app.Post("/help/ask", cfg.Help.Ask)

	me := app.Group("/me", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	me.Get("", cfg.Me.Profile)
	me.Get("/transactions", cfg.Me.Transactions)
	me.Get("/requests", cfg.Me.Requests)
	me.Get("/orders", cfg.Me.Orders)
	me.Post("/orders", auth.RequireCustomer(), cfg.Me.PlaceOrder)
	me.Post("/profile-requests", auth.RequireCustomer(), cfg.Me.RequestProfileUpdate)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users", cfg.AdminUsers.List)
	admin.Post("/users", cfg.AdminUsers.Create)
	admin.Get("/users/:id", cfg.AdminUsers.Get)
	admin.Put("/users/:id", cfg.AdminUsers.Update)
	admin.Delete("/users/:id", cfg.AdminUsers.Delete)

	admin.Post("/sales", cfg.Ledger.RecordSale)
	admin.Post("/payments", cfg.Ledger.RecordPayment)
	admin.Get("/transactions", cfg.Ledger.Transactions)
	admin.Get("/summary", cfg.Ledger.Summary)

	admin.Get("/requests", cfg.Requests.List)
	admin.Get("/requests/pending-count", cfg.Requests.PendingCount)
	admin.Post("/requests/:id/approve", cfg.Requests.Approve)
	admin.Post("/requests/:id/reject", cfg.Requests.Reject)
	admin.Get("/orders", cfg.Requests.Orders)
}
