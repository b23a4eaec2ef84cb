// Package app assembles the portal: directory, services, event wiring and
// the HTTP transport.
package app

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/farm-portal/internal/api/http"
	"github.com/spec-kit/farm-portal/internal/api/http/handlers"
	"github.com/spec-kit/farm-portal/internal/auth"
	"github.com/spec-kit/farm-portal/internal/config"
	"github.com/spec-kit/farm-portal/internal/events"
	"github.com/spec-kit/farm-portal/internal/observability"
	"github.com/spec-kit/farm-portal/internal/persistence"
	"github.com/spec-kit/farm-portal/internal/repository"
	"github.com/spec-kit/farm-portal/internal/service"
	"github.com/spec-kit/farm-portal/internal/worker"
)

// Portal is a fully wired application.
type Portal struct {
	Directory *repository.Directory
	Ledger    *service.LedgerService
	Approvals *service.ApprovalService
	Users     *service.UserService
	Sessions  *service.SessionManager
	Help      *service.HelpService
	Metrics   *observability.Metrics
	HTTP      *fiber.App
}

// New loads the directory from kv and wires everything on top of it.
func New(ctx context.Context, cfg config.Config, kv persistence.KV, logger *zap.Logger, opts ...repository.Option) (*Portal, error) {
	directory, err := repository.Open(ctx, kv, logger, opts...)
	if err != nil {
		return nil, err
	}

	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	p := &Portal{
		Directory: directory,
		Ledger: service.NewLedgerService(service.LedgerDependencies{
			Directory: directory, Dispatcher: dispatcher, Logger: logger,
		}),
		Approvals: service.NewApprovalService(service.ApprovalDependencies{
			Directory: directory, Dispatcher: dispatcher, Logger: logger,
		}),
		Users: service.NewUserService(service.UserDependencies{
			Directory: directory, Dispatcher: dispatcher, Logger: logger,
		}),
		Sessions: service.NewSessionManager(cfg.Auth, service.SessionDependencies{
			Users: directory, Remember: directory, Tokens: tokens, Logger: logger,
		}),
		Help:    service.NewHelpService(cfg.Help, logger),
		Metrics: observability.NewMetrics(),
	}

	worker.StartSessionSync(p.Sessions, dispatcher)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	p.HTTP = fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(p.HTTP, logger, p.Metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(p.HTTP, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, directory, directory.Warnings, p.Metrics),
		Auth:           handlers.NewAuthHandler(p.Sessions),
		Me:             handlers.NewMeHandler(p.Ledger, p.Approvals),
		AdminUsers:     handlers.NewAdminUsersHandler(p.Users),
		Ledger:         handlers.NewLedgerHandler(p.Ledger),
		Requests:       handlers.NewRequestsHandler(p.Approvals),
		Help:           handlers.NewHelpHandler(p.Help),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, p.Sessions),
	})
	return p, nil
}
