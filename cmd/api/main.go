package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/app"
	"github.com/spec-kit/farm-portal/internal/config"
	"github.com/spec-kit/farm-portal/internal/observability"
	"github.com/spec-kit/farm-portal/internal/persistence"
	"github.com/spec-kit/farm-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, err := persistence.Open(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer kv.Close()

	portal, err := app.New(ctx, *cfg, kv, logger)
	if err != nil {
		logger.Fatal("failed to load directory", zap.Error(err))
	}
	for _, w := range portal.Directory.Warnings() {
		logger.Warn("startup data warning", zap.Error(w))
	}

	sweeperDone := worker.StartSessionSweeper(ctx, portal.Sessions, cfg.Auth.SessionIdle()/2, cfg.Auth.SessionIdle(), logger)

	go func() {
		if err := portal.HTTP.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	<-sweeperDone
	_ = portal.HTTP.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
