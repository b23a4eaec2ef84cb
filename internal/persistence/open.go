package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/config"
)

// Store drivers accepted by Open.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Open builds the KV backend selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (KV, error) {
	switch cfg.Store.Driver {
	case DriverFile, "":
		logger.Info("using file store", zap.String("dir", cfg.Store.FileDir))
		return OpenFileKV(cfg.Store.FileDir)
	case DriverMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		return NewMemoryKV(nil), nil
	case DriverRedis:
		return NewRedisKV(cfg.Redis, logger), nil
	case DriverPostgres:
		pg, err := NewPostgresKV(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
