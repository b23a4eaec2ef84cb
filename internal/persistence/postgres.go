package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/config"
)

// PostgresKV keeps documents in the portal_documents table.
type PostgresKV struct {
	Pool *pgxpool.Pool
}

// NewPostgresKV establishes a connection pool.
func NewPostgresKV(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PostgresKV, error) {
	if cfg.DSN == "" {
		return nil, errors.New("POSTGRES_DSN is required for the postgres store driver")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return &PostgresKV{Pool: pool}, nil
}

func (p *PostgresKV) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if p == nil || p.Pool == nil {
		return nil, false, errNotConfigured
	}
	const query = `SELECT value FROM portal_documents WHERE key=$1`

	var value []byte
	err := p.Pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Save upserts all documents in a single transaction.
func (p *PostgresKV) Save(ctx context.Context, docs map[string][]byte) error {
	if p == nil || p.Pool == nil {
		return errNotConfigured
	}
	const upsert = `
        INSERT INTO portal_documents (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`
	const remove = `DELETE FROM portal_documents WHERE key=$1`

	return pgx.BeginFunc(ctx, p.Pool, func(tx pgx.Tx) error {
		for key, value := range docs {
			if value == nil {
				if _, err := tx.Exec(ctx, remove, key); err != nil {
					return err
				}
				continue
			}
			if _, err := tx.Exec(ctx, upsert, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Ping verifies database connectivity.
func (p *PostgresKV) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.Pool.Ping(ctx)
}

// Close releases pool resources.
func (p *PostgresKV) Close() error {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
	return nil
}
