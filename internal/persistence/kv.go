package persistence

import (
	"context"
	"errors"
)

// KV is the durable document store behind the directory. Each key holds one
// JSON document.
type KV interface {
	// Load returns the document stored under key; ok is false when absent.
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Save writes every document as one unit. A nil value deletes the key.
	Save(ctx context.Context, docs map[string][]byte) error
	Ping(ctx context.Context) error
	Close() error
}

var errNotConfigured = errors.New("kv backend not configured")
