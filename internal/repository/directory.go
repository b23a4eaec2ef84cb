package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/persistence"
)

// Persisted document keys.
const (
	KeyUsers         = "users"
	KeyOrders        = "orders"
	KeyTransactions  = "transactions"
	KeyRequests      = "requests"
	KeySession       = "session"
	KeyEndedSessions = "ended_sessions"
)

// Directory owns the canonical users, orders, transactions and requests and
// mirrors every mutation to the KV store before making it visible.
type Directory struct {
	mu       sync.RWMutex
	endedMu  sync.Mutex
	kv       persistence.KV
	logger   *zap.Logger
	now      func() time.Time
	state    *Snapshot
	stored   map[string][]byte
	warnings []error
}

// Option customises a Directory.
type Option func(*Directory)

// WithClock replaces time.Now, used for ids and request dates.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

// Open loads the collections from kv, seeding the built-in accounts.
func Open(ctx context.Context, kv persistence.KV, logger *zap.Logger, opts ...Option) (*Directory, error) {
	d := &Directory{
		kv:     kv,
		logger: logger,
		now:    time.Now,
		stored: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.bootstrap(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Warnings lists the collections that failed to parse during Open. Each
// error wraps domain.ErrPersistenceCorrupt.
func (d *Directory) Warnings() []error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]error(nil), d.warnings...)
}

// Ping checks the underlying store.
func (d *Directory) Ping(ctx context.Context) error {
	return d.kv.Ping(ctx)
}

// Update runs fn against a copy of the collections, persists every collection
// fn changed in one KV write, and only then publishes the copy. If fn or the
// write fails, nothing changes.
func (d *Directory) Update(ctx context.Context, fn func(*Snapshot) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	next := d.state.clone()
	if err := fn(next); err != nil {
		return err
	}

	encoded, err := encodeSnapshot(next)
	if err != nil {
		return err
	}
	changed := make(map[string][]byte)
	for key, data := range encoded {
		if !bytes.Equal(d.stored[key], data) {
			changed[key] = data
		}
	}
	if len(changed) > 0 {
		if err := d.kv.Save(ctx, changed); err != nil {
			d.logger.Error("persist directory", zap.Error(err))
			return fmt.Errorf("persist directory: %w", err)
		}
		for key, data := range changed {
			d.stored[key] = data
		}
	}
	d.state = next
	return nil
}

// View runs fn against the live collections under a read lock. fn must not
// retain or modify them.
func (d *Directory) View(fn func(*Snapshot)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.state)
}

// Users returns a copy of every user.
func (d *Directory) Users() []domain.User {
	var out []domain.User
	d.View(func(s *Snapshot) {
		out = make([]domain.User, len(s.Users))
		for i, u := range s.Users {
			out[i] = u.Clone()
		}
	})
	return out
}

// User returns a copy of the user with id.
func (d *Directory) User(id string) (domain.User, error) {
	var (
		out   domain.User
		found bool
	)
	d.View(func(s *Snapshot) {
		if u, ok := s.User(id); ok {
			out, found = u.Clone(), true
		}
	})
	if !found {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return out, nil
}

// Orders returns a copy of every order in insertion order.
func (d *Directory) Orders() []domain.Order {
	var out []domain.Order
	d.View(func(s *Snapshot) { out = append([]domain.Order{}, s.Orders...) })
	return out
}

// Transactions returns a copy of the ledger in insertion order.
func (d *Directory) Transactions() []domain.Transaction {
	var out []domain.Transaction
	d.View(func(s *Snapshot) { out = append([]domain.Transaction{}, s.Transactions...) })
	return out
}

// Requests returns a copy of every request in insertion order.
func (d *Directory) Requests() []domain.SystemRequest {
	var out []domain.SystemRequest
	d.View(func(s *Snapshot) { out = append([]domain.SystemRequest{}, s.Requests...) })
	return out
}

// Request returns a copy of the request with id.
func (d *Directory) Request(id string) (domain.SystemRequest, error) {
	var (
		out   domain.SystemRequest
		found bool
	)
	d.View(func(s *Snapshot) {
		if r, ok := s.Request(id); ok {
			out, found = *r, true
		}
	})
	if !found {
		return domain.SystemRequest{}, fmt.Errorf("request %s: %w", id, domain.ErrNotFound)
	}
	return out, nil
}

func encodeSnapshot(s *Snapshot) (map[string][]byte, error) {
	docs := map[string]any{
		KeyUsers:        nonNil(s.Users),
		KeyOrders:       nonNil(s.Orders),
		KeyTransactions: nonNil(s.Transactions),
		KeyRequests:     nonNil(s.Requests),
	}
	out := make(map[string][]byte, len(docs))
	for key, v := range docs {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = data
	}
	return out, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
