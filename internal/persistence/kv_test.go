package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/config"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Load(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Save(ctx, map[string][]byte{
		"users":  []byte(`[{"id":"1"}]`),
		"orders": []byte(`[]`),
	}))

	data, ok, err := kv.Load(ctx, "users")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"1"}]`, string(data))

	require.NoError(t, kv.Save(ctx, map[string][]byte{"orders": nil}))
	_, ok, err = kv.Load(ctx, "orders")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Ping(ctx))
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV(nil))
}

func TestMemoryKVFailSaveWritesNothing(t *testing.T) {
	kv := NewMemoryKV(map[string][]byte{"users": []byte(`[]`)})
	kv.FailSave = errors.New("disk full")

	err := kv.Save(context.Background(), map[string][]byte{"users": []byte(`[1]`)})
	require.Error(t, err)

	data, ok, err := kv.Load(context.Background(), "users")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[]`, string(data))
}

func TestFileKV(t *testing.T) {
	dir := t.TempDir()
	kv, err := OpenFileKV(dir)
	require.NoError(t, err)
	exerciseKV(t, kv)

	_, err = os.Stat(filepath.Join(dir, "users.json"))
	require.NoError(t, err)

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileKVRejectsPathKeys(t *testing.T) {
	kv, err := OpenFileKV(t.TempDir())
	require.NoError(t, err)

	err = kv.Save(context.Background(), map[string][]byte{"../escape": []byte(`{}`)})
	assert.Error(t, err)
}

func TestRedisKV(t *testing.T) {
	srv := miniredis.RunT(t)
	kv := NewRedisKV(config.RedisConfig{Addr: srv.Addr(), KeyPrefix: "farm:"}, zap.NewNop())
	t.Cleanup(func() { _ = kv.Close() })

	exerciseKV(t, kv)
	assert.True(t, srv.Exists("farm:users"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := config.Config{Store: config.StoreConfig{Driver: "etcd"}}
	_, err := Open(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestMigrationFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	names, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, names)

	names, err = migrationFiles("../../migrations")
	require.NoError(t, err)
	assert.Contains(t, names, "001_portal_documents.sql")
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, "missing", zap.NewNop()))
}

func TestFileKVFailedBatchChangesNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kv, err := OpenFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Save(ctx, map[string][]byte{"users": []byte(`"old"`)}))

	blocked := filepath.Join(dir, "transactions.json")
	require.NoError(t, os.Mkdir(blocked, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(blocked, "x"), []byte("x"), 0o644))

	err = kv.Save(ctx, map[string][]byte{"users": []byte(`"new"`), "transactions": []byte(`[1]`)})
	require.Error(t, err)

	got, ok, err := kv.Load(ctx, "users")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"old"`, string(got))

	for _, pattern := range []string{"*.tmp", "*.bak"} {
		leftovers, err := filepath.Glob(filepath.Join(dir, pattern))
		require.NoError(t, err)
		assert.Empty(t, leftovers, pattern)
	}
}

func TestFileKVRollbackRestoresAppliedTargets(t *testing.T) {
	dir := t.TempDir()
	users := filepath.Join(dir, "users.json")
	orders := filepath.Join(dir, "orders.json")
	session := filepath.Join(dir, "session.json")

	require.NoError(t, os.WriteFile(users, []byte(`"old"`), 0o644))
	require.NoError(t, os.WriteFile(session, []byte(`"2"`), 0o644))
	replaced := &fileWrite{final: users}
	removed := &fileWrite{final: session}
	require.NoError(t, backup(replaced))
	require.NoError(t, backup(removed))

	require.NoError(t, os.WriteFile(users+".next", []byte(`"new"`), 0o644))
	require.NoError(t, os.Rename(users+".next", users))
	require.NoError(t, os.WriteFile(orders, []byte(`[]`), 0o644))
	require.NoError(t, os.Remove(session))
	replaced.applied, removed.applied = true, true
	created := &fileWrite{final: orders, applied: true}
	untouched := &fileWrite{final: filepath.Join(dir, "requests.json")}

	require.NoError(t, rollback([]*fileWrite{replaced, created, removed, untouched}))

	data, err := os.ReadFile(users)
	require.NoError(t, err)
	assert.Equal(t, `"old"`, string(data))
	data, err = os.ReadFile(session)
	require.NoError(t, err)
	assert.Equal(t, `"2"`, string(data))
	_, err = os.Stat(orders)
	assert.True(t, os.IsNotExist(err))
}
