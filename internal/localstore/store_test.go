package localstore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/trio-pos/pkg/config"
	"github.com/angelmondragon/trio-pos/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.LocalEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func expectValue(t *testing.T, store Store, key, want string) {
	t.Helper()
	value, found, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	if !found || value != want {
		t.Fatalf("expected %s=%q, got %q found=%v", key, want, value, found)
	}
}

func TestSQLStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(newTestDB(t))

	_, found, err := store.Get(ctx, "language")
	if err != nil || found {
		t.Fatalf("expected a miss, got found=%v err=%v", found, err)
	}

	if err := store.Set(ctx, "language", "ta"); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := store.Set(ctx, "language", "en"); err != nil {
		t.Fatalf("second set: %v", err)
	}
	expectValue(t, store, "language", "en")
}

func TestSQLStoreRejectsBlankKey(t *testing.T) {
	store := NewSQLStore(newTestDB(t))
	if err := store.Set(context.Background(), " ", "x"); err == nil {
		t.Fatal("expected blank key rejected on set")
	}
	if _, _, err := store.Get(context.Background(), ""); err == nil {
		t.Fatal("expected blank key rejected on get")
	}
}

type fakeRedis struct {
	data map[string]string
}

func (f *fakeRedis) Lookup(_ context.Context, key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeRedis) LocalKey(terminalID, name string) string {
	return "triopos:local:terminal:" + terminalID + ":" + name
}

func TestRedisStoreNamespacesByTerminal(t *testing.T) {
	ctx := context.Background()
	kv := &fakeRedis{data: map[string]string{}}
	till1 := NewRedisStore(kv, "till-1")
	till2 := NewRedisStore(kv, "till-2")

	if err := till1.Set(ctx, "language", "ta"); err != nil {
		t.Fatalf("set: %v", err)
	}
	expectValue(t, till1, "language", "ta")

	_, found, err := till2.Get(ctx, "language")
	if err != nil || found {
		t.Fatalf("expected till-2 isolated, got found=%v err=%v", found, err)
	}
	if _, ok := kv.data["triopos:local:terminal:till-1:language"]; !ok {
		t.Fatalf("expected namespaced key, got %v", kv.data)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set(context.Background(), "language", "ta"); err != nil {
		t.Fatalf("set: %v", err)
	}
	expectValue(t, store, "language", "ta")
}

func TestOpenMemoryAndUnknownDriver(t *testing.T) {
	backend, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverMemory}}, nil)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := backend.Store.(*MemoryStore); !ok {
		t.Fatalf("expected *MemoryStore, got %T", backend.Store)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "etcd"}}, nil); err == nil {
		t.Fatal("expected unknown driver rejected")
	}
}

func TestOpenSQLiteRunsMigrations(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreConfig{
		Driver:      config.StoreDriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "terminal.db"),
		AutoMigrate: true,
	}}

	backend, err := Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	if err := backend.Pinger.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := backend.Store.Set(ctx, "language", "ta"); err != nil {
		t.Fatalf("set: %v", err)
	}
	expectValue(t, backend.Store, "language", "ta")
}
