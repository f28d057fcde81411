package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/trio-pos/pkg/config"
	"github.com/angelmondragon/trio-pos/pkg/db/models"
)

func TestNewOpensSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terminal.db")
	client, err := New(context.Background(), config.StoreConfig{SQLitePath: path}, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if client.DB().Migrator().HasTable(&models.LocalEntry{}) {
		t.Fatal("expected a fresh database without local tables")
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(context.Background(), config.StoreConfig{SQLitePath: "  "}, nil); err == nil {
		t.Fatal("expected error for blank path")
	}
}
