package store

import (
	"context"
	"testing"

	"github.com/goliatone/go-kaizen/config"
	"github.com/goliatone/go-kaizen/kaizen"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	backend, err := Open(ctx, config.StoreConfig{Driver: "sqlite", DSN: "file:store_open_test?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer backend.Close(ctx)

	if err := backend.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := backend.Migrate(ctx); err != nil {
		t.Fatalf("migrate must be idempotent: %v", err)
	}

	created, err := backend.Repository.Create(ctx, kaizen.Kaizen{Title: "t"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := backend.Repository.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "t" {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "redis", DSN: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestBackend_MigrateWithoutMigrator(t *testing.T) {
	b := &Backend{Repository: struct{ kaizen.Repository }{}}
	if err := b.Migrate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
