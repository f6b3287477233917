// Package store opens the configured persistent store backend.
package store

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kaizen/config"
	"github.com/goliatone/go-kaizen/internal/store/bunstore"
	"github.com/goliatone/go-kaizen/internal/store/mongostore"
	"github.com/goliatone/go-kaizen/kaizen"
)

// Migrator is implemented by backends that manage their own schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Backend is an opened store together with its connection lifecycle.
type Backend struct {
	Repository kaizen.Repository
	Driver     string
	close      func(ctx context.Context) error
}

// Open connects the driver named in cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (*Backend, error) {
	switch cfg.Driver {
	case bunstore.DriverSQLite, bunstore.DriverPostgres:
		db, err := bunstore.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "ping "+cfg.Driver)
		}
		return &Backend{
			Repository: bunstore.New(db),
			Driver:     cfg.Driver,
			close:      func(context.Context) error { return db.Close() },
		}, nil

	case "mongo":
		client, coll, err := mongostore.Connect(ctx, cfg.DSN, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Repository: mongostore.New(coll),
			Driver:     cfg.Driver,
			close:      client.Disconnect,
		}, nil
	}
	return nil, goerrors.New("unsupported store driver "+cfg.Driver, goerrors.CategoryBadInput)
}

// Migrate prepares the schema when the backend supports it.
func (b *Backend) Migrate(ctx context.Context) error {
	if m, ok := b.Repository.(Migrator); ok {
		return m.Migrate(ctx)
	}
	return nil
}

// Close releases the connection.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}
