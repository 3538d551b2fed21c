package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/dockflow/config"
	"github.com/kilianp07/dockflow/core/store"
	"github.com/kilianp07/dockflow/infra/postgres"
	"github.com/kilianp07/dockflow/infra/sqlite"
)

// StoreRunner is a store.Runner holding a connection.
type StoreRunner interface {
	store.Runner
	Close() error
}

// OpenStore connects the configured backend and ensures the schema exists.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (StoreRunner, error) {
	var (
		r   StoreRunner
		err error
	)
	switch cfg.Driver {
	case "postgres":
		r, err = postgres.Open(ctx, cfg.DSN)
	case "sqlite", "":
		r, err = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	if err := store.EnsureSchema(ctx, r); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return r, nil
}
