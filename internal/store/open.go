package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/petclinic-export/internal/config"
	"github.com/JonMunkholm/petclinic-export/internal/export"
)

// Backend is an export.Store that owns a database handle.
type Backend interface {
	export.Store
	Ping(ctx context.Context) error
	Close() error
}

// Open connects the backend selected by cfg.Driver and renders the
// projection of layout for it.
func Open(ctx context.Context, cfg config.DatabaseConfig, layout export.Layout) (Backend, error) {
	switch cfg.Driver {
	case config.DriverPgx, "":
		pool, err := Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s, err := NewPgxStore(pool, cfg.Schema, layout)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil

	case config.DriverPostgres:
		db, err := OpenDB(ctx, "postgres", cfg)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLStore(db, Postgres(cfg.Schema), layout)
		if err != nil {
			db.Close()
			return nil, err
		}
		return s, nil

	case config.DriverSQLite:
		db, err := OpenDB(ctx, "sqlite", cfg)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLStore(db, SQLite(), layout)
		if err != nil {
			db.Close()
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
