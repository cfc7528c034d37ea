// Package admin provides maintenance operations on the local demo database.
package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/petclinic-export/internal/store"
)

// ResetTimeout is the maximum duration for reset and seed operations.
const ResetTimeout = 30 * time.Second

type resetFn func(ctx context.Context, db *sql.DB) error

// clearTable returns a reset step deleting every row of table.
func clearTable(table string) resetFn {
	return func(ctx context.Context, db *sql.DB) error {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		return nil
	}
}

// ResetAll empties the clinic tables, children first.
// This is a destructive operation.
func ResetAll(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	return runResets(ctx, db, []resetFn{
		clearTable("pets"),
		clearTable("owners"),
		clearTable("types"),
	})
}

// SeedDemo creates the schema if needed and loads the demo owners and pets.
// With reset set, existing rows are removed first.
func SeedDemo(ctx context.Context, db *sql.DB, reset bool) (store.SeedData, error) {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	if err := store.MigrateSQLite(ctx, db); err != nil {
		return store.SeedData{}, err
	}
	if reset {
		if err := ResetAll(ctx, db); err != nil {
			return store.SeedData{}, err
		}
	}
	data := store.DemoData()
	if err := store.Seed(ctx, db, data); err != nil {
		return store.SeedData{}, err
	}
	slog.Info("demo data seeded",
		"owners", len(data.Owners),
		"pets", len(data.Pets),
		"reset", reset,
	)
	return data, nil
}

func runResets(ctx context.Context, db *sql.DB, resets []resetFn) error {
	for _, reset := range resets {
		if err := reset(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
