package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/petclinic-export/internal/config"
	"github.com/JonMunkholm/petclinic-export/internal/export"
)

// Connect opens and pings a pgx pool sized from cfg.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PgxStore runs the projection on a pgx pool. Each open cursor holds one
// pooled connection until it is closed.
type PgxStore struct {
	pool    *pgxpool.Pool
	queries Queries
}

// NewPgxStore renders the Postgres projection of layout for pool.
func NewPgxStore(pool *pgxpool.Pool, schema string, layout export.Layout) (*PgxStore, error) {
	q, err := Postgres(schema).Build(layout)
	if err != nil {
		return nil, err
	}
	return &PgxStore{pool: pool, queries: q}, nil
}

func (s *PgxStore) Query(ctx context.Context) (export.Cursor, error) {
	rows, err := s.pool.Query(ctx, s.queries.All)
	if err != nil {
		return nil, err
	}
	return newPgxCursor(rows), nil
}

func (s *PgxStore) QueryPage(ctx context.Context, limit, offset int) (export.Cursor, error) {
	rows, err := s.pool.Query(ctx, s.queries.Page, limit, offset)
	if err != nil {
		return nil, err
	}
	return newPgxCursor(rows), nil
}

func (s *PgxStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PgxStore) Close() error {
	s.pool.Close()
	return nil
}

// pgxCursor adapts pgx.Rows to export.Cursor.
type pgxCursor struct {
	rows pgx.Rows
	cols []string
}

func newPgxCursor(rows pgx.Rows) *pgxCursor {
	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	return &pgxCursor{rows: rows, cols: cols}
}

func (c *pgxCursor) Columns() []string      { return c.cols }
func (c *pgxCursor) Values() ([]any, error) { return c.rows.Values() }
func (c *pgxCursor) Next() bool             { return c.rows.Next() }
func (c *pgxCursor) Err() error             { return c.rows.Err() }

// Close reports only errors raised by the close itself; a query error seen
// during iteration belongs to Err.
func (c *pgxCursor) Close() error {
	if c.rows.Err() != nil {
		c.rows.Close()
		return nil
	}
	c.rows.Close()
	return c.rows.Err()
}
