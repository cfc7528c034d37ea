package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"  // registers "postgres"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/JonMunkholm/petclinic-export/internal/config"
	"github.com/JonMunkholm/petclinic-export/internal/export"
)

// sqlOpen is swapped in tests.
var sqlOpen = sql.Open

// OpenDB opens and pings a database/sql handle for driver ("postgres" or
// "sqlite").
func OpenDB(ctx context.Context, driver string, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sqlOpen(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	return db, nil
}

// SQLStore runs the projection through database/sql.
type SQLStore struct {
	db      *sql.DB
	queries Queries
}

// NewSQLStore renders dialect's projection of layout for db.
func NewSQLStore(db *sql.DB, dialect Dialect, layout export.Layout) (*SQLStore, error) {
	q, err := dialect.Build(layout)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, queries: q}, nil
}

func (s *SQLStore) Query(ctx context.Context) (export.Cursor, error) {
	return s.query(ctx, s.queries.All)
}

func (s *SQLStore) QueryPage(ctx context.Context, limit, offset int) (export.Cursor, error) {
	return s.query(ctx, s.queries.Page, limit, offset)
}

func (s *SQLStore) query(ctx context.Context, q string, args ...any) (export.Cursor, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("read columns: %w", err)
	}
	return &sqlCursor{rows: rows, cols: cols}, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// sqlCursor adapts *sql.Rows to export.Cursor.
type sqlCursor struct {
	rows *sql.Rows
	cols []string
}

func (c *sqlCursor) Columns() []string { return c.cols }
func (c *sqlCursor) Next() bool        { return c.rows.Next() }
func (c *sqlCursor) Err() error        { return c.rows.Err() }
func (c *sqlCursor) Close() error      { return c.rows.Close() }

// Values scans the current row into driver values.
func (c *sqlCursor) Values() ([]any, error) {
	vals := make([]any, len(c.cols))
	ptrs := make([]any, len(c.cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return vals, nil
}
