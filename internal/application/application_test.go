package application

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/petclinic-export/internal/config"
	"github.com/JonMunkholm/petclinic-export/internal/export"
	"github.com/JonMunkholm/petclinic-export/internal/store"
)

type emptyCursor struct{}

func (emptyCursor) Columns() []string      { return nil }
func (emptyCursor) Values() ([]any, error) { return nil, nil }
func (emptyCursor) Next() bool             { return false }
func (emptyCursor) Err() error             { return nil }
func (emptyCursor) Close() error           { return nil }

type stubBackend struct {
	closed bool
}

func (b *stubBackend) Query(ctx context.Context) (export.Cursor, error) { return emptyCursor{}, nil }
func (b *stubBackend) QueryPage(ctx context.Context, limit, offset int) (export.Cursor, error) {
	return emptyCursor{}, nil
}
func (b *stubBackend) Ping(ctx context.Context) error { return nil }
func (b *stubBackend) Close() error {
	b.closed = true
	return nil
}

func stubOpen(t *testing.T, b *stubBackend, err error) *export.Layout {
	t.Helper()
	var got export.Layout
	orig := openBackend
	openBackend = func(ctx context.Context, cfg config.DatabaseConfig, layout export.Layout) (store.Backend, error) {
		got = layout
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	t.Cleanup(func() { openBackend = orig })
	return &got
}

func TestOpen(t *testing.T) {
	b := &stubBackend{}
	layout := stubOpen(t, b, nil)

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite},
		Export:   config.ExportConfig{PageSize: 1, Timestamp: false},
	}
	app, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if layout.Width() != 8 {
		t.Errorf("layout width = %d, want 8", layout.Width())
	}

	var buf bytes.Buffer
	if _, err := app.Exporter.Export(context.Background(), export.StrategyStream, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "First name,") {
		t.Errorf("body = %q", buf.String())
	}

	if err := app.Close(); err != nil || !b.closed {
		t.Errorf("Close() = %v, closed = %v", err, b.closed)
	}
}

func TestOpen_BackendError(t *testing.T) {
	stubOpen(t, nil, errors.New("connection refused"))

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverPgx},
		Export:   config.ExportConfig{PageSize: 1},
	}
	_, err := Open(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "open pgx store") {
		t.Fatalf("Open() error = %v", err)
	}
}

func TestOpen_BadPageSizeClosesBackend(t *testing.T) {
	b := &stubBackend{}
	stubOpen(t, b, nil)

	cfg := &config.Config{Export: config.ExportConfig{PageSize: 0}}
	_, err := Open(context.Background(), cfg)

	var cfgErr *export.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Open() error = %v, want ConfigurationError", err)
	}
	if !b.closed {
		t.Error("backend left open")
	}
}
