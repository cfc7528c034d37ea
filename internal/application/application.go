// Package application assembles the export pipeline from configuration:
// the store backend, the source over it and the exporter both the HTTP
// server and the CLI drive.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/petclinic-export/internal/config"
	"github.com/JonMunkholm/petclinic-export/internal/export"
	"github.com/JonMunkholm/petclinic-export/internal/store"
)

// App owns the opened backend. Close it when done.
type App struct {
	Backend  store.Backend
	Exporter *export.Exporter
}

// openBackend is swapped in tests.
var openBackend = store.Open

// Open connects the configured database and builds the exporter.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	layout := export.NewLayout(cfg.Export.Timestamp)

	backend, err := openBackend(ctx, cfg.Database, layout)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}

	exporter, err := NewExporter(backend, layout, cfg.Export)
	if err != nil {
		backend.Close()
		return nil, err
	}

	slog.Info("export pipeline ready",
		"driver", cfg.Database.Driver,
		"columns", layout.Width(),
		"page_size", cfg.Export.PageSize,
		"row_delay", cfg.Export.RowDelay,
	)
	return &App{Backend: backend, Exporter: exporter}, nil
}

// NewExporter wires an exporter over s with the configured paging and delay.
func NewExporter(s export.Store, layout export.Layout, cfg config.ExportConfig) (*export.Exporter, error) {
	return export.NewExporter(export.NewSource(s, layout), export.Options{
		PageSize: cfg.PageSize,
		Throttle: export.FixedDelay(cfg.RowDelay),
	})
}

// Close releases the backend.
func (a *App) Close() error {
	return a.Backend.Close()
}
