package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/petclinic-export/internal/application"
	"github.com/JonMunkholm/petclinic-export/internal/config"
	"github.com/JonMunkholm/petclinic-export/internal/logging"
	"github.com/JonMunkholm/petclinic-export/internal/web"
)

func main() {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"export_max_concurrent", cfg.Export.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	app, err := application.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open export pipeline", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	server := web.NewServer(app.Exporter, app.Backend, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run returns once in-flight exports have drained, so the backend is
	// still open for them.
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
	}
}
