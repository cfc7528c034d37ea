// Package config loads the export service configuration from environment
// variables, applying defaults and validating every setting up front.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Export   ExportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout of 0 leaves slow, throttled exports uncut.
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds one export request, delay included.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"10m"`
}

// Supported values of DatabaseConfig.Driver.
const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds record store settings.
type DatabaseConfig struct {
	// URL is the connection string, or a file path for sqlite.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// Driver selects the store: pgx (pool), postgres (lib/pq) or sqlite.
	Driver string `env:"DB_DRIVER" default:"pgx"`

	// Schema qualifies the clinic tables. Ignored by sqlite.
	Schema string `env:"DB_SCHEMA" default:"petclinic"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ExportConfig holds export pipeline settings.
type ExportConfig struct {
	// PageSize is rows per query for the paginated strategy.
	PageSize int `env:"EXPORT_PAGE_SIZE" default:"1"`

	// RowDelay is slept before every written row; 0 disables it.
	RowDelay time.Duration `env:"EXPORT_ROW_DELAY" default:"250ms"`

	// Timestamp adds the trailing "Export date" column.
	Timestamp bool `env:"EXPORT_TIMESTAMP" default:"true"`

	MaxConcurrent int           `env:"EXPORT_MAX_CONCURRENT" default:"4"`
	MaxWaitTime   time.Duration `env:"EXPORT_MAX_WAIT_TIME" default:"30s"`
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"60"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For / X-Real-IP headers are honored.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
