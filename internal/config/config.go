// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	CORS     CORSConfig
	Logging  LoggingConfig
	Audit    AuditConfig
	Confirm  ConfirmConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envDefault:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required for the postgres driver)
	// DB_URL is accepted as a fallback.
	URL string `env:"DATABASE_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" envDefault:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" envDefault:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`

	// ConnectTimeout bounds dialing a new connection (default: 5s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`

	// Migrate runs embedded migrations on startup (default: true)
	Migrate bool `env:"DB_MIGRATE" envDefault:"true"`
}

// StoreConfig selects where records live.
type StoreConfig struct {
	// Driver is "postgres" or "memory" (default: postgres)
	Driver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// SeedDemo loads each entity's static rows into an empty memory store (default: true)
	SeedDemo bool `env:"STORE_SEED_DEMO" envDefault:"true"`

	// DefaultPageSize is used when a list request has no limit (default: 10)
	DefaultPageSize int `env:"STORE_DEFAULT_PAGE_SIZE" envDefault:"10"`

	// MaxPageSize caps the limit a client may ask for (default: 100)
	MaxPageSize int `env:"STORE_MAX_PAGE_SIZE" envDefault:"100"`

	// MaxConcurrentWrites bounds parallel mutations (default: 8)
	MaxConcurrentWrites int `env:"STORE_MAX_CONCURRENT_WRITES" envDefault:"8"`

	// WriteWaitTime is how long a mutation waits for a write slot (default: 10s)
	WriteWaitTime time.Duration `env:"STORE_WRITE_WAIT_TIME" envDefault:"10s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" envDefault:"100"`

	// WriteLimit is requests per minute for mutating endpoints (default: 30)
	WriteLimit int `env:"RATE_LIMIT_WRITES" envDefault:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" envDefault:"true"`

	// RequireAPIKey gates /api behind the X-API-Key header (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" envDefault:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// CORSConfig holds cross-origin settings for the browser dashboard.
type CORSConfig struct {
	// AllowedOrigins is a comma-separated list of dashboard origins (default: http://localhost:3000)
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// AuditConfig holds audit log retention settings.
type AuditConfig struct {
	// RetentionDays is how long audit entries are kept (default: 365)
	RetentionDays int `env:"AUDIT_RETENTION_DAYS" envDefault:"365"`

	// CheckInterval is how often the retention job runs (default: 24h)
	CheckInterval time.Duration `env:"AUDIT_CHECK_INTERVAL" envDefault:"24h"`
}

// ConfirmConfig holds delete confirmation settings.
type ConfirmConfig struct {
	// TTL is how long a pending delete confirmation stays valid (default: 5m)
	TTL time.Duration `env:"CONFIRM_TTL" envDefault:"5m"`
}

// RedisConfig holds the optional Redis connection used for delete confirmations.
type RedisConfig struct {
	// URL is a redis:// connection string; empty keeps confirmations in memory
	URL string `env:"REDIS_URL"`

	// KeyPrefix namespaces confirmation keys (default: cutdesk:confirm:)
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"cutdesk:confirm:"`
}

// KafkaConfig holds the optional change event publisher settings.
type KafkaConfig struct {
	// Brokers is a comma-separated broker list; empty disables publishing
	Brokers []string `env:"KAFKA_BROKERS"`

	// Topic receives record and permission change events (default: cutdesk.changes)
	Topic string `env:"KAFKA_TOPIC" envDefault:"cutdesk.changes"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
