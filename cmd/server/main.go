package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/cutdesk/internal/config"
	"github.com/JonMunkholm/cutdesk/internal/core"
	_ "github.com/JonMunkholm/cutdesk/internal/core/entities" // Register all entities
	"github.com/JonMunkholm/cutdesk/internal/events"
	"github.com/JonMunkholm/cutdesk/internal/logging"
	"github.com/JonMunkholm/cutdesk/internal/permissions"
	"github.com/JonMunkholm/cutdesk/internal/store/memory"
	"github.com/JonMunkholm/cutdesk/internal/store/postgres"
	"github.com/JonMunkholm/cutdesk/internal/store/redisstore"
	"github.com/JonMunkholm/cutdesk/internal/web"
)

// stores are the storage collaborators for the configured driver.
type stores struct {
	records     core.Repository
	audit       core.AuditStore
	permissions permissions.Store
	pool        *pgxpool.Pool
}

func main() {
	// Load .env file if it exists (overwrites existing env vars)
	if ok, err := config.LoadEnvFile(".env"); err != nil {
		slog.Error("failed to read .env file", "error", err)
		os.Exit(1)
	} else if ok {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store_driver", cfg.Store.Driver,
		"max_concurrent_writes", cfg.Store.MaxConcurrentWrites,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	reg := core.Default()

	st, err := openStores(ctx, cfg, reg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	if st.pool != nil {
		defer st.pool.Close()
	}

	// Delete confirmations live in Redis when configured so every replica
	// can confirm a token another one issued.
	var confirmations core.ConfirmationStore = memory.NewConfirmations(nil)
	if cfg.Redis.URL != "" {
		rdb, err := redisstore.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		confirmations = redisstore.NewConfirmations(rdb, cfg.Redis.KeyPrefix)
		slog.Info("delete confirmations stored in redis", "prefix", cfg.Redis.KeyPrefix)
	}

	var publisher core.Publisher = events.LogPublisher{}
	var producer *events.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = events.NewProducer(slog.Default(), cfg.Kafka.Brokers, cfg.Kafka.Topic)
		publisher = producer
		slog.Info("change events published to kafka", "brokers", len(cfg.Kafka.Brokers), "topic", cfg.Kafka.Topic)
	}

	service, err := core.NewService(core.Options{
		DefaultPageSize: cfg.Store.DefaultPageSize,
		MaxPageSize:     cfg.Store.MaxPageSize,
		ConfirmTTL:      cfg.Confirm.TTL,
	}, core.Dependencies{
		Registry:      reg,
		Records:       st.records,
		Confirmations: confirmations,
		Audit:         st.audit,
		Publisher:     publisher,
		Limiter:       core.NewWriteLimiter(cfg.Store.MaxConcurrentWrites, cfg.Store.WriteWaitTime),
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	editor, err := permissions.NewEditor(ctx, permissions.DefaultCatalog(), st.permissions, service)
	if err != nil {
		slog.Error("failed to load permissions", "error", err)
		os.Exit(1)
	}
	service.SetPermissions(editor)

	slog.Info("entities registered",
		"count", reg.Count(),
		"groups", len(reg.Groups()),
	)

	server := web.NewServer(cfg, service, editor)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartRetentionScheduler(jobCtx, core.RetentionConfig{
		RetentionDays: cfg.Audit.RetentionDays,
		CheckInterval: cfg.Audit.CheckInterval,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for in-flight writes so their audit entries and events land
		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for writes to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("writes did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		if producer != nil {
			producer.Close()
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// openStores builds the record, audit and permission stores for the
// configured driver.
func openStores(ctx context.Context, cfg *config.Config, reg *core.Registry) (stores, error) {
	if cfg.Store.Driver == config.DriverMemory {
		records := memory.NewRecords()
		if cfg.Store.SeedDemo {
			if err := records.Seed(ctx, reg); err != nil {
				return stores{}, err
			}
			slog.Info("seeded static data", "entities", reg.Count())
		}
		return stores{
			records:     records,
			audit:       memory.NewAudit(),
			permissions: memory.NewPermissions(),
		}, nil
	}

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, cfg.Database.URL); err != nil {
			return stores{}, err
		}
	}

	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return stores{}, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if err := postgres.CheckSchema(ctx, pool, reg); err != nil {
		pool.Close()
		return stores{}, err
	}

	return stores{
		records:     postgres.NewRecords(pool),
		audit:       postgres.NewAudit(pool),
		permissions: postgres.NewPermissions(pool),
		pool:        pool,
	}, nil
}
