// Package postgres stores records, audit entries and the permission matrix
// in PostgreSQL. Each entity has its own table with one typed column per
// field; the schema is applied by embedded goose migrations.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"

	// database/sql driver for migrations
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JonMunkholm/cutdesk/internal/config"
	"github.com/JonMunkholm/cutdesk/internal/core"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Connect opens a pool sized from cfg and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil && !errors.Is(err, goose.ErrNoNextVersion) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// CheckSchema reports every registered field that has no column in its
// entity's table. A missing column means the migrations are behind the
// entity declarations.
func CheckSchema(ctx context.Context, pool *pgxpool.Pool, reg *core.Registry) error {
	rows, err := pool.Query(ctx, `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema()`)
	if err != nil {
		return fmt.Errorf("read columns: %w", err)
	}
	defer rows.Close()

	have := make(map[string]map[string]bool)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return fmt.Errorf("scan column: %w", err)
		}
		if have[table] == nil {
			have[table] = make(map[string]bool)
		}
		have[table][column] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read columns: %w", err)
	}

	var missing []string
	for _, def := range reg.All() {
		cols, ok := have[def.Info.Table]
		if !ok {
			missing = append(missing, def.Info.Table)
			continue
		}
		for _, f := range def.Fields {
			if !cols[f.Column()] {
				missing = append(missing, def.Info.Table+"."+f.Column())
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("schema is missing %v", missing)
	}

	slog.DebugContext(ctx, "schema matches entity declarations", "entities", reg.Count())
	return nil
}
