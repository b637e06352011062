// Command seed loads each entity's static rows into a running server
// through its REST API. Entities that already hold records are skipped
// unless -force is given. Name entities as arguments to seed only those.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/JonMunkholm/cutdesk/internal/apiclient"
	"github.com/JonMunkholm/cutdesk/internal/config"
	"github.com/JonMunkholm/cutdesk/internal/core"
	_ "github.com/JonMunkholm/cutdesk/internal/core/entities" // Register all entities
	"github.com/JonMunkholm/cutdesk/internal/logging"
)

func main() {
	force := flag.Bool("force", false, "seed entities that already have records")
	flag.Parse()

	if _, err := config.LoadEnvFile(".env"); err != nil {
		slog.Error("failed to read .env file", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	cfg, err := apiclient.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	client, err := apiclient.New(cfg)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed := 0
	for _, def := range core.Default().All() {
		if flag.NArg() > 0 && !slices.Contains(flag.Args(), def.Info.Key) {
			continue
		}
		if err := seedEntity(ctx, client, def, *force); err != nil {
			slog.Error("seed failed", "entity", def.Info.Key, "error", err)
			failed++
		}
		if ctx.Err() != nil {
			break
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func seedEntity(ctx context.Context, client *apiclient.Client, def *core.EntityDefinition, force bool) error {
	log := slog.With("entity", def.Info.Key)

	page, err := client.List(ctx, def.Info.Key, apiclient.ListOptions{Limit: 1})
	if err != nil {
		return err
	}
	if page.Pagination.Total > 0 && !force {
		log.Info("skipping, entity has records", "total", page.Pagination.Total)
		return nil
	}

	created := 0
	for i, row := range def.Seed {
		if _, err := client.Create(ctx, def.Info.Key, map[string]any(row.Clone())); err != nil {
			log.Warn("row rejected", "row", i+1, "error", err)
			continue
		}
		created++
	}
	log.Info("seeded", "created", created, "rows", len(def.Seed))
	return nil
}
