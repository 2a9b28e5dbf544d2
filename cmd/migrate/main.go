// Command migrate applies the goose SQL migrations to the Postgres store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"libraryadmin/internal/config"
	"libraryadmin/internal/logger"
	"libraryadmin/internal/platform/postgres"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	config.LoadEnvFiles()
	log := logger.New(logger.Config{Level: logger.ParseLevel(os.Getenv("LOG_LEVEL"))})
	slog.SetDefault(log.Logger)

	cfg, err := loadSettings()
	if err != nil {
		log.Error("invalid migration settings", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, *command, *name); err != nil {
		log.Error("migration failed", "command", *command, "error", err)
		os.Exit(1)
	}
}

func run(cfg settings, command, name string) error {
	dir := cfg.Dir

	if command == "create" {
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, name, "sql"); err != nil {
			return err
		}
		slog.Info("migration created", "name", name, "dir", dir)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", config.RedactDSN(cfg.DSN), err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		if err := goose.UpContext(ctx, db, dir); err != nil {
			return err
		}
		slog.Info("migrations applied", "dir", dir)
	case "down":
		if err := goose.DownContext(ctx, db, dir); err != nil {
			return err
		}
		slog.Info("migration rolled back", "dir", dir)
	case "status":
		return goose.StatusContext(ctx, db, dir)
	default:
		return fmt.Errorf("unknown command %q: use up, down, status or create", command)
	}
	return nil
}
