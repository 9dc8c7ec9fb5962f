// Package main provides a migration CLI for the Growloop database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/growloop/growloop/internal/config"
	"github.com/growloop/growloop/internal/migrate"
	"github.com/growloop/growloop/pkg/logger"
)

func usage() {
	fmt.Println("Usage: migrate <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up       Run all pending migrations")
	fmt.Println("  down     Roll back the last migration")
	fmt.Println("  status   Show migration status")
	fmt.Println("  version  Show current database version")
}

func main() {
	flag.Usage = usage
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	log := logger.NewLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Error("failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	sqldb := stdlib.OpenDBFromPool(pool)
	db := bun.NewDB(sqldb, pgdialect.New(), bun.WithDiscardUnknownColumns())
	defer db.Close()

	migrator := migrate.NewMigrator(db, log)

	if err := run(ctx, migrator, command); err != nil {
		log.Error("migration command failed",
			logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, migrator *migrate.Migrator, command string) error {
	switch command {
	case "up":
		return migrator.Up(ctx)
	case "down":
		return migrator.Down(ctx)
	case "status":
		return migrator.Status(ctx)
	case "version":
		version, err := migrator.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("database version: %d\n", version)
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}
