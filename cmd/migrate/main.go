package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pratik-mahalle/mediremind/internal/config"
	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
	"github.com/pratik-mahalle/mediremind/internal/repository/postgres"
	"github.com/pratik-mahalle/mediremind/migrations"
)

const usage = "usage: migrate [up|status]"

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	log := logger.New(logger.Config{Level: "info", Format: "console", Output: os.Stderr})

	switch cmd {
	case "up":
		if err := postgres.RunMigrations(ctx, db, migrations.GetFS(), log); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			db.Close()
			os.Exit(1)
		}
		fallthrough
	case "status":
		version, err := postgres.MigrationVersion(ctx, db, migrations.GetFS())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read schema version: %v\n", err)
			db.Close()
			os.Exit(1)
		}
		fmt.Printf("%s database at schema version %d\n", db.Driver, version)
	default:
		fmt.Fprintln(os.Stderr, usage)
		db.Close()
		os.Exit(2)
	}
}
