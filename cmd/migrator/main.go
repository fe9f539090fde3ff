// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command migrator applies or rolls back the embedded schema migrations.
//
//	go run ./cmd/migrator -action up
//	go run ./cmd/migrator -action down -steps 1
//	go run ./cmd/migrator -action force -steps 1
//	go run ./cmd/migrator -action version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
)

func main() {
	if err := cliparse.LoadDotEnv(); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	var (
		action string
		steps  int
		dbURL  string
		dbType string
	)

	flag.StringVar(&action, "action", "up", "Migration action: up, down, force, version")
	flag.IntVar(&steps, "steps", 0, "Number of steps for up/down, target version for force")
	flag.StringVar(&dbURL, "d", os.Getenv("DATABASE_URL"), "Database URL")
	flag.StringVar(&dbType, "t", envOr("DATABASE_TYPE", db.TypeSQLite), "Database type (sqlite or postgres)")
	flag.Parse()

	if dbURL == "" {
		slog.Error("database URL is required (-d or DATABASE_URL)")
		os.Exit(1)
	}

	conn, err := db.Open(context.Background(), dbType, dbURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	m, err := db.NewMigrator(conn, dbType)
	if err != nil {
		slog.Error("migrator setup failed", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	switch action {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "force":
		err = m.Force(steps)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			slog.Error("reading version failed", "error", verr)
			os.Exit(1)
		}
		fmt.Printf("Version: %d, Dirty: %v\n", version, dirty)
		return
	default:
		slog.Error("unknown action", "action", action)
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		slog.Error("migration failed", "action", action, "error", err)
		os.Exit(1)
	}

	slog.Info("migration complete", "action", action)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
