// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// NewMigrator returns a migrator bound to conn.
// Do not Close it: the database drivers close the underlying *sql.DB.
func NewMigrator(conn *sql.DB, dbType string) (*migrate.Migrate, error) {
	const op = "db.NewMigrator"

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var driver database.Driver
	switch dbType {
	case TypePostgres:
		driver, err = migratepg.WithInstance(conn, &migratepg.Config{})
	case TypeSQLite:
		driver, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	default:
		return nil, fmt.Errorf("%s: unsupported database type %q", op, dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dbType, driver)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// CreateSchema applies every pending migration.
// Safe to call on every start - an up-to-date schema is a no-op.
func CreateSchema(conn *sql.DB, dbType string) error {
	m, err := NewMigrator(conn, dbType)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
