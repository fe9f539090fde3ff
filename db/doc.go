// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and manages its schema.

# Connections

Open accepts "postgres" or "sqlite":

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections enable foreign keys and a busy timeout and use a single
pooled connection. That makes SQLite suitable for one server instance and for
tests; run several instances only against PostgreSQL.

# Schema

Migrations are embedded from migrations/ and applied with golang-migrate:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

The same SQL is valid for both dialects.

# Tables

  - identity: accounts, email UNIQUE, verification state
  - poll: title, optional question, active flag
  - ballot: one row per (poll_id, identity_id), choice yes|no

Relations:

	poll 1──* ballot *──1 identity

Both ballot foreign keys use ON DELETE CASCADE.

# Constraint errors

IsUniqueViolation and IsForeignKeyViolation classify driver errors from
lib/pq and modernc.org/sqlite so callers can turn a rejected insert into a
domain outcome.
*/
package db
