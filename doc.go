// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Vote API server.

Quickly Vote runs yes/no polls for a school. Voters sign up with their
school email, confirm a six-digit code and then cast at most one ballot
per poll. The one-ballot rule is a UNIQUE constraint in the database, so
it holds across concurrent requests and multiple server instances.

# Starting the Server

Configuration comes from flags, environment variables or a .env file:

	DATABASE_URL=file:vote.db JWT_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -jwt-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file URL or PostgreSQL connection string
  - JWT_SECRET (-jwt-secret): Token signing secret

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - JWT_TTL (-jwt-ttl): Token lifetime (default: 168h)
  - ADMIN_CODE (-admin-code): Shared admin secret; admin routes fail without it
  - EMAIL_DOMAIN (-email-domain): Accepted school domain
  - CORS_ORIGINS: Comma-separated allowed origins (default: any)
  - LOG_LEVEL: debug, info, warn or error
  - SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM, SMTP_FROM_NAME:
    mail delivery; codes are only logged when unset

# Architecture

  - handlers: HTTP request handlers (accounts, polls, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Logging, CORS, bearer and admin checks, JSON helpers
  - account, voting: Services
  - identity, polls, ledger, results: Storage and aggregation
  - auth: Tokens, hashing, codes and email rules
  - notify: Log and SMTP delivery of codes
  - metrics: Prometheus collectors
  - db: Connections, migrations and constraint errors
  - cliparse: Configuration parsing

Schema migrations can also be driven by hand with cmd/migrator.
*/
package main
