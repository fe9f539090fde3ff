// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

Load an optional .env file first, then parse flags:

	_ = cliparse.LoadDotEnv()
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags and Environment Variables

Flags fall back to environment variables, which fall back to defaults:

	-p             PORT           (default 3318)
	-d             DATABASE_URL   (required)
	-t             DATABASE_TYPE  sqlite | postgres (default sqlite)
	-jwt-secret    JWT_SECRET     (required)
	-jwt-ttl       JWT_TTL        (default 168h)
	-admin-code    ADMIN_CODE     (optional; admin routes fail without it)
	-email-domain  EMAIL_DOMAIN   (default brecht-schule.hamburg)
	               CORS_ORIGINS   comma separated
	               LOG_LEVEL      debug | info | warn | error
	               SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS,
	               SMTP_FROM, SMTP_FROM_NAME

CLI flags take precedence over environment variables. Mail is sent only
when SMTP_HOST, SMTP_USER and SMTP_PASS are all set; otherwise codes are
written to the log.
*/
package cliparse
