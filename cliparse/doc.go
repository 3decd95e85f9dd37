// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are layered: struct defaults, then an optional .env file, then the
process environment (read with cleanenv), then CLI flags.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string or SQLite file path (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - VisitorSalt: Secret for hashing visitor identities (required)
  - SessionTTL: Session lifetime (default: 720h)
  - CookieSecure: Mark the session cookie Secure
  - AllowedOrigins: CORS origins, comma separated (default: *)
  - LogLevel, LogFormat: slog level and text/json output
  - ShutdownTimeout, ReadTimeout, WriteTimeout: HTTP server timings

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type
	-visitor-salt  Visitor identity salt
	-env           dotenv file to load (default .env, missing is fine)

# Environment Variables

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	VISITOR_SALT   → -visitor-salt

SESSION_TTL, COOKIE_SECURE, ALLOWED_ORIGINS, LOG_LEVEL, LOG_FORMAT,
SHUTDOWN_TIMEOUT, READ_TIMEOUT and WRITE_TIMEOUT are environment only.

# Validation

ParseFlags returns an error if:

  - the port is outside 1-65535
  - DATABASE_URL is missing
  - DATABASE_TYPE is not sqlite or postgres
  - VISITOR_SALT is missing
*/
package cliparse
