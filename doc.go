// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the featureboard API server.

featureboard hosts feature-request boards: owners create boards, visitors
submit ideas, vote them up or down and comment, and owners follow it all
from a dashboard.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=featureboard.db VISITOR_SALT=... go run .

Or against PostgreSQL with flags:

	go run . -t postgres -d "postgres://..." -visitor-salt ...

Migrations are embedded and applied on every start.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers plus the vote toggler, stats and activity feed
  - router: chi route definitions
  - middleware: CORS, logging, sessions, JSON helpers
  - models: Request/response and domain types
  - auth: IDs, passwords, visitor hashing, request principal
  - render: Markdown to sanitized HTML
  - db: Connections, migrations, driver error classification
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
