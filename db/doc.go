// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections and schema migrations.

# Connections

Open selects the driver from the DATABASE_TYPE setting:

	conn, err := db.Open(db.DriverSQLite, "featureboard.db")
	conn, err := db.Open(db.DriverPostgres, "postgres://...")

SQLite connections are opened with foreign keys enabled, a 5s busy
timeout, WAL journaling and BEGIN IMMEDIATE transactions.

# Migrations

Migrate applies the embedded SQL files for the chosen dialect:

	if err := db.Migrate(conn, db.DriverPostgres); err != nil {
		log.Fatal(err)
	}

Files live under migrations/postgres and migrations/sqlite and must be
kept in step.

# Tables

  - app_user: Registered board owners
  - session: Login sessions (token -> user)
  - board: Feature boards, unique slug
  - feature: Feature requests on a board
  - vote: One vote per visitor per feature
  - comment: Append-only comments on a feature

# Relationships

	app_user 1──* session
	app_user 1──* board
	board 1──* feature
	feature 1──* vote
	feature 1──* comment

All foreign keys use ON DELETE CASCADE.

# Constraint Errors

IsUniqueViolation recognises unique and primary key failures from
lib/pq (SQLSTATE 23505) and modernc sqlite (extended result codes), so
handlers never match on error text.
*/
package db
