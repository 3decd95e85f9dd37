// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the featureboard API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AuthHandler: Registration, login, logout and session lookup
  - BoardHandler: Board lifecycle (owner-scoped)
  - FeatureHandler: Feature requests on a board
  - VoteHandler: Up/down vote toggling
  - CommentHandler: Comments on a feature
  - DashboardHandler: Owner stats and activity feed

Handlers are created via constructor functions that accept *sql.DB and Config:

	boardHandler := handlers.NewBoardHandler(db, cfg)

# Ownership

Board PATCH/DELETE and feature PATCH/DELETE are restricted to the board
owner. Callers without a session, and signed-in users who do not own the
board, both get 401.

# Voting

CastVote keeps at most one vote per (feature, visitor):

	no vote          -> insert        count+1
	opposite vote    -> flip in place count unchanged
	same-direction   -> delete        count-1

Visitors are identified by the first X-Forwarded-For address, hashed
with VISITOR_SALT. Losing a concurrent insert race answers 409.

# Dashboard

GetDashboard fans out the board list, six counts (OwnerStats) and the
activity feed (RecentActivity) under one errgroup. Any failure fails the
whole response. "This month" starts at MonthStart(time.Now()).

The activity feed runs one query per kind and merges them with
MergeActivity, newest first, ties broken by id, capped at ActivityLimit.
*/
package handlers
