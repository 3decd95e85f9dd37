// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the featureboard API.

# Route Registration

NewRouter creates a configured chi router with all endpoints:

	mux := router.NewRouter(db, cfg)

Every request passes through RequestID, Recoverer, CORS and the session
resolver, in that order.

# Endpoints

Operational:

	GET /health - 200 when the database answers a ping, else 503
	GET /       - Version banner

Accounts:

	POST /auth/register
	POST /auth/login
	POST /auth/logout
	GET  /auth/me        (session)

Boards:

	POST   /boards        (session) - Create board
	GET    /boards        (session) - List own boards
	GET    /boards/{slug}           - Board with features
	PATCH  /boards/{slug} (owner)   - Rename / describe
	DELETE /boards/{slug} (owner)   - Delete with everything under it

Features, votes, comments (public unless noted):

	POST   /boards/{slug}/features
	GET    /boards/{slug}/features?status=&sort=votes|comments|createdAt&order=asc|desc
	GET    /boards/{slug}/features/{id}
	PATCH  /boards/{slug}/features/{id}          (owner) - Set status
	DELETE /boards/{slug}/features/{id}          (owner)
	POST   /boards/{slug}/features/{id}/vote
	POST   /boards/{slug}/features/{id}/comments
	GET    /boards/{slug}/features/{id}/comments

Owner views:

	GET /features  (session) - Features across own boards
	GET /dashboard (session) - Stats and activity feed
*/
package router
