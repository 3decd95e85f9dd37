// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	r.Get("/health", middleware.WithLogging(handler))

Logs request start (method, path, remote, request_id) and completion
(status, duration_ms). The request id comes from chi's RequestID
middleware when it is installed.

# CORS Middleware

Enable cross-origin requests for the configured origins:

	r.Use(middleware.CORS(cfg.AllowedOrigins))

"*" allows any origin. Matching origins are echoed back with
credentials allowed, so the session cookie works cross-origin.

# Sessions

WithSession resolves the session cookie (fb_session) or a Bearer token
into an auth.Principal on the request context:

	r.Use(middleware.WithSession(authHandler.ResolveSession))
	r.Get("/boards", middleware.RequireSession(boardHandler.ListBoards))

RequireSession answers 401 when no principal is present.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CreateBoardRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client Addresses

	ip := middleware.GetClientIP(r)        // logging: XFF, X-Real-IP, RemoteAddr
	who := middleware.VisitorIdentity(r)   // voting: first XFF entry or "unknown"

Visitors without X-Forwarded-For all share the "unknown" identity.
*/
package middleware
