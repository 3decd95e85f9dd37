// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/featureboard/auth"
)

// SessionCookie is the cookie that carries the session token
const SessionCookie = "fb_session"

// SessionResolver maps a session token to the signed-in user.
// It returns auth.ErrNoSession for unknown or expired tokens.
type SessionResolver func(ctx context.Context, token string) (auth.Principal, error)

// SessionToken extracts the session token from the cookie or an
// "Authorization: Bearer" header. Returns "" when neither is present.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// WithSession attaches the caller's principal to the request context when
// a valid session token is present. Anonymous requests pass through untouched.
func WithSession(resolve SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, err := resolve(r.Context(), token)
			if errors.Is(err, auth.ErrNoSession) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.Error("failed to resolve session", "error", err)
				ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireSession rejects requests without a signed-in user
func RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.PrincipalFrom(r.Context()); err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}
