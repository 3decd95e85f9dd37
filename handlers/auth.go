// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/featureboard/auth"
	"github.com/danielhkuo/featureboard/cliparse"
	"github.com/danielhkuo/featureboard/db"
	"github.com/danielhkuo/featureboard/middleware"
	"github.com/danielhkuo/featureboard/models"
)

type AuthHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || req.Email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	user := models.User{
		ID:           auth.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    db.Now(),
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO app_user (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Email is already registered")
		return
	}
	if err != nil {
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	token, expiresAt, err := h.createSession(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}
	h.setSessionCookie(w, token, expiresAt)

	slog.Info("user registered", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.AuthResponse{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var user models.User
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, name, email, password_hash, created_at
		FROM app_user WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(req.Email))).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, expiresAt, err := h.createSession(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	h.setSessionCookie(w, token, expiresAt)

	slog.Info("user logged in", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, models.AuthResponse{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Logout handles POST /auth/logout. Succeeds even without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if _, err := h.db.ExecContext(r.Context(), `DELETE FROM session WHERE token = $1`, token); err != nil {
			slog.Error("failed to delete session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Logged out"})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFrom(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var user models.User
	err = h.db.QueryRowContext(r.Context(), `
		SELECT id, name, email, created_at FROM app_user WHERE id = $1
	`, p.UserID).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.UserResponse{User: user})
}

// ResolveSession looks up an unexpired session. It satisfies middleware.SessionResolver.
func (h *AuthHandler) ResolveSession(ctx context.Context, token string) (auth.Principal, error) {
	var p auth.Principal
	err := h.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email
		FROM session s
		JOIN app_user u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > $2
	`, token, db.Now()).Scan(&p.UserID, &p.Name, &p.Email)
	if err == sql.ErrNoRows {
		return auth.Principal{}, auth.ErrNoSession
	}
	if err != nil {
		return auth.Principal{}, fmt.Errorf("failed to resolve session: %w", err)
	}
	return p, nil
}

func (h *AuthHandler) createSession(ctx context.Context, userID string) (string, time.Time, error) {
	token := auth.NewSessionToken()
	now := db.Now()
	expiresAt := now.Add(h.cfg.SessionTTL)

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO session (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token, userID, now, expiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return token, expiresAt, nil
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
