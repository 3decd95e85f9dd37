// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/featureboard/auth"
	"github.com/danielhkuo/featureboard/cliparse"
	"github.com/danielhkuo/featureboard/middleware"
	"github.com/danielhkuo/featureboard/models"
)

type DashboardHandler struct {
	db  *sql.DB
	cfg cliparse.Config

	// now is swapped in tests to pin the month boundary
	now func() time.Time
}

func NewDashboardHandler(db *sql.DB, cfg cliparse.Config) *DashboardHandler {
	return &DashboardHandler{db: db, cfg: cfg, now: time.Now}
}

// GetDashboard handles GET /dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFrom(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var exists bool
	err = h.db.QueryRowContext(r.Context(), `
		SELECT EXISTS(SELECT 1 FROM app_user WHERE id = $1)
	`, p.UserID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query user", "error", err, "user_id", p.UserID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	var resp models.DashboardResponse
	monthStart := MonthStart(h.now())

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		boards, err := ownerBoards(ctx, h.db, p.UserID)
		resp.Boards = boards
		return err
	})
	g.Go(func() error {
		stats, err := OwnerStats(ctx, h.db, p.UserID, monthStart)
		resp.Stats = stats
		return err
	})
	g.Go(func() error {
		feed, err := RecentActivity(ctx, h.db, p.UserID)
		resp.RecentActivity = feed
		return err
	})

	// No partial dashboards
	if err := g.Wait(); err != nil {
		slog.Error("failed to build dashboard", "error", err, "user_id", p.UserID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
