// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/featureboard/auth"
	"github.com/danielhkuo/featureboard/cliparse"
	"github.com/danielhkuo/featureboard/db"
	"github.com/danielhkuo/featureboard/middleware"
	"github.com/danielhkuo/featureboard/models"
)

type BoardHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewBoardHandler(db *sql.DB, cfg cliparse.Config) *BoardHandler {
	return &BoardHandler{db: db, cfg: cfg}
}

// CreateBoard handles POST /boards
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFrom(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateBoardRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	slug := strings.TrimSpace(req.Slug)
	if name == "" || slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name and slug are required")
		return
	}
	if err := auth.ValidateSlug(slug); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var taken bool
	err = h.db.QueryRowContext(r.Context(), `
		SELECT EXISTS(SELECT 1 FROM board WHERE slug = $1)
	`, slug).Scan(&taken)
	if err != nil {
		slog.Error("failed to check slug", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if taken {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Slug is already taken")
		return
	}

	now := db.Now()
	board := models.Board{
		ID:          auth.NewID(),
		Slug:        slug,
		Name:        name,
		Description: optional(req.Description),
		UserID:      p.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO board (id, slug, name, description, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, board.ID, board.Slug, board.Name, board.Description, board.UserID, board.CreatedAt, board.UpdatedAt)
	// Lost a race with another request for the same slug
	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Slug is already taken")
		return
	}
	if err != nil {
		slog.Error("failed to insert board", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	slog.Info("board created", "board_id", board.ID, "slug", board.Slug, "user_id", p.UserID)

	middleware.JSONResponse(w, http.StatusCreated, board)
}

// ListBoards handles GET /boards
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFrom(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	boards, err := ownerBoards(r.Context(), h.db, p.UserID)
	if err != nil {
		slog.Error("failed to list boards", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, boards)
}

// GetBoard handles GET /boards/{slug}
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, ok := h.boardFromPath(w, r)
	if !ok {
		return
	}

	h.respondWithFeatures(w, r, http.StatusOK, board)
}

// UpdateBoard handles PATCH /boards/{slug}
func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	board, ok := h.ownedBoardFromPath(w, r)
	if !ok {
		return
	}

	var req models.UpdateBoardRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		board.Name = name
	}
	if req.Description != nil {
		board.Description = optional(*req.Description)
	}
	board.UpdatedAt = db.Now()

	_, err := h.db.ExecContext(r.Context(), `
		UPDATE board SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, board.Name, board.Description, board.UpdatedAt, board.ID)
	if err != nil {
		slog.Error("failed to update board", "error", err, "board_id", board.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	slog.Info("board updated", "board_id", board.ID)

	h.respondWithFeatures(w, r, http.StatusOK, board)
}

// DeleteBoard handles DELETE /boards/{slug}. Features, votes and comments cascade.
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	board, ok := h.ownedBoardFromPath(w, r)
	if !ok {
		return
	}

	if _, err := h.db.ExecContext(r.Context(), `DELETE FROM board WHERE id = $1`, board.ID); err != nil {
		slog.Error("failed to delete board", "error", err, "board_id", board.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	slog.Info("board deleted", "board_id", board.ID)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Board deleted"})
}

func (h *BoardHandler) respondWithFeatures(w http.ResponseWriter, r *http.Request, status int, board models.Board) {
	features, err := queryFeatures(r.Context(), h.db, `
		WHERE f.board_id = $1
		ORDER BY f.created_at DESC, f.id DESC
	`, board.ID)
	if err != nil {
		slog.Error("failed to list features", "error", err, "board_id", board.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	board.FeatureCount = len(features)

	middleware.JSONResponse(w, status, models.BoardWithFeatures{Board: board, Features: features})
}

func (h *BoardHandler) boardFromPath(w http.ResponseWriter, r *http.Request) (models.Board, bool) {
	return boardFromPath(w, r, h.db)
}

func (h *BoardHandler) ownedBoardFromPath(w http.ResponseWriter, r *http.Request) (models.Board, bool) {
	return ownedBoardFromPath(w, r, h.db)
}

// boardFromPath loads the board named by the {slug} path value, writing a
// 404 or 500 and returning false when it cannot.
func boardFromPath(w http.ResponseWriter, r *http.Request, conn *sql.DB) (models.Board, bool) {
	slug := r.PathValue("slug")
	if slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return models.Board{}, false
	}

	board, err := boardBySlug(r.Context(), conn, slug)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Board not found")
		return models.Board{}, false
	}
	if err != nil {
		slog.Error("failed to query board", "error", err, "slug", slug)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return models.Board{}, false
	}
	return board, true
}

// ownedBoardFromPath is boardFromPath restricted to the signed-in owner.
// Anyone else gets 401.
func ownedBoardFromPath(w http.ResponseWriter, r *http.Request, conn *sql.DB) (models.Board, bool) {
	p, err := auth.PrincipalFrom(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return models.Board{}, false
	}

	board, ok := boardFromPath(w, r, conn)
	if !ok {
		return models.Board{}, false
	}
	if board.UserID != p.UserID {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return models.Board{}, false
	}
	return board, true
}

func boardBySlug(ctx context.Context, conn *sql.DB, slug string) (models.Board, error) {
	var b models.Board
	err := conn.QueryRowContext(ctx, `
		SELECT id, slug, name, description, user_id, created_at, updated_at
		FROM board WHERE slug = $1
	`, slug).Scan(&b.ID, &b.Slug, &b.Name, &b.Description, &b.UserID, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// ownerBoards lists a user's boards, newest first, with feature counts
func ownerBoards(ctx context.Context, conn *sql.DB, userID string) ([]models.Board, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT b.id, b.slug, b.name, b.description, b.user_id, b.created_at, b.updated_at,
			(SELECT COUNT(*) FROM feature f WHERE f.board_id = b.id) AS feature_count
		FROM board b
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query boards: %w", err)
	}
	defer rows.Close()

	boards := []models.Board{}
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.ID, &b.Slug, &b.Name, &b.Description, &b.UserID,
			&b.CreatedAt, &b.UpdatedAt, &b.FeatureCount); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// optional maps blank strings to NULL
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
