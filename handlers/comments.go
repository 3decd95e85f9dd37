// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/featureboard/auth"
	"github.com/danielhkuo/featureboard/cliparse"
	"github.com/danielhkuo/featureboard/db"
	"github.com/danielhkuo/featureboard/middleware"
	"github.com/danielhkuo/featureboard/models"
	"github.com/danielhkuo/featureboard/render"
)

type CommentHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewCommentHandler(db *sql.DB, cfg cliparse.Config) *CommentHandler {
	return &CommentHandler{db: db, cfg: cfg}
}

// CreateComment handles POST /boards/{slug}/features/{id}/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	board, ok := boardFromPath(w, r, h.db)
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	content := strings.TrimSpace(req.Content)
	authorName := strings.TrimSpace(req.AuthorName)
	if content == "" || authorName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "content and author_name are required")
		return
	}

	feature, ok := featureFromPath(w, r, h.db, board)
	if !ok {
		return
	}

	comment := models.Comment{
		ID:          auth.NewID(),
		FeatureID:   feature.ID,
		Content:     content,
		AuthorName:  authorName,
		AuthorEmail: optional(req.AuthorEmail),
		CreatedAt:   db.Now(),
	}

	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO comment (id, feature_id, content, author_name, author_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, comment.ID, comment.FeatureID, comment.Content, comment.AuthorName, comment.AuthorEmail, comment.CreatedAt)
	if err != nil {
		slog.Error("failed to insert comment", "error", err, "feature_id", feature.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	comment.ContentHTML = render.Markdown(comment.Content)
	comment.Ago = humanize.Time(comment.CreatedAt)

	slog.Info("comment added", "comment_id", comment.ID, "feature_id", feature.ID)

	middleware.JSONResponse(w, http.StatusCreated, comment)
}

// ListComments handles GET /boards/{slug}/features/{id}/comments, newest first
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	board, ok := boardFromPath(w, r, h.db)
	if !ok {
		return
	}

	feature, ok := featureFromPath(w, r, h.db, board)
	if !ok {
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, feature_id, content, author_name, author_email, created_at
		FROM comment
		WHERE feature_id = $1
		ORDER BY created_at DESC, id DESC
	`, feature.ID)
	if err != nil {
		slog.Error("failed to query comments", "error", err, "feature_id", feature.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.FeatureID, &c.Content, &c.AuthorName, &c.AuthorEmail, &c.CreatedAt); err != nil {
			slog.Error("failed to scan comment", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
		c.ContentHTML = render.Markdown(c.Content)
		c.Ago = humanize.Time(c.CreatedAt)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate comments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, comments)
}
