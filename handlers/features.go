// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/featureboard/auth"
	"github.com/danielhkuo/featureboard/cliparse"
	"github.com/danielhkuo/featureboard/db"
	"github.com/danielhkuo/featureboard/middleware"
	"github.com/danielhkuo/featureboard/models"
	"github.com/danielhkuo/featureboard/render"
)

// Whitelisted sort keys for GET /boards/{slug}/features
var featureSortColumns = map[string]string{
	"votes":     "vote_count",
	"comments":  "comment_count",
	"createdAt": "f.created_at",
}

// featureSelect returns features with their board and live counts.
// Callers append WHERE/ORDER BY.
const featureSelect = `
	SELECT f.id, f.board_id, b.name, b.slug, f.title, f.description, f.status,
		f.category, f.tags, f.priority, f.author_name, f.author_email,
		f.created_at, f.updated_at,
		(SELECT COUNT(*) FROM vote v WHERE v.feature_id = f.id) AS vote_count,
		(SELECT COUNT(*) FROM vote v WHERE v.feature_id = f.id AND v.is_downvote = FALSE) AS upvotes,
		(SELECT COUNT(*) FROM vote v WHERE v.feature_id = f.id AND v.is_downvote = TRUE) AS downvotes,
		(SELECT COUNT(*) FROM comment c WHERE c.feature_id = f.id) AS comment_count
	FROM feature f
	JOIN board b ON b.id = f.board_id
`

type FeatureHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewFeatureHandler(db *sql.DB, cfg cliparse.Config) *FeatureHandler {
	return &FeatureHandler{db: db, cfg: cfg}
}

// CreateFeature handles POST /boards/{slug}/features
func (h *FeatureHandler) CreateFeature(w http.ResponseWriter, r *http.Request) {
	board, ok := boardFromPath(w, r, h.db)
	if !ok {
		return
	}

	var req models.CreateFeatureRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Priority < models.MinPriority || req.Priority > models.MaxPriority {
		middleware.ErrorResponse(w, http.StatusBadRequest, "priority must be between 0 and 3")
		return
	}

	tags := []string{}
	for _, tag := range req.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		slog.Error("failed to encode tags", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	// Signed-in users submit under their account; everyone else names themselves
	authorName := strings.TrimSpace(req.AuthorName)
	authorEmail := optional(req.AuthorEmail)
	if p, err := auth.PrincipalFrom(r.Context()); err == nil {
		authorName = p.Name
		email := p.Email
		authorEmail = &email
	}
	if authorName == "" {
		authorName = "Anonymous"
	}

	now := db.Now()
	feature := models.Feature{
		ID:          auth.NewID(),
		BoardID:     board.ID,
		BoardName:   board.Name,
		BoardSlug:   board.Slug,
		Title:       title,
		Description: optional(req.Description),
		Status:      models.StatusOpen,
		Category:    optional(req.Category),
		Tags:        tags,
		Priority:    req.Priority,
		AuthorName:  authorName,
		AuthorEmail: authorEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO feature (id, board_id, title, description, status, category, tags,
			priority, author_name, author_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, feature.ID, feature.BoardID, feature.Title, feature.Description, feature.Status,
		feature.Category, string(tagsJSON), feature.Priority, feature.AuthorName,
		feature.AuthorEmail, feature.CreatedAt, feature.UpdatedAt)
	if err != nil {
		slog.Error("failed to insert feature", "error", err, "board_id", board.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	slog.Info("feature created", "feature_id", feature.ID, "board_id", board.ID)

	middleware.JSONResponse(w, http.StatusCreated, feature)
}

// ListFeatures handles GET /boards/{slug}/features?status=&sort=&order=
func (h *FeatureHandler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	board, ok := boardFromPath(w, r, h.db)
	if !ok {
		return
	}

	q := r.URL.Query()

	sortKey := q.Get("sort")
	if sortKey == "" {
		sortKey = "votes"
	}
	column, ok := featureSortColumns[sortKey]
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "sort must be one of votes, comments, createdAt")
		return
	}

	order := strings.ToLower(q.Get("order"))
	switch order {
	case "":
		order = "desc"
	case "asc", "desc":
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}

	where := `WHERE f.board_id = $1`
	args := []interface{}{board.ID}
	if status := q.Get("status"); status != "" {
		where += ` AND f.status = $2`
		args = append(args, status)
	}

	// Both values come from the whitelists above; id keeps ties in insertion order
	clause := where + ` ORDER BY ` + column + ` ` + strings.ToUpper(order) + `, f.id ASC`

	features, err := queryFeatures(r.Context(), h.db, clause, args...)
	if err != nil {
		slog.Error("failed to list features", "error", err, "board_id", board.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, features)
}

// GetFeature handles GET /boards/{slug}/features/{id}
func (h *FeatureHandler) GetFeature(w http.ResponseWriter, r *http.Request) {
	board, ok := boardFromPath(w, r, h.db)
	if !ok {
		return
	}

	feature, ok := featureFromPath(w, r, h.db, board)
	if !ok {
		return
	}

	detail := models.FeatureDetail{Feature: feature}
	if feature.Description != nil {
		detail.DescriptionHTML = render.Markdown(*feature.Description)
	}

	visitorHash := auth.HashVisitor(middleware.VisitorIdentity(r), h.cfg.VisitorSalt)
	var isDownvote bool
	err := h.db.QueryRowContext(r.Context(), `
		SELECT is_downvote FROM vote WHERE feature_id = $1 AND visitor_hash = $2
	`, feature.ID, visitorHash).Scan(&isDownvote)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		slog.Error("failed to query visitor vote", "error", err, "feature_id", feature.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	default:
		detail.HasVoted = true
		detail.IsDownvote = &isDownvote
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}

// UpdateFeature handles PATCH /boards/{slug}/features/{id}. Only the status can change.
func (h *FeatureHandler) UpdateFeature(w http.ResponseWriter, r *http.Request) {
	board, ok := ownedBoardFromPath(w, r, h.db)
	if !ok {
		return
	}

	var req models.UpdateFeatureRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "status is required")
		return
	}

	featureID := r.PathValue("id")
	result, err := h.db.ExecContext(r.Context(), `
		UPDATE feature SET status = $1, updated_at = $2
		WHERE id = $3 AND board_id = $4
	`, status, db.Now(), featureID, board.ID)
	if err != nil {
		slog.Error("failed to update feature", "error", err, "feature_id", featureID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if !requireAffected(w, result, "Feature not found") {
		return
	}

	feature, ok := featureFromPath(w, r, h.db, board)
	if !ok {
		return
	}

	slog.Info("feature status updated", "feature_id", feature.ID, "status", status)

	middleware.JSONResponse(w, http.StatusOK, feature)
}

// DeleteFeature handles DELETE /boards/{slug}/features/{id}
func (h *FeatureHandler) DeleteFeature(w http.ResponseWriter, r *http.Request) {
	board, ok := ownedBoardFromPath(w, r, h.db)
	if !ok {
		return
	}

	featureID := r.PathValue("id")
	result, err := h.db.ExecContext(r.Context(), `
		DELETE FROM feature WHERE id = $1 AND board_id = $2
	`, featureID, board.ID)
	if err != nil {
		slog.Error("failed to delete feature", "error", err, "feature_id", featureID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if !requireAffected(w, result, "Feature not found") {
		return
	}

	slog.Info("feature deleted", "feature_id", featureID, "board_id", board.ID)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Feature deleted"})
}

// ListOwnerFeatures handles GET /features: every feature across the caller's boards
func (h *FeatureHandler) ListOwnerFeatures(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFrom(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	features, err := queryFeatures(r.Context(), h.db, `
		WHERE b.user_id = $1
		ORDER BY f.created_at DESC, f.id DESC
	`, p.UserID)
	if err != nil {
		slog.Error("failed to list owner features", "error", err, "user_id", p.UserID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, features)
}

// featureFromPath loads the {id} feature, which must belong to board
func featureFromPath(w http.ResponseWriter, r *http.Request, conn *sql.DB, board models.Board) (models.Feature, bool) {
	featureID := r.PathValue("id")
	if featureID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "feature id is required")
		return models.Feature{}, false
	}

	features, err := queryFeatures(r.Context(), conn, `
		WHERE f.id = $1 AND f.board_id = $2
	`, featureID, board.ID)
	if err != nil {
		slog.Error("failed to query feature", "error", err, "feature_id", featureID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return models.Feature{}, false
	}
	if len(features) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Feature not found")
		return models.Feature{}, false
	}
	return features[0], true
}

func queryFeatures(ctx context.Context, conn *sql.DB, clause string, args ...interface{}) ([]models.Feature, error) {
	rows, err := conn.QueryContext(ctx, featureSelect+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer rows.Close()

	features := []models.Feature{}
	for rows.Next() {
		var (
			f    models.Feature
			tags string
		)
		if err := rows.Scan(&f.ID, &f.BoardID, &f.BoardName, &f.BoardSlug, &f.Title,
			&f.Description, &f.Status, &f.Category, &tags, &f.Priority, &f.AuthorName,
			&f.AuthorEmail, &f.CreatedAt, &f.UpdatedAt, &f.VoteCount, &f.Upvotes,
			&f.Downvotes, &f.CommentCount); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		f.Tags = decodeTags(tags)
		features = append(features, f)
	}
	return features, rows.Err()
}

// decodeTags parses the stored JSON array. Malformed values read as no tags.
func decodeTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		slog.Warn("ignoring malformed feature tags", "error", err)
		return []string{}
	}
	return tags
}

// requireAffected answers 404 with notFound when result touched no rows.
func requireAffected(w http.ResponseWriter, result sql.Result, notFound string) bool {
	n, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return false
	}
	if n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, notFound)
		return false
	}
	return true
}
