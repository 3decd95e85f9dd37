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

	"github.com/danielhkuo/featureboard/auth"
	"github.com/danielhkuo/featureboard/cliparse"
	"github.com/danielhkuo/featureboard/db"
	"github.com/danielhkuo/featureboard/middleware"
	"github.com/danielhkuo/featureboard/models"
)

var (
	ErrFeatureNotFound = errors.New("feature not found")
	ErrDuplicateVote   = errors.New("vote already recorded for this visitor")
)

// Outcome of a vote toggle
const (
	VoteAdded   = "Vote added"
	VoteUpdated = "Vote updated"
	VoteRemoved = "Vote removed"
)

type VoteResult struct {
	VoteCount  int
	HasVoted   bool
	IsDownvote *bool // nil once the visitor's vote is removed
	Action     string
}

// CastVote toggles a visitor's vote on a feature of the given board.
//
// With no existing vote a new one is created. A vote in the opposite
// direction is flipped in place and keeps the count. A vote in the same
// direction is removed. The returned count is the count read before the
// write, adjusted by the change, and reason is stored on create and flip.
//
// A concurrent insert for the same (feature, visitor) pair loses on the
// unique constraint and returns ErrDuplicateVote.
func CastVote(ctx context.Context, conn *sql.DB, boardID, featureID, visitorHash string, isDownvote bool, reason *string) (VoteResult, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return VoteResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM feature WHERE id = $1 AND board_id = $2)
	`, featureID, boardID).Scan(&exists)
	if err != nil {
		return VoteResult{}, fmt.Errorf("failed to check feature: %w", err)
	}
	if !exists {
		return VoteResult{}, ErrFeatureNotFound
	}

	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote WHERE feature_id = $1
	`, featureID).Scan(&count)
	if err != nil {
		return VoteResult{}, fmt.Errorf("failed to count votes: %w", err)
	}

	var (
		existing models.Vote
		result   VoteResult
	)
	now := db.Now()
	err = tx.QueryRowContext(ctx, `
		SELECT id, is_downvote FROM vote WHERE feature_id = $1 AND visitor_hash = $2
	`, featureID, visitorHash).Scan(&existing.ID, &existing.IsDownvote)

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO vote (id, feature_id, visitor_hash, is_downvote, reason, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, auth.NewID(), featureID, visitorHash, isDownvote, reason, now, now)
		if db.IsUniqueViolation(err) {
			return VoteResult{}, ErrDuplicateVote
		}
		if err != nil {
			return VoteResult{}, fmt.Errorf("failed to insert vote: %w", err)
		}
		result = VoteResult{VoteCount: count + 1, HasVoted: true, IsDownvote: &isDownvote, Action: VoteAdded}

	case err != nil:
		return VoteResult{}, fmt.Errorf("failed to query vote: %w", err)

	case existing.IsDownvote == isDownvote:
		if _, err := tx.ExecContext(ctx, `DELETE FROM vote WHERE id = $1`, existing.ID); err != nil {
			return VoteResult{}, fmt.Errorf("failed to delete vote: %w", err)
		}
		result = VoteResult{VoteCount: count - 1, HasVoted: false, Action: VoteRemoved}

	default:
		_, err := tx.ExecContext(ctx, `
			UPDATE vote SET is_downvote = $1, reason = $2, updated_at = $3 WHERE id = $4
		`, isDownvote, reason, now, existing.ID)
		if err != nil {
			return VoteResult{}, fmt.Errorf("failed to update vote: %w", err)
		}
		result = VoteResult{VoteCount: count, HasVoted: true, IsDownvote: &isDownvote, Action: VoteUpdated}
	}

	if err := tx.Commit(); err != nil {
		if db.IsUniqueViolation(err) {
			return VoteResult{}, ErrDuplicateVote
		}
		return VoteResult{}, fmt.Errorf("failed to commit vote: %w", err)
	}

	return result, nil
}

type VoteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg}
}

// Vote handles POST /boards/{slug}/features/{id}/vote
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	board, ok := boardFromPath(w, r, h.db)
	if !ok {
		return
	}

	featureID := r.PathValue("id")
	if featureID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "feature id is required")
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var reason *string
	if req.Reason != nil {
		reason = optional(*req.Reason)
	}

	// Raw addresses are never stored
	visitorHash := auth.HashVisitor(middleware.VisitorIdentity(r), h.cfg.VisitorSalt)

	result, err := CastVote(r.Context(), h.db, board.ID, featureID, visitorHash, req.IsDownvote, reason)
	switch {
	case errors.Is(err, ErrFeatureNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Feature not found")
		return
	case errors.Is(err, ErrDuplicateVote):
		middleware.ErrorResponse(w, http.StatusConflict, "Vote already recorded")
		return
	case err != nil:
		slog.Error("failed to cast vote", "error", err, "feature_id", featureID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	slog.Info("vote cast", "feature_id", featureID, "action", result.Action, "vote_count", result.VoteCount)

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		VoteCount:  result.VoteCount,
		HasVoted:   result.HasVoted,
		IsDownvote: result.IsDownvote,
		Message:    result.Action,
	})
}
