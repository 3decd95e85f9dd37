// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/featureboard/models"
)

// Owner-scoped count queries; $2 (when present) is the month start
const (
	countFeatures = `
		SELECT COUNT(*) FROM feature f
		JOIN board b ON b.id = f.board_id
		WHERE b.user_id = $1`
	countVotes = `
		SELECT COUNT(*) FROM vote v
		JOIN feature f ON f.id = v.feature_id
		JOIN board b ON b.id = f.board_id
		WHERE b.user_id = $1`
	countComments = `
		SELECT COUNT(*) FROM comment c
		JOIN feature f ON f.id = c.feature_id
		JOIN board b ON b.id = f.board_id
		WHERE b.user_id = $1`
)

// MonthStart returns the first instant of now's calendar month, in now's
// location, converted to UTC.
func MonthStart(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()).UTC()
}

// OwnerStats runs the six counts behind the dashboard concurrently.
// The first failure cancels the rest.
func OwnerStats(ctx context.Context, conn *sql.DB, ownerID string, monthStart time.Time) (models.DashboardStats, error) {
	var stats models.DashboardStats

	g, ctx := errgroup.WithContext(ctx)
	counts := []struct {
		dest  *int
		query string
		alias string
		month bool
	}{
		{&stats.TotalFeatures, countFeatures, "f", false},
		{&stats.TotalVotes, countVotes, "v", false},
		{&stats.TotalComments, countComments, "c", false},
		{&stats.FeaturesThisMonth, countFeatures, "f", true},
		{&stats.VotesThisMonth, countVotes, "v", true},
		{&stats.CommentsThisMonth, countComments, "c", true},
	}

	for _, c := range counts {
		g.Go(func() error {
			query := c.query
			args := []interface{}{ownerID}
			if c.month {
				query += ` AND ` + c.alias + `.created_at >= $2`
				args = append(args, monthStart)
			}
			if err := conn.QueryRowContext(ctx, query, args...).Scan(c.dest); err != nil {
				return fmt.Errorf("failed to count for stats: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
