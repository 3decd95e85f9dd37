// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/featureboard/models"
)

// ActivityLimit caps the dashboard activity feed
const ActivityLimit = 30

// Per-kind feed queries. Votes and comments carry their feature's title.
var activityQueries = []struct {
	kind  string
	query string
}{
	{models.ActivityFeature, `
		SELECT f.id, f.title, b.name, b.slug, f.created_at
		FROM feature f
		JOIN board b ON b.id = f.board_id
		WHERE b.user_id = $1
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $2`},
	{models.ActivityVote, `
		SELECT v.id, f.title, b.name, b.slug, v.created_at
		FROM vote v
		JOIN feature f ON f.id = v.feature_id
		JOIN board b ON b.id = f.board_id
		WHERE b.user_id = $1
		ORDER BY v.created_at DESC, v.id DESC
		LIMIT $2`},
	{models.ActivityComment, `
		SELECT c.id, f.title, b.name, b.slug, c.created_at
		FROM comment c
		JOIN feature f ON f.id = c.feature_id
		JOIN board b ON b.id = f.board_id
		WHERE b.user_id = $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2`},
}

// RecentActivity returns the newest features, votes and comments across
// the owner's boards as one feed, newest first, at most ActivityLimit long.
func RecentActivity(ctx context.Context, conn *sql.DB, ownerID string) ([]models.ActivityItem, error) {
	lists := make([][]models.ActivityItem, len(activityQueries))
	g, ctx := errgroup.WithContext(ctx)
	for i, aq := range activityQueries {
		g.Go(func() error {
			items, err := queryActivity(ctx, conn, aq.kind, aq.query, ownerID)
			lists[i] = items
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	feed := MergeActivity(ActivityLimit, lists...)
	for i := range feed {
		feed[i].Ago = humanize.Time(feed[i].CreatedAt)
	}
	return feed, nil
}

// MergeActivity combines feeds ordered by created_at descending, breaking
// ties by descending id, and keeps the first limit items.
func MergeActivity(limit int, lists ...[]models.ActivityItem) []models.ActivityItem {
	merged := []models.ActivityItem{}
	for _, l := range lists {
		merged = append(merged, l...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID > merged[j].ID
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func queryActivity(ctx context.Context, conn *sql.DB, kind, query, ownerID string) ([]models.ActivityItem, error) {
	rows, err := conn.QueryContext(ctx, query, ownerID, ActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s activity: %w", kind, err)
	}
	defer rows.Close()

	var items []models.ActivityItem
	for rows.Next() {
		var (
			item      models.ActivityItem
			createdAt time.Time
		)
		if err := rows.Scan(&item.ID, &item.Title, &item.BoardName, &item.BoardSlug, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s activity: %w", kind, err)
		}
		item.Type = kind
		item.CreatedAt = createdAt
		items = append(items, item)
	}
	return items, rows.Err()
}
