// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/danielhkuo/featureboard/models"
	"github.com/danielhkuo/featureboard/testutil"
)

func TestMonthStart(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)

	tests := []struct {
		name     string
		now      time.Time
		expected time.Time
	}{
		{
			name:     "mid month utc",
			now:      time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC),
			expected: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "first instant",
			now:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "local zone ahead of utc",
			now:      time.Date(2026, 3, 1, 5, 0, 0, 0, tokyo),
			expected: time.Date(2026, 2, 28, 15, 0, 0, 0, time.UTC),
		},
		{
			name:     "january",
			now:      time.Date(2027, 1, 31, 23, 59, 59, 0, time.UTC),
			expected: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthStart(tt.now)
			if !got.Equal(tt.expected) || got.Location() != time.UTC {
				t.Errorf("MonthStart(%s) = %s, want %s", tt.now, got, tt.expected)
			}
		})
	}
}

func TestOwnerStats(t *testing.T) {
	db := testutil.SetupTestDB(t)

	owner := testutil.CreateTestUser(t, db, "Owner", "owner@example.com")
	stranger := testutil.CreateTestUser(t, db, "Stranger", "stranger@example.com")
	b1 := testutil.CreateTestBoard(t, db, owner.ID, "one")
	b2 := testutil.CreateTestBoard(t, db, owner.ID, "two")
	foreign := testutil.CreateTestBoard(t, db, stranger.ID, "theirs")

	monthStart := MonthStart(time.Now())
	lastMonth := monthStart.Add(-time.Hour)

	old := testutil.CreateTestFeature(t, db, b1.ID, "Old")
	testutil.SetCreatedAt(t, db, "feature", old, lastMonth)
	fresh := testutil.CreateTestFeature(t, db, b2.ID, "Fresh")

	oldVote := testutil.CreateTestVote(t, db, old, "v1", false)
	testutil.SetCreatedAt(t, db, "vote", oldVote, lastMonth)
	testutil.CreateTestVote(t, db, old, "v2", true)
	testutil.CreateTestVote(t, db, fresh, "v1", false)

	oldComment := testutil.CreateTestComment(t, db, fresh, "old")
	testutil.SetCreatedAt(t, db, "comment", oldComment, lastMonth)
	// Exactly on the boundary counts as this month
	edge := testutil.CreateTestComment(t, db, fresh, "edge")
	testutil.SetCreatedAt(t, db, "comment", edge, monthStart)

	// Activity on someone else's board is never counted
	other := testutil.CreateTestFeature(t, db, foreign.ID, "Theirs")
	testutil.CreateTestVote(t, db, other, "v1", false)
	testutil.CreateTestComment(t, db, other, "nope")

	stats, err := OwnerStats(t.Context(), db, owner.ID, monthStart)
	if err != nil {
		t.Fatalf("OwnerStats failed: %v", err)
	}

	expected := models.DashboardStats{
		TotalFeatures:     2,
		TotalVotes:        3,
		TotalComments:     2,
		FeaturesThisMonth: 1,
		VotesThisMonth:    2,
		CommentsThisMonth: 1,
	}
	if diff := cmp.Diff(expected, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestGetDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDashboardHandler(db, cfg)

	owner := testutil.CreateTestUser(t, db, "Owner", "owner@example.com")
	board := testutil.CreateTestBoard(t, db, owner.ID, "roadmap")
	featureID := testutil.CreateTestFeature(t, db, board.ID, "Dashboards")
	testutil.CreateTestVote(t, db, featureID, "v1", false)
	testutil.CreateTestComment(t, db, featureID, "nice")

	t.Run("owner", func(t *testing.T) {
		req := testutil.AsUser(testutil.MakeRequest("GET", "/dashboard", nil, nil), owner)
		w := httptest.NewRecorder()

		handler.GetDashboard(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.DashboardResponse
		testutil.AssertJSON(t, w, &resp)

		if len(resp.Boards) != 1 || resp.Boards[0].FeatureCount != 1 {
			t.Errorf("Unexpected boards %+v", resp.Boards)
		}
		want := models.DashboardStats{
			TotalFeatures: 1, TotalVotes: 1, TotalComments: 1,
			FeaturesThisMonth: 1, VotesThisMonth: 1, CommentsThisMonth: 1,
		}
		if diff := cmp.Diff(want, resp.Stats); diff != "" {
			t.Errorf("stats mismatch (-want +got):\n%s", diff)
		}
		if len(resp.RecentActivity) != 3 {
			t.Errorf("Expected 3 activity items, got %d", len(resp.RecentActivity))
		}
	})

	t.Run("pinned clock excludes everything before the month", func(t *testing.T) {
		pinned := NewDashboardHandler(db, cfg)
		pinned.now = func() time.Time { return time.Now().AddDate(0, 2, 0) }

		req := testutil.AsUser(testutil.MakeRequest("GET", "/dashboard", nil, nil), owner)
		w := httptest.NewRecorder()
		pinned.GetDashboard(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.DashboardResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Stats.FeaturesThisMonth != 0 || resp.Stats.TotalFeatures != 1 {
			t.Errorf("Unexpected stats %+v", resp.Stats)
		}
	})

	t.Run("no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetDashboard(w, testutil.MakeRequest("GET", "/dashboard", nil, nil))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("user gone", func(t *testing.T) {
		ghost := models.User{ID: "01ghost", Name: "Ghost", Email: "ghost@example.com"}
		req := testutil.AsUser(testutil.MakeRequest("GET", "/dashboard", nil, nil), ghost)
		w := httptest.NewRecorder()

		handler.GetDashboard(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestGetDashboardFailsWhole(t *testing.T) {
	for _, table := range []string{"comment", "vote"} {
		t.Run("missing "+table, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			handler := NewDashboardHandler(db, testutil.GetTestConfig())

			owner := testutil.CreateTestUser(t, db, "Owner", "owner@example.com")
			board := testutil.CreateTestBoard(t, db, owner.ID, "roadmap")
			testutil.CreateTestFeature(t, db, board.ID, "Dashboards")

			if _, err := db.Exec("DROP TABLE " + table); err != nil {
				t.Fatalf("Failed to drop %s: %v", table, err)
			}

			req := testutil.AsUser(testutil.MakeRequest("GET", "/dashboard", nil, nil), owner)
			w := httptest.NewRecorder()
			handler.GetDashboard(w, req)

			testutil.AssertStatus(t, w, http.StatusInternalServerError)

			var body map[string]any
			testutil.AssertJSON(t, w, &body)
			want := map[string]any{"error": "Internal Server Error", "message": "Something went wrong"}
			if diff := cmp.Diff(want, body); diff != "" {
				t.Errorf("error body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
