// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/featureboard/middleware"
	"github.com/danielhkuo/featureboard/models"
	"github.com/danielhkuo/featureboard/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestHealthEndpointDatabaseDown(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	db.Close()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "featureboard API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	// 400, 401, 404 are all valid responses depending on handler logic
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},

		{"POST", "/auth/register"},
		{"POST", "/auth/login"},
		{"POST", "/auth/logout"},
		{"GET", "/auth/me"},

		{"POST", "/boards"},
		{"GET", "/boards"},
		{"GET", "/boards/test-slug"},
		{"PATCH", "/boards/test-slug"},
		{"DELETE", "/boards/test-slug"},

		{"POST", "/boards/test-slug/features"},
		{"GET", "/boards/test-slug/features"},
		{"GET", "/boards/test-slug/features/test-id"},
		{"PATCH", "/boards/test-slug/features/test-id"},
		{"DELETE", "/boards/test-slug/features/test-id"},
		{"POST", "/boards/test-slug/features/test-id/vote"},
		{"POST", "/boards/test-slug/features/test-id/comments"},
		{"GET", "/boards/test-slug/features/test-id/comments"},

		{"GET", "/features"},
		{"GET", "/dashboard"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"PUT", "/boards/test-slug"},
		{"GET", "/boards/test-slug/features/test-id/vote"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestSessionGating(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	user := testutil.CreateTestUser(t, db, "Owner", "owner@example.com")
	token := testutil.CreateTestSession(t, db, user.ID)

	testCases := []struct {
		name           string
		cookie         string
		bearer         string
		expectedStatus int
	}{
		{"no session", "", "", http.StatusUnauthorized},
		{"cookie", token, "", http.StatusOK},
		{"bearer", "", token, http.StatusOK},
		{"stale token", "", "not-a-session", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/dashboard", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: tc.cookie})
			}
			if tc.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tc.bearer)
			}
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	user := testutil.CreateTestUser(t, db, "Owner", "owner@example.com")
	board := testutil.CreateTestBoard(t, db, user.ID, "params")
	featureID := testutil.CreateTestFeature(t, db, board.ID, "Routed")

	t.Run("slug and id reach the handler", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/boards/params/features/"+featureID+"/vote",
			models.VoteRequest{}, map[string]string{"X-Forwarded-For": "192.0.2.1"})
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.VoteResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.VoteCount != 1 || !resp.HasVoted {
			t.Errorf("Unexpected vote response %+v", resp)
		}
	})

	t.Run("board with features", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/boards/params", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.BoardWithFeatures
		testutil.AssertJSON(t, w, &resp)
		if resp.Board.Slug != "params" || len(resp.Features) != 1 {
			t.Errorf("Unexpected board response %+v", resp)
		}
	})
}

func TestRegisterThenCreateBoardWithCookie(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/auth/register", models.RegisterRequest{
		Name: "New", Email: "new@example.com", Password: "long-enough-pw",
	}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("Expected a session cookie from register")
	}

	req := testutil.MakeRequest("POST", "/boards", models.CreateBoardRequest{Name: "Mine", Slug: "mine"}, nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Duplicate slug through the full stack
	req = testutil.MakeRequest("POST", "/boards", models.CreateBoardRequest{Name: "Again", Slug: "mine"}, nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	if n := testutil.CountRows(t, db, "board", "slug = $1", "mine"); n != 1 {
		t.Errorf("Expected one board, got %d", n)
	}
}

func TestCORSPreflight(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("OPTIONS", "/boards", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Expected echoed origin, got %q", got)
	}
}
