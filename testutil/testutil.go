// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/featureboard/auth"
	"github.com/danielhkuo/featureboard/cliparse"
	"github.com/danielhkuo/featureboard/db"
	"github.com/danielhkuo/featureboard/models"
)

// TestPassword is the password of every user made by CreateTestUser
const TestPassword = "password123"

// SetupTestDB creates a fresh file-backed SQLite database with the full schema.
// Each test gets its own file under t.TempDir().
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "featureboard_test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(conn, db.DriverSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    "file:featureboard_test.db",
		DatabaseType:   db.DriverSQLite,
		VisitorSalt:    "test-visitor-salt",
		SessionTTL:     time.Hour,
		AllowedOrigins: []string{"*"},
	}
}

// CreateTestUser inserts a user whose password is TestPassword
func CreateTestUser(t *testing.T, conn *sql.DB, name, email string) models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		ID:           auth.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    db.Now(),
	}
	_, err = conn.Exec(`
		INSERT INTO app_user (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestSession creates a session for the user and returns its token
func CreateTestSession(t *testing.T, conn *sql.DB, userID string) string {
	t.Helper()

	token := auth.NewSessionToken()
	now := db.Now()
	_, err := conn.Exec(`
		INSERT INTO session (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token, userID, now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return token
}

// CreateTestBoard creates a board owned by userID
func CreateTestBoard(t *testing.T, conn *sql.DB, userID, slug string) models.Board {
	t.Helper()

	desc := "Board " + slug
	now := db.Now()
	board := models.Board{
		ID:          auth.NewID(),
		Slug:        slug,
		Name:        "Board " + slug,
		Description: &desc,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := conn.Exec(`
		INSERT INTO board (id, slug, name, description, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, board.ID, board.Slug, board.Name, board.Description, board.UserID, board.CreatedAt, board.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test board: %v", err)
	}

	return board
}

// CreateTestFeature creates an open feature on the board and returns its ID
func CreateTestFeature(t *testing.T, conn *sql.DB, boardID, title string) string {
	t.Helper()

	featureID := auth.NewID()
	now := db.Now()
	_, err := conn.Exec(`
		INSERT INTO feature (id, board_id, title, description, status, tags, priority, author_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, featureID, boardID, title, "Description of "+title, models.StatusOpen, `[]`, 0, "Tester", now, now)
	if err != nil {
		t.Fatalf("Failed to create test feature: %v", err)
	}

	return featureID
}

// CreateTestVote records a vote from the given visitor hash and returns its ID
func CreateTestVote(t *testing.T, conn *sql.DB, featureID, visitorHash string, isDownvote bool) string {
	t.Helper()

	voteID := auth.NewID()
	now := db.Now()
	_, err := conn.Exec(`
		INSERT INTO vote (id, feature_id, visitor_hash, is_downvote, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, featureID, visitorHash, isDownvote, now, now)
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
}

// CreateTestComment adds a comment to the feature and returns its ID
func CreateTestComment(t *testing.T, conn *sql.DB, featureID, content string) string {
	t.Helper()

	commentID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO comment (id, feature_id, content, author_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, commentID, featureID, content, "Commenter", db.Now())
	if err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return commentID
}

// SetCreatedAt backdates a row; table must be one of feature, vote, comment, board
func SetCreatedAt(t *testing.T, conn *sql.DB, table, id string, at time.Time) {
	t.Helper()

	switch table {
	case "feature", "vote", "comment", "board":
	default:
		t.Fatalf("SetCreatedAt: unsupported table %q", table)
	}

	_, err := conn.Exec(`UPDATE `+table+` SET created_at = $1 WHERE id = $2`, at.UTC(), id)
	if err != nil {
		t.Fatalf("Failed to backdate %s %s: %v", table, id, err)
	}
}

// CountRows counts rows in table matching an optional where clause
func CountRows(t *testing.T, conn *sql.DB, table, where string, args ...interface{}) int {
	t.Helper()

	query := `SELECT COUNT(*) FROM ` + table
	if where != "" {
		query += ` WHERE ` + where
	}

	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AsUser attaches a signed-in principal for the user, as the session middleware would
func AsUser(req *http.Request, user models.User) *http.Request {
	p := auth.Principal{UserID: user.ID, Name: user.Name, Email: user.Email}
	return req.WithContext(auth.WithPrincipal(req.Context(), p))
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
