// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/planning-poker/db"
	"github.com/danielhkuo/planning-poker/ident"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema. A single connection keeps the memory database alive for the
// duration of the test; handler calls serialize through it, which is the
// same serialization a real store's conflict path provides.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })

	return conn
}

// CreateTestSession inserts a session and its host participant, returning
// the session token and the host's participant ID.
func CreateTestSession(t *testing.T, conn *sql.DB, name, hostName string) (sessionID, hostID string) {
	t.Helper()

	sessionID, err := ident.GenerateSessionID()
	if err != nil {
		t.Fatalf("Failed to generate session ID: %v", err)
	}
	hostID = uuid.NewString()
	now := time.Now()

	_, err = conn.Exec(`
		INSERT INTO session (id, name, votes_revealed, created_at)
		VALUES ($1, $2, FALSE, $3)
	`, sessionID, name, now)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO participant (id, session_id, user_id, name, is_host, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5)
	`, hostID, sessionID, hostName, hostName, now)
	if err != nil {
		t.Fatalf("Failed to create test host: %v", err)
	}

	return sessionID, hostID
}

// AddTestParticipant inserts a non-host participant and returns its ID.
func AddTestParticipant(t *testing.T, conn *sql.DB, sessionID, name string) string {
	t.Helper()

	participantID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO participant (id, session_id, user_id, name, is_host, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`, participantID, sessionID, name, name, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}

	return participantID
}

// AddTestStory inserts a story and, when active, points the session at it
// the same way the AddStory handler does.
func AddTestStory(t *testing.T, conn *sql.DB, sessionID, title string, active bool) string {
	t.Helper()

	storyID := uuid.NewString()

	if active {
		_, err := conn.Exec(`
			UPDATE story SET is_active = FALSE WHERE session_id = $1 AND is_active = TRUE
		`, sessionID)
		if err != nil {
			t.Fatalf("Failed to deactivate stories: %v", err)
		}
	}

	_, err := conn.Exec(`
		INSERT INTO story (id, session_id, title, description, is_active, created_at)
		VALUES ($1, $2, $3, NULL, $4, $5)
	`, storyID, sessionID, title, active, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test story: %v", err)
	}

	if active {
		_, err = conn.Exec(`
			UPDATE session SET current_story_id = $1, votes_revealed = FALSE WHERE id = $2
		`, storyID, sessionID)
		if err != nil {
			t.Fatalf("Failed to point session at story: %v", err)
		}
	}

	return storyID
}

// CastTestVote inserts a vote row directly.
func CastTestVote(t *testing.T, conn *sql.DB, storyID, participantID, value string) string {
	t.Helper()

	voteID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO vote (id, story_id, participant_id, vote_value, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, storyID, participantID, value, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
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
