// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/planning-poker/models"
	"github.com/danielhkuo/planning-poker/testutil"
)

// countActiveStories is the invariant check run after mutating sequences:
// a session may never hold more than one active story.
func countActiveStories(t *testing.T, conn *sql.DB, sessionID string) int {
	t.Helper()
	var count int
	err := conn.QueryRow(`
		SELECT COUNT(*) FROM story WHERE session_id = $1 AND is_active = TRUE
	`, sessionID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count active stories: %v", err)
	}
	return count
}

func TestAddStory(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewStoryHandler(conn)

	sessionID, _ := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")

	req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/stories", models.AddStoryRequest{
		Title: "Login bug",
	}, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.AddStory(w, req)

	testutil.AssertStatus(t, w, 201)

	var story models.Story
	testutil.AssertJSON(t, w, &story)

	if !story.IsActive {
		t.Error("New story should be active")
	}
	if story.SessionID != sessionID {
		t.Errorf("Expected session_id %s, got %s", sessionID, story.SessionID)
	}

	// The session now points at the new story
	var currentStoryID sql.NullString
	var revealed bool
	err := conn.QueryRow(`
		SELECT current_story_id, votes_revealed FROM session WHERE id = $1
	`, sessionID).Scan(&currentStoryID, &revealed)
	if err != nil {
		t.Fatalf("Failed to query session: %v", err)
	}
	if !currentStoryID.Valid || currentStoryID.String != story.ID {
		t.Errorf("Expected current_story_id %s, got %v", story.ID, currentStoryID)
	}
	if revealed {
		t.Error("Adding a story should leave votes_revealed false")
	}
}

func TestAddStory_DeactivatesPreviousStory(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewStoryHandler(conn)

	sessionID, _ := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")
	firstID := testutil.AddTestStory(t, conn, sessionID, "First story", true)

	req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/stories", models.AddStoryRequest{
		Title: "Second story",
	}, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.AddStory(w, req)

	testutil.AssertStatus(t, w, 201)

	if got := countActiveStories(t, conn, sessionID); got != 1 {
		t.Errorf("Expected exactly 1 active story, got %d", got)
	}

	var firstActive bool
	err := conn.QueryRow(`SELECT is_active FROM story WHERE id = $1`, firstID).Scan(&firstActive)
	if err != nil {
		t.Fatalf("Failed to query first story: %v", err)
	}
	if firstActive {
		t.Error("Previous story should be deactivated")
	}
}

func TestAddStory_ResetsRevealFlag(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewStoryHandler(conn)

	sessionID, _ := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")
	testutil.AddTestStory(t, conn, sessionID, "First story", true)

	_, err := conn.Exec(`UPDATE session SET votes_revealed = TRUE WHERE id = $1`, sessionID)
	if err != nil {
		t.Fatalf("Failed to set reveal flag: %v", err)
	}

	req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/stories", models.AddStoryRequest{
		Title: "Second story",
	}, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.AddStory(w, req)

	testutil.AssertStatus(t, w, 201)

	var revealed bool
	err = conn.QueryRow(`SELECT votes_revealed FROM session WHERE id = $1`, sessionID).Scan(&revealed)
	if err != nil {
		t.Fatalf("Failed to query session: %v", err)
	}
	if revealed {
		t.Error("AddStory must reset votes_revealed regardless of prior state")
	}
}

func TestAddStory_Validation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewStoryHandler(conn)

	sessionID, _ := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")

	req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/stories", models.AddStoryRequest{}, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.AddStory(w, req)
	testutil.AssertStatus(t, w, 400)

	req = testutil.MakeRequest("POST", "/sessions/nosuch/stories", models.AddStoryRequest{Title: "X"}, nil)
	req.SetPathValue("id", "nosuch")
	w = httptest.NewRecorder()
	handler.AddStory(w, req)
	testutil.AssertStatus(t, w, 404)
}

func TestClearVotes_NoNextStory(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewStoryHandler(conn)

	sessionID, hostID := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")
	storyID := testutil.AddTestStory(t, conn, sessionID, "Login bug", true)
	testutil.CastTestVote(t, conn, storyID, hostID, "3")

	// No body at all: clearing without advancing
	req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/clear", nil, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.ClearVotes(w, req)

	testutil.AssertStatus(t, w, 200)

	if got := countActiveStories(t, conn, sessionID); got != 0 {
		t.Errorf("Expected no active stories, got %d", got)
	}

	var currentStoryID sql.NullString
	var revealed bool
	err := conn.QueryRow(`
		SELECT current_story_id, votes_revealed FROM session WHERE id = $1
	`, sessionID).Scan(&currentStoryID, &revealed)
	if err != nil {
		t.Fatalf("Failed to query session: %v", err)
	}
	if currentStoryID.Valid {
		t.Errorf("Expected current_story_id to be null, got %s", currentStoryID.String)
	}
	if revealed {
		t.Error("Clearing must reset votes_revealed")
	}

	// History is never purged
	var voteCount int
	err = conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE story_id = $1`, storyID).Scan(&voteCount)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if voteCount != 1 {
		t.Errorf("Expected vote history to remain, got %d rows", voteCount)
	}
}

func TestClearVotes_AdvanceToStory(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewStoryHandler(conn)

	sessionID, _ := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")
	firstID := testutil.AddTestStory(t, conn, sessionID, "First story", false)
	testutil.AddTestStory(t, conn, sessionID, "Second story", true)

	req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/clear", models.ClearVotesRequest{
		NextStoryID: &firstID,
	}, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.ClearVotes(w, req)

	testutil.AssertStatus(t, w, 200)

	if got := countActiveStories(t, conn, sessionID); got != 1 {
		t.Errorf("Expected exactly 1 active story, got %d", got)
	}

	var active bool
	err := conn.QueryRow(`SELECT is_active FROM story WHERE id = $1`, firstID).Scan(&active)
	if err != nil {
		t.Fatalf("Failed to query story: %v", err)
	}
	if !active {
		t.Error("Targeted story should be activated")
	}

	var currentStoryID sql.NullString
	err = conn.QueryRow(`SELECT current_story_id FROM session WHERE id = $1`, sessionID).Scan(&currentStoryID)
	if err != nil {
		t.Fatalf("Failed to query session: %v", err)
	}
	if !currentStoryID.Valid || currentStoryID.String != firstID {
		t.Errorf("Expected current_story_id %s, got %v", firstID, currentStoryID)
	}
}

func TestClearVotes_UnknownNextStory(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewStoryHandler(conn)

	sessionID, _ := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")
	activeID := testutil.AddTestStory(t, conn, sessionID, "Login bug", true)

	// A story from a different session is just as unknown as a bogus id
	otherSession, _ := testutil.CreateTestSession(t, conn, "Sprint 2", "Carol")
	foreignID := testutil.AddTestStory(t, conn, otherSession, "Foreign story", false)

	for _, target := range []string{"nosuch-story", foreignID} {
		req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/clear", models.ClearVotesRequest{
			NextStoryID: &target,
		}, nil)
		req.SetPathValue("id", sessionID)
		w := httptest.NewRecorder()
		handler.ClearVotes(w, req)

		testutil.AssertStatus(t, w, 404)
	}

	// Failed clears must not have touched the active story
	var stillActive bool
	err := conn.QueryRow(`SELECT is_active FROM story WHERE id = $1`, activeID).Scan(&stillActive)
	if err != nil {
		t.Fatalf("Failed to query story: %v", err)
	}
	if !stillActive {
		t.Error("Rejected clear should leave the active story untouched")
	}
}
