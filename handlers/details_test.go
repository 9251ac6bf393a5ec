// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/planning-poker/models"
	"github.com/danielhkuo/planning-poker/testutil"
)

func getDetails(t *testing.T, handler *DetailsHandler, sessionID string) (int, models.SessionView) {
	t.Helper()
	req := testutil.MakeRequest("GET", "/sessions/"+sessionID, nil, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.GetSession(w, req)

	var view models.SessionView
	if w.Code == 200 {
		testutil.AssertJSON(t, w, &view)
	}
	return w.Code, view
}

func TestGetSession_NotFound(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewDetailsHandler(conn)

	code, _ := getDetails(t, handler, "nosuch")
	if code != 404 {
		t.Errorf("Expected 404, got %d", code)
	}
}

func TestGetSession_FreshSession(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewDetailsHandler(conn)

	sessionID, hostID := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")

	code, view := getDetails(t, handler, sessionID)
	if code != 200 {
		t.Fatalf("Expected 200, got %d", code)
	}

	if view.Session.ID != sessionID {
		t.Errorf("Expected session id %s, got %s", sessionID, view.Session.ID)
	}
	if len(view.Participants) != 1 || view.Participants[0].ID != hostID {
		t.Errorf("Expected only the host participant, got %+v", view.Participants)
	}
	if len(view.Stories) != 0 {
		t.Errorf("Expected no stories, got %d", len(view.Stories))
	}
	if view.ActiveStory != nil {
		t.Error("Expected no active story")
	}
	if len(view.Votes) != 0 || len(view.Bets) != 0 {
		t.Error("Expected no votes or bets")
	}

	// The canonical value set travels with every snapshot
	if len(view.AllowedValues) != len(models.VoteValues) {
		t.Fatalf("Expected %d allowed values, got %d", len(models.VoteValues), len(view.AllowedValues))
	}
	for i, v := range models.VoteValues {
		if view.AllowedValues[i] != v {
			t.Errorf("AllowedValues[%d] = %q, want %q", i, view.AllowedValues[i], v)
		}
	}
}

func TestGetSession_MasksValuesUntilReveal(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewDetailsHandler(conn)

	sessionID, hostID := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")
	bobID := testutil.AddTestParticipant(t, conn, sessionID, "Bob")
	storyID := testutil.AddTestStory(t, conn, sessionID, "Login bug", true)
	testutil.CastTestVote(t, conn, storyID, hostID, "3")
	testutil.CastTestVote(t, conn, storyID, bobID, "5")

	// Before reveal: both show as voted, neither value exposed
	_, view := getDetails(t, handler, sessionID)
	if len(view.Votes) != 2 {
		t.Fatalf("Expected 2 votes, got %d", len(view.Votes))
	}
	for _, v := range view.Votes {
		if v.VoteValue != nil {
			t.Errorf("Vote value for %s exposed before reveal: %s", v.ParticipantName, *v.VoteValue)
		}
	}

	_, err := conn.Exec(`UPDATE session SET votes_revealed = TRUE WHERE id = $1`, sessionID)
	if err != nil {
		t.Fatalf("Failed to reveal: %v", err)
	}

	// After reveal: values exposed, joined with participant names
	_, view = getDetails(t, handler, sessionID)
	values := map[string]string{}
	for _, v := range view.Votes {
		if v.VoteValue == nil {
			t.Fatalf("Vote value for %s still masked after reveal", v.ParticipantName)
		}
		values[v.ParticipantName] = *v.VoteValue
	}
	if values["Alice"] != "3" || values["Bob"] != "5" {
		t.Errorf("Expected {Alice: 3, Bob: 5}, got %v", values)
	}
}

func TestGetSession_ScopesVotesToActiveStory(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewDetailsHandler(conn)

	sessionID, hostID := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")
	oldStory := testutil.AddTestStory(t, conn, sessionID, "Old story", true)
	testutil.CastTestVote(t, conn, oldStory, hostID, "8")

	// A new round hides the old story's votes without deleting them
	testutil.AddTestStory(t, conn, sessionID, "New story", true)

	_, view := getDetails(t, handler, sessionID)
	if view.ActiveStory == nil || view.ActiveStory.Title != "New story" {
		t.Fatalf("Expected 'New story' active, got %+v", view.ActiveStory)
	}
	if len(view.Votes) != 0 {
		t.Errorf("Expected old votes hidden, got %d", len(view.Votes))
	}

	var retained int
	err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE story_id = $1`, oldStory).Scan(&retained)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if retained != 1 {
		t.Errorf("Expected old vote retained in storage, got %d", retained)
	}
}

func TestGetSession_StoriesNewestFirst(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewDetailsHandler(conn)

	sessionID, _ := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")

	// Insert with explicit spaced timestamps so ordering is unambiguous
	base := time.Now().Add(-time.Hour)
	titles := []string{"First", "Second", "Third"}
	for i, title := range titles {
		_, err := conn.Exec(`
			INSERT INTO story (id, session_id, title, description, is_active, created_at)
			VALUES ($1, $2, $3, NULL, FALSE, $4)
		`, uuid.NewString(), sessionID, title, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("Failed to insert story: %v", err)
		}
	}

	_, view := getDetails(t, handler, sessionID)
	if len(view.Stories) != 3 {
		t.Fatalf("Expected 3 stories, got %d", len(view.Stories))
	}

	want := []string{"Third", "Second", "First"}
	for i, title := range want {
		if view.Stories[i].Title != title {
			t.Errorf("Stories[%d] = %q, want %q", i, view.Stories[i].Title, title)
		}
	}
}

func TestGetSession_BetsFollowRevealMasking(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewDetailsHandler(conn)

	sessionID, hostID := testutil.CreateTestSession(t, conn, "Sprint 1", "Alice")
	storyID := testutil.AddTestStory(t, conn, sessionID, "Login bug", true)

	_, err := conn.Exec(`
		INSERT INTO bet (id, story_id, participant_id, bet_value, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), storyID, hostID, "2.5", time.Now())
	if err != nil {
		t.Fatalf("Failed to insert bet: %v", err)
	}

	_, view := getDetails(t, handler, sessionID)
	if len(view.Bets) != 1 {
		t.Fatalf("Expected 1 bet, got %d", len(view.Bets))
	}
	if view.Bets[0].BetValue != nil {
		t.Error("Bet value exposed before reveal")
	}

	if _, err := conn.Exec(`UPDATE session SET votes_revealed = TRUE WHERE id = $1`, sessionID); err != nil {
		t.Fatalf("Failed to reveal: %v", err)
	}

	_, view = getDetails(t, handler, sessionID)
	if view.Bets[0].BetValue == nil || *view.Bets[0].BetValue != "2.5" {
		t.Errorf("Expected bet value '2.5' after reveal, got %v", view.Bets[0].BetValue)
	}
}
