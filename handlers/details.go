// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/planning-poker/middleware"
	"github.com/danielhkuo/planning-poker/models"
)

type DetailsHandler struct {
	db *sql.DB
}

func NewDetailsHandler(db *sql.DB) *DetailsHandler {
	return &DetailsHandler{db: db}
}

// GetSession handles GET /sessions/:id
// The sole read operation. Clients poll it on a fixed interval, so it must
// be cheap, uncached, and reflect the latest committed writes. Votes and
// bets are scoped to the active story; their values stay masked until the
// session's reveal flag is set.
func (h *DetailsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	var session models.Session
	var currentStoryID sql.NullString
	err := h.db.QueryRow(`
		SELECT id, name, current_story_id, votes_revealed, created_at
		FROM session
		WHERE id = $1
	`, sessionID).Scan(
		&session.ID, &session.Name, &currentStoryID,
		&session.VotesRevealed, &session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if currentStoryID.Valid {
		session.CurrentStoryID = &currentStoryID.String
	}

	participants, err := h.loadParticipants(sessionID)
	if err != nil {
		slog.Error("failed to load participants", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	stories, err := h.loadStories(sessionID)
	if err != nil {
		slog.Error("failed to load stories", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// The active story is found by scanning, not trusted from the session
	// pointer: stories are newest-first, so a prior invariant violation
	// (two actives) degrades to "newest wins".
	var activeStory *models.Story
	for i := range stories {
		if stories[i].IsActive {
			activeStory = &stories[i]
			break
		}
	}

	votes := []models.VoteView{}
	bets := []models.BetView{}
	if activeStory != nil {
		votes, err = h.loadVotes(activeStory.ID, session.VotesRevealed)
		if err != nil {
			slog.Error("failed to load votes", "error", err, "story_id", activeStory.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		bets, err = h.loadBets(activeStory.ID, session.VotesRevealed)
		if err != nil {
			slog.Error("failed to load bets", "error", err, "story_id", activeStory.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionView{
		Session:       session,
		Participants:  participants,
		Stories:       stories,
		ActiveStory:   activeStory,
		Votes:         votes,
		Bets:          bets,
		AllowedValues: models.VoteValues,
	})
}

func (h *DetailsHandler) loadParticipants(sessionID string) ([]models.Participant, error) {
	rows, err := h.db.Query(`
		SELECT id, session_id, user_id, name, is_host, created_at
		FROM participant
		WHERE session_id = $1
		ORDER BY created_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.SessionID, &p.UserID, &p.Name, &p.IsHost, &p.CreatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (h *DetailsHandler) loadStories(sessionID string) ([]models.Story, error) {
	rows, err := h.db.Query(`
		SELECT id, session_id, title, description, is_active, created_at
		FROM story
		WHERE session_id = $1
		ORDER BY created_at DESC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stories := []models.Story{}
	for rows.Next() {
		var s models.Story
		var description sql.NullString
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Title, &description, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			s.Description = &description.String
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

func (h *DetailsHandler) loadVotes(storyID string, revealed bool) ([]models.VoteView, error) {
	rows, err := h.db.Query(`
		SELECT v.participant_id, p.name, v.vote_value, v.created_at
		FROM vote v
		JOIN participant p ON v.participant_id = p.id
		WHERE v.story_id = $1
		ORDER BY v.created_at
	`, storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []models.VoteView{}
	for rows.Next() {
		var v models.VoteView
		var value sql.NullString
		if err := rows.Scan(&v.ParticipantID, &v.ParticipantName, &value, &v.CreatedAt); err != nil {
			return nil, err
		}
		if revealed && value.Valid {
			v.VoteValue = &value.String
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (h *DetailsHandler) loadBets(storyID string, revealed bool) ([]models.BetView, error) {
	rows, err := h.db.Query(`
		SELECT b.participant_id, p.name, b.bet_value, b.created_at
		FROM bet b
		JOIN participant p ON b.participant_id = p.id
		WHERE b.story_id = $1
		ORDER BY b.created_at
	`, storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bets := []models.BetView{}
	for rows.Next() {
		var b models.BetView
		var value string
		if err := rows.Scan(&b.ParticipantID, &b.ParticipantName, &value, &b.CreatedAt); err != nil {
			return nil, err
		}
		if revealed {
			b.BetValue = &value
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}
