// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/planning-poker/middleware"
	"github.com/danielhkuo/planning-poker/models"
)

type VotingHandler struct {
	db *sql.DB
}

func NewVotingHandler(db *sql.DB) *VotingHandler {
	return &VotingHandler{db: db}
}

// CastVote handles POST /sessions/:id/votes
// Votes target the session's active story. One row per (story, participant):
// a second cast for the same story overwrites the value via the store's
// ON CONFLICT path, so concurrent recasts serialize to last-writer-wins
// without any in-process locking.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ParticipantID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "participant_id is required")
		return
	}

	if !models.IsValidVoteValue(req.VoteValue) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "vote_value must be one of the allowed values")
		return
	}

	// Session must exist
	var exists string
	err := h.db.QueryRow(`SELECT id FROM session WHERE id = $1`, sessionID).Scan(&exists)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Resolve the active story. At most one by invariant; newest-first in
	// case that invariant was ever violated.
	var storyID string
	err = h.db.QueryRow(`
		SELECT id FROM story
		WHERE session_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`, sessionID).Scan(&storyID)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusConflict, "No active story to vote on")
		return
	}
	if err != nil {
		slog.Error("failed to query active story", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Participant must belong to this session
	var participantSession string
	err = h.db.QueryRow(`
		SELECT session_id FROM participant WHERE id = $1
	`, req.ParticipantID).Scan(&participantSession)

	if err == sql.ErrNoRows || (err == nil && participantSession != sessionID) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Participant does not belong to this session")
		return
	}
	if err != nil {
		slog.Error("failed to query participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Upsert keyed on (story_id, participant_id): last writer wins
	var voteID string
	var createdAt time.Time
	err = h.db.QueryRow(`
		INSERT INTO vote (id, story_id, participant_id, vote_value, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (story_id, participant_id) DO UPDATE SET
			vote_value = excluded.vote_value,
			created_at = excluded.created_at
		RETURNING id, created_at
	`, uuid.NewString(), storyID, req.ParticipantID, req.VoteValue, time.Now()).Scan(&voteID, &createdAt)

	if err != nil {
		slog.Error("failed to upsert vote", "error", err, "story_id", storyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	slog.Info("vote cast", "session_id", sessionID, "story_id", storyID, "participant_id", req.ParticipantID)

	middleware.JSONResponse(w, http.StatusCreated, models.Vote{
		ID:            voteID,
		StoryID:       storyID,
		ParticipantID: req.ParticipantID,
		VoteValue:     req.VoteValue,
		CreatedAt:     createdAt,
	})
}

// CreateBet handles POST /stories/:id/bets
// Bets are an independent side channel with the same upsert rule as votes,
// except the story is addressed directly and must currently be active.
func (h *VotingHandler) CreateBet(w http.ResponseWriter, r *http.Request) {
	storyID := r.PathValue("id")
	if storyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "story_id is required")
		return
	}

	var req models.CreateBetRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ParticipantID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "participant_id is required")
		return
	}

	amount, err := models.ParseBetAmount(req.Amount)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "amount must be a finite number")
		return
	}

	// Story must exist and be the active one
	var storySession string
	var isActive bool
	err = h.db.QueryRow(`
		SELECT session_id, is_active FROM story WHERE id = $1
	`, storyID).Scan(&storySession, &isActive)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Story not found")
		return
	}
	if err != nil {
		slog.Error("failed to query story", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !isActive {
		middleware.ErrorResponse(w, http.StatusConflict, "Story is not active")
		return
	}

	// Participant must belong to the story's session
	var participantSession string
	err = h.db.QueryRow(`
		SELECT session_id FROM participant WHERE id = $1
	`, req.ParticipantID).Scan(&participantSession)

	if err == sql.ErrNoRows || (err == nil && participantSession != storySession) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Participant does not belong to this session")
		return
	}
	if err != nil {
		slog.Error("failed to query participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var betID string
	var createdAt time.Time
	err = h.db.QueryRow(`
		INSERT INTO bet (id, story_id, participant_id, bet_value, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (story_id, participant_id) DO UPDATE SET
			bet_value = excluded.bet_value,
			created_at = excluded.created_at
		RETURNING id, created_at
	`, uuid.NewString(), storyID, req.ParticipantID, amount, time.Now()).Scan(&betID, &createdAt)

	if err != nil {
		slog.Error("failed to upsert bet", "error", err, "story_id", storyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to place bet")
		return
	}

	slog.Info("bet placed", "story_id", storyID, "participant_id", req.ParticipantID)

	middleware.JSONResponse(w, http.StatusCreated, models.Bet{
		ID:            betID,
		StoryID:       storyID,
		ParticipantID: req.ParticipantID,
		BetValue:      amount,
		CreatedAt:     createdAt,
	})
}

// RevealVotes handles POST /sessions/:id/reveal
// Pure visibility flip: no vote rows change, the read path just stops
// masking values. Revealing an already-revealed session succeeds.
func (h *VotingHandler) RevealVotes(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	// Session must exist
	var exists string
	err := h.db.QueryRow(`SELECT id FROM session WHERE id = $1`, sessionID).Scan(&exists)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var hasActive bool
	err = h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM story WHERE session_id = $1 AND is_active = TRUE)
	`, sessionID).Scan(&hasActive)

	if err != nil {
		slog.Error("failed to query active story", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !hasActive {
		middleware.ErrorResponse(w, http.StatusConflict, "No active story to reveal")
		return
	}

	_, err = h.db.Exec(`UPDATE session SET votes_revealed = TRUE WHERE id = $1`, sessionID)
	if err != nil {
		slog.Error("failed to reveal votes", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reveal votes")
		return
	}

	slog.Info("votes revealed", "session_id", sessionID)

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
