// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/planning-poker/middleware"
	"github.com/danielhkuo/planning-poker/models"
)

type StoryHandler struct {
	db *sql.DB
}

func NewStoryHandler(db *sql.DB) *StoryHandler {
	return &StoryHandler{db: db}
}

// AddStory handles POST /sessions/:id/stories
// Adding a story starts a fresh round: the previous active story is
// deactivated, the new one becomes current, and the reveal flag resets.
// All three steps commit atomically so pollers never see a session pointing
// at a story that is not active.
func (h *StoryHandler) AddStory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	var req models.AddStoryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
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

	storyID := uuid.NewString()
	now := time.Now()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Deactivate the current story (at most one, by invariant)
	_, err = tx.Exec(`
		UPDATE story SET is_active = FALSE WHERE session_id = $1 AND is_active = TRUE
	`, sessionID)

	if err != nil {
		slog.Error("failed to deactivate stories", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add story")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO story (id, session_id, title, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5)
	`, storyID, sessionID, req.Title, req.Description, now)

	if err != nil {
		slog.Error("failed to insert story", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add story")
		return
	}

	_, err = tx.Exec(`
		UPDATE session SET current_story_id = $1, votes_revealed = FALSE WHERE id = $2
	`, storyID, sessionID)

	if err != nil {
		slog.Error("failed to update session pointer", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add story")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add story")
		return
	}

	slog.Info("story added", "session_id", sessionID, "story_id", storyID, "title", req.Title)

	middleware.JSONResponse(w, http.StatusCreated, models.Story{
		ID:          storyID,
		SessionID:   sessionID,
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   now,
	})
}

// ClearVotes handles POST /sessions/:id/clear
// Resets the reveal flag and moves the active story pointer: to the given
// next_story_id, or to nothing when omitted. Vote and bet rows are never
// purged; a new round just changes which story's rows the read path surfaces.
// A next_story_id outside this session is an explicit 404, not a silent no-op.
func (h *StoryHandler) ClearVotes(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	// The body is optional: clearing without advancing sends no payload.
	var req models.ClearVotesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
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

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if req.NextStoryID != nil {
		// The target must belong to this session
		var storySession string
		err = tx.QueryRow(`SELECT session_id FROM story WHERE id = $1`, *req.NextStoryID).Scan(&storySession)
		if err == sql.ErrNoRows || (err == nil && storySession != sessionID) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Story not found in session")
			return
		}
		if err != nil {
			slog.Error("failed to query next story", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		_, err = tx.Exec(`UPDATE story SET is_active = FALSE WHERE session_id = $1`, sessionID)
		if err != nil {
			slog.Error("failed to deactivate stories", "error", err, "session_id", sessionID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear votes")
			return
		}

		_, err = tx.Exec(`UPDATE story SET is_active = TRUE WHERE id = $1`, *req.NextStoryID)
		if err != nil {
			slog.Error("failed to activate next story", "error", err, "story_id", *req.NextStoryID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear votes")
			return
		}

		_, err = tx.Exec(`
			UPDATE session SET current_story_id = $1, votes_revealed = FALSE WHERE id = $2
		`, *req.NextStoryID, sessionID)
	} else {
		_, err = tx.Exec(`UPDATE story SET is_active = FALSE WHERE session_id = $1`, sessionID)
		if err != nil {
			slog.Error("failed to deactivate stories", "error", err, "session_id", sessionID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear votes")
			return
		}

		_, err = tx.Exec(`
			UPDATE session SET current_story_id = NULL, votes_revealed = FALSE WHERE id = $1
		`, sessionID)
	}

	if err != nil {
		slog.Error("failed to update session", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear votes")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear votes")
		return
	}

	slog.Info("votes cleared", "session_id", sessionID, "advanced", req.NextStoryID != nil)

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
