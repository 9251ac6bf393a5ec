// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/planning-poker/ident"
	"github.com/danielhkuo/planning-poker/middleware"
	"github.com/danielhkuo/planning-poker/models"
)

type SessionHandler struct {
	db *sql.DB
}

func NewSessionHandler(db *sql.DB) *SessionHandler {
	return &SessionHandler{db: db}
}

// CreateSession handles POST /sessions
// Inserts the session and its host participant in one transaction; a failure
// of either insert is a storage error, not a validation error.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.SessionName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_name is required")
		return
	}
	if req.HostName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "host_name is required")
		return
	}

	// Generate the shareable session token
	sessionID, err := ident.GenerateSessionID()
	if err != nil {
		slog.Error("failed to generate session ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	hostID := uuid.NewString()
	now := time.Now()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO session (id, name, votes_revealed, created_at)
		VALUES ($1, $2, FALSE, $3)
	`, sessionID, req.SessionName, now)

	if err != nil {
		slog.Error("failed to insert session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO participant (id, session_id, user_id, name, is_host, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5)
	`, hostID, sessionID, req.HostName, req.HostName, now)

	if err != nil {
		slog.Error("failed to insert host participant", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session created", "session_id", sessionID, "host", req.HostName)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: sessionID,
		HostID:    hostID,
		HostName:  req.HostName,
	})
}

// JoinSession handles POST /sessions/:id/join
// Joining is idempotent per (session, user name): rejoining with the same
// name returns the existing participant, host status intact.
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	var req models.JoinSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UserName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_name is required")
		return
	}
	if len(req.UserName) > 50 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_name must be at most 50 characters")
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

	// Insert-if-absent keyed on (session_id, user_id). Two racing joins with
	// the same name resolve to one row; the loser reads the winner's row.
	res, err := h.db.Exec(`
		INSERT INTO participant (id, session_id, user_id, name, is_host, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		ON CONFLICT (session_id, user_id) DO NOTHING
	`, uuid.NewString(), sessionID, req.UserName, req.UserName, time.Now())

	if err != nil {
		slog.Error("failed to insert participant", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join session")
		return
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join session")
		return
	}

	var participantID string
	var isHost bool
	err = h.db.QueryRow(`
		SELECT id, is_host FROM participant WHERE session_id = $1 AND user_id = $2
	`, sessionID, req.UserName).Scan(&participantID, &isHost)

	if err != nil {
		slog.Error("failed to query participant", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join session")
		return
	}

	status := http.StatusOK
	if inserted == 1 {
		status = http.StatusCreated
	}

	slog.Info("participant joined", "session_id", sessionID, "participant_id", participantID, "new", inserted == 1)

	middleware.JSONResponse(w, status, models.JoinSessionResponse{
		SessionID:       sessionID,
		ParticipantID:   participantID,
		ParticipantName: req.UserName,
		IsHost:          isHost,
	})
}
