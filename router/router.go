// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/planning-poker/handlers"
	"github.com/danielhkuo/planning-poker/middleware"
)

func NewRouter(db *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(db)
	storyHandler := handlers.NewStoryHandler(db)
	votingHandler := handlers.NewVotingHandler(db)
	detailsHandler := handlers.NewDetailsHandler(db)

	started := time.Now()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"started": humanize.Time(started),
		})
	})

	// Session lifecycle
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("POST /sessions/{id}/join", middleware.WithLogging(sessionHandler.JoinSession))

	// Story activation and round control
	mux.HandleFunc("POST /sessions/{id}/stories", middleware.WithLogging(storyHandler.AddStory))
	mux.HandleFunc("POST /sessions/{id}/clear", middleware.WithLogging(storyHandler.ClearVotes))

	// Voting
	mux.HandleFunc("POST /sessions/{id}/votes", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("POST /stories/{id}/bets", middleware.WithLogging(votingHandler.CreateBet))
	mux.HandleFunc("POST /sessions/{id}/reveal", middleware.WithLogging(votingHandler.RevealVotes))

	// Read path (polled by clients on a fixed interval)
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(detailsHandler.GetSession))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("planning-poker API v1"))
	})

	return mux
}
