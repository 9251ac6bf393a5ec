// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the planning poker API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db)

# Endpoints

Health:

	GET /health

Session lifecycle:

	POST /sessions           - Create session (caller becomes host)
	POST /sessions/{id}/join - Join by display name (idempotent rejoin)

Rounds:

	POST /sessions/{id}/stories - Add story, start a fresh round
	POST /sessions/{id}/clear   - Clear reveal flag, advance or park

Voting:

	POST /sessions/{id}/votes  - Cast/overwrite a vote on the active story
	POST /stories/{id}/bets    - Place/overwrite a side bet
	POST /sessions/{id}/reveal - Make cast votes visible

Read path:

	GET /sessions/{id} - Full session snapshot, polled by clients

# Handler Initialization

The router creates handler instances with dependency injection:

	sessionHandler := handlers.NewSessionHandler(db)
	storyHandler := handlers.NewStoryHandler(db)
	votingHandler := handlers.NewVotingHandler(db)
	detailsHandler := handlers.NewDetailsHandler(db)

All handlers receive the database connection.
*/
package router
