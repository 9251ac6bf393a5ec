// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the planning poker API.

# Handler Types

Each handler is a struct with a database dependency:

  - SessionHandler: Session creation and joining
  - StoryHandler: Story activation and round clearing/advancing
  - VotingHandler: Vote casting, bet placing, revealing
  - DetailsHandler: The polled read path

Handlers are created via constructor functions that accept *sql.DB:

	sessionHandler := handlers.NewSessionHandler(db)

# Session Flow

A host creates a session, shares its token, and drives rounds:

	POST /sessions                → CreateSession (returns host participant)
	POST /sessions/{id}/join      → JoinSession (idempotent per display name)
	POST /sessions/{id}/stories   → AddStory (starts a fresh round)
	POST /sessions/{id}/votes     → CastVote (upsert, active story only)
	POST /stories/{id}/bets       → CreateBet (side channel, same upsert rule)
	POST /sessions/{id}/reveal    → RevealVotes (visibility flag only)
	POST /sessions/{id}/clear     → ClearVotes (reset flag, advance or park)
	GET  /sessions/{id}           → GetSession (the polled snapshot)

# State Machine

A session has at most one active story. Adding a story deactivates the
previous one, points the session at the new one, and resets the reveal flag.
Clearing resets the flag and either activates a chosen existing story or
leaves the session with no active story. Votes and bets persist across
rounds but are only surfaced while their story is active.

# Concurrency

There is no in-process locking. All cross-row invariants live in the
store's uniqueness constraints, and concurrent vote upserts serialize
through ON CONFLICT; last writer wins. Multi-statement transitions
(AddStory, ClearVotes, CreateSession) each run in one transaction so
pollers never observe intermediate state.

# Identity

There is no authentication. Participants are distinguished by a
caller-supplied display name; the client persists {id, name, is_host} per
session locally and sends the participant id on every mutating call.
*/
package handlers
