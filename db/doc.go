// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - session: Estimation session metadata, current story pointer, reveal flag
  - participant: Named members of a session (host or voter)
  - story: Items being estimated; at most one active per session
  - vote: One vote per participant per story
  - bet: Optional numeric side commitment, same shape as vote

# Relationships

	session 1──* participant
	session 1──* story
	story   1──* vote
	story   1──* bet

All foreign keys use ON DELETE CASCADE. session.current_story_id points at a
story but carries no FK (the reference is circular); the handlers validate it.

# Uniqueness constraints

Cross-row invariants are enforced here, not by in-process locking:

  - participant(session_id, user_id): a display name joins a session once
  - vote(story_id, participant_id): one vote row per participant per story
  - bet(story_id, participant_id): same rule for bets

Concurrent vote submissions for the same pair are serialized by the store's
ON CONFLICT path; last writer wins.

# Portability

The server runs against PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite).
The DDL and all queries stick to the shared dialect: TEXT primary keys,
CURRENT_TIMESTAMP defaults, ON CONFLICT upserts, RETURNING. Placeholders are
written $1..$n, each used once in ascending order, so the same query text
binds identically under both drivers.
*/
package db
