// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateSessionRequest: session_name, host_name
  - JoinSessionRequest: user_name
  - AddStoryRequest: title, description
  - CastVoteRequest: participant_id, vote_value
  - CreateBetRequest: participant_id, amount
  - ClearVotesRequest: next_story_id (optional)

# Response Types

Types for JSON responses:

  - CreateSessionResponse: session_id, host_id, host_name
  - JoinSessionResponse: session_id, participant_id, participant_name, is_host
  - SuccessResponse: success
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Session: session metadata, active story pointer, reveal flag
  - Participant: a person in a session, keyed by (session_id, user_id)
  - Story: an estimation item; at most one per session is active
  - Vote: one participant's estimate for a story
  - Bet: one participant's side bet on a story

# Read-Path Types

Shapes surfaced to polling clients:

  - VoteView: vote joined with its submitter; value is null until reveal
  - BetView: same, for bets
  - SessionView: the full snapshot returned by GET /sessions/{id}

# Vote Values

The canonical value set:

	VoteValues = {"0", "1", "2", "3", "5", "8", "13", "21", "?", "coffee"}

"?" means the participant can't estimate; "coffee" requests a break.
IsValidVoteValue checks membership; ParseBetAmount validates bet amounts.
*/
package models
