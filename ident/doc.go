// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ident provides identifier generation for shareable session tokens.

# Session IDs

Session identifiers are short opaque tokens meant to be pasted into chat:

	id, err := ident.GenerateSessionID()

Each ID carries 64 bits of crypto/rand entropy, base62 encoded (alphanumeric
only) so it survives URLs and messaging apps without escaping. Collisions are
negligible at any realistic session count.

Row-level identifiers (participants, stories, votes, bets) are not generated
here; those are standard UUIDs from github.com/google/uuid.
*/
package ident
