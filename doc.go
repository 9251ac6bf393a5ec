// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the planning poker API server.

Planning poker is a collaborative estimation tool: a host creates a session,
participants join by display name, the host proposes stories, everyone votes
from a fixed value set (with an optional numeric side bet), and the host
reveals or clears votes to advance. Clients converge by polling the session
details endpoint; there is no push channel.

# Starting the Server

The server requires a database URL via environment or CLI flags:

	DATABASE_URL=file:poker.db go run .

Or with flags:

	go run . -p 3321 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string (SQLite file or PostgreSQL URL)

Optional settings:

  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - PORT (-p): server port (default: 3321)

A .env file next to the binary is loaded automatically.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (sessions, stories, voting, details)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types, the canonical vote value set
  - ident: Shareable session token generation
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
