// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles server configuration from CLI flags and environment.

# Configuration

ParseFlags reads flags first, then falls back to environment variables:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Settings:

  - DATABASE_URL (-d): connection string, required
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - PORT (-p): server port (default: 3321)

A .env file is loaded by main via godotenv before parsing, so local
development only needs a .env next to the binary.
*/
package cliparse
