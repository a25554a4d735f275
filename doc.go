// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the campus-vote API server.

campus-vote lets a campus community wait through scheduled election
phases and cast exactly one ballot, either online or at a physical
polling station (TPS) via a rotating QR credential.

# Starting the Server

The server requires environment variables or CLI flags for
configuration:

	DATABASE_URL=vote.db CREDENTIAL_SALT=... go run main.go

Or with flags:

	go run main.go -p 4172 -d vote.db --credential-salt ... --seed election.yaml

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string (sqlite path or postgres URL)
  - CREDENTIAL_SALT (--credential-salt): secret for TPS credential HMAC

Optional settings:

  - PORT (-p): server port (default: 4172)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - SEED_FILE (--seed): YAML election bootstrap applied at startup

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (election, votes, TPS credentials)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Domain and request/response types
  - auth: Token generation and the rotating QR credential scheme
  - db: Schema creation (postgres and sqlite dialects)
  - cliparse: Configuration parsing
  - seed: YAML election bootstrap

The voting core is transport-independent and lives beside the server:

  - phase: timeline resolution, current-phase authority, countdown
  - eligibility: the four-boolean voting gate
  - voteflow: the online and TPS vote-casting state machines
  - client: HTTP client binding the state machines to this API

See package documentation for each component.
*/
package main
