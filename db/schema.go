// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// dialect is "postgres" or "sqlite"; the DDL differs only in the
// timestamp default expression.
func CreateSchema(db *sql.DB, dialect string) error {
	ddl := schema
	if dialect == "sqlite" {
		ddl = strings.ReplaceAll(ddl, "NOW()", "CURRENT_TIMESTAMP")
	}
	_, err := db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'registration', 'campaign', 'voting_open', 'voting_closed', 'archived')),
    online_enabled BOOLEAN NOT NULL DEFAULT TRUE,
    tps_enabled BOOLEAN NOT NULL DEFAULT TRUE,
    current_phase TEXT,
    voting_start TIMESTAMP,
    voting_end TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_election_status ON election(status);

-- Phase windows
CREATE TABLE IF NOT EXISTS phase (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    key TEXT NOT NULL,
    label TEXT,
    starts_at TIMESTAMP,
    ends_at TIMESTAMP,
    PRIMARY KEY (election_id, key)
);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    ballot_number INTEGER NOT NULL,
    name TEXT NOT NULL,
    tagline TEXT,
    UNIQUE (election_id, ballot_number)
);

CREATE INDEX IF NOT EXISTS idx_candidate_election_id ON candidate(election_id);

-- Polling stations
CREATE TABLE IF NOT EXISTS station (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    token TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_voter_token ON voter(token);

-- Per-(voter, election) gating record. has_voted flips exactly once,
-- by the ballot insert.
CREATE TABLE IF NOT EXISTS voter_status (
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    eligible BOOLEAN NOT NULL DEFAULT TRUE,
    blocked BOOLEAN NOT NULL DEFAULT FALSE,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    channel TEXT NOT NULL DEFAULT 'none' CHECK (channel IN ('none', 'online', 'tps')),
    voted_at TIMESTAMP,
    station_id TEXT REFERENCES station(id),
    credential_nonce TEXT,
    PRIMARY KEY (voter_id, election_id)
);

-- Ballots. The UNIQUE (election_id, voter_id) constraint is the
-- double-vote guarantee: the first write wins and every later attempt
-- surfaces as a uniqueness violation, which the API reports as a
-- conflict.
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    candidate_id TEXT NOT NULL REFERENCES candidate(id),
    channel TEXT NOT NULL CHECK (channel IN ('online', 'tps')),
    station_id TEXT REFERENCES station(id),
    cast_at TIMESTAMP NOT NULL DEFAULT NOW(),
    ip_hash TEXT,
    user_agent TEXT,
    UNIQUE (election_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_ballot_election_id ON ballot(election_id);

-- Signatures for online votes, one per (election, voter).
CREATE TABLE IF NOT EXISTS signature (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    image TEXT NOT NULL,
    signed_at TIMESTAMP NOT NULL DEFAULT NOW(),
    PRIMARY KEY (election_id, voter_id)
);
`
