// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the campus-vote
API, the server half of the vote-casting contracts.

# Handler Types

Each handler is a struct with database and config dependencies:

  - ElectionHandler: current election, phases, candidates, voter status
  - VoteHandler: online and TPS ballot casting, signature submission
  - TPSHandler: QR credential validation and rotation

Handlers are created via constructor functions that accept *sql.DB and
Config:

	voteHandler := handlers.NewVoteHandler(db, cfg)

# Election Timeline

	GET /election                  → active election + current phase
	GET /election/{id}/phases      → configured phase windows
	GET /election/{id}/candidates  → ballot entries
	GET /election/{id}/status      → voter's gating record

# Vote Casting

	POST /election/{id}/votes/online → CastOnline
	POST /election/{id}/votes/tps    → CastTPS
	POST /election/{id}/signature    → SubmitSignature

Casting runs a fixed check chain: voting open, voter eligible and not
blocked, channel enabled election-wide, channel assigned to this
voter, candidate valid. The ballot insert is guarded by a unique
(election, voter) constraint: a second write from any channel returns
409 with code already_voted, which clients treat as idempotent
success. Signatures follow the same pattern with code signature_exists.

# TPS Credentials

	POST /tps/validate                    → ValidateCredential
	POST /election/{id}/credential/rotate → RotateCredential

Validation proves the HMAC, checks expiry, then matches the rotation
nonce against the voter's stored one; success consumes the credential
by rotating the nonce. Voter operations require the X-Voter-Token
header.
*/
package handlers
