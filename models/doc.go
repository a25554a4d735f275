// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain types and request/response types for the
campus-vote API.

# Domain Types

  - Election: one voting cycle, with per-channel enable flags and the
    voting window
  - Phase: a named sub-interval of the election timeline
  - Candidate: a ballot entry, immutable while voting is open
  - Station: a physical polling place (TPS)
  - VoterStatus: the per-(voter, election) gating record
  - Ballot: a recorded vote; voter and candidate are never serialized

# Error Codes

Error responses carry a machine-readable "code" alongside the message.
Conflict-class codes (already_voted, signature_exists) are the
idempotency signal: clients treat them as success, not failure.
*/
package models
