// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db creates the database schema.

# Tables

  - election: one voting cycle; status, channel toggles, voting window
  - phase: configured timeline windows, keyed (election_id, key)
  - candidate: ballot entries, unique ballot numbers per election
  - station: physical polling places
  - voter: identities and session tokens
  - voter_status: per-(voter, election) gating record, including the
    current credential rotation nonce
  - ballot: recorded votes
  - signature: online-vote signature images

# Uniqueness Guarantees

  - ballot (election_id, voter_id) unique: the first ballot write
    wins; later attempts fail the constraint and the API reports 409
  - signature (election_id, voter_id) primary key: same pattern
  - voter.token unique
  - candidate (election_id, ballot_number) unique

# Dialects

CreateSchema accepts "postgres" or "sqlite". The DDL is shared except
for the timestamp default; handlers always bind explicit timestamps,
so the default only covers manual inserts.
*/
package db
