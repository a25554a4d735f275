// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voteflow implements the two vote-casting state machines.

# Online Flow

	selecting → confirming → signing → submitted
	                                 ↘ blocked (gate said no at entry)

Selection is replaceable until confirmed; confirmation requires an
explicit acknowledgement; submission without it is a no-op. Once the
ballot write round-trips, Cancel is refused; there is no way back from
a recorded vote. The signature step rejects blank captures locally and
finishes with a client-generated display receipt.

# TPS Flow

	awaiting_scan → validating → ready_to_vote → selecting →
	confirming → submitted, or rejected(typed)

Validation holds the screen for a minimum perceived duration, then
checks in fixed order: already voted, credential validity, schedule.
Each rejection is a distinct terminal screen with its own recovery:
expired_qr offers a rescan, not_started shows the scheduled start, the
rest route back to the dashboard.

# Idempotency

Both machines treat a conflict from the recorder (AlreadyRecorded) as
success. The server's unique ballot constraint means a conflict can
only arise when this voter's ballot already landed (typically a
retried request whose first response was dropped), so advancing is the
only behavior that never strands a voter.

# Single Flight

At most one submission request is in flight per machine; a second
submit while one is pending is ignored, not queued. All collaborator
calls take a context so navigation away cancels in-flight work.
*/
package voteflow
