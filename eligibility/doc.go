// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package eligibility computes what a specific voter may do right now.

Evaluate is a pure combinator over (current phase, voter status,
election channel flags) producing four booleans (has_voted,
is_eligible, can_vote_online, can_vote_tps) and a channel-specific
Reason for each disabled action, so UIs show "voting has not opened"
rather than a generic error.

The gate is advisory. It drives which controls are enabled; the vote
recording server independently re-checks every condition (plus channel
exclusivity) at cast time against the authoritative VoterStatus record.
*/
package eligibility
