// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package phase resolves an election's configured time windows into a
single authoritative current phase, and projects the countdown shown
while waiting for voting to open or close.

# Timeline Resolution

The six canonical phases (registration, verification, campaign,
quiet-period, voting, recap) are evaluated in order against the
configured windows:

	tl := phase.Resolve(windows, time.Now())
	current, ok := tl.Current(serverReportedPhase)

A phase with a start but no end is active from its start onward; a
phase with no configured data is upcoming. When windows overlap (an
upstream configuration error) the first canonical phase wins, keeping
resolution deterministic.

Current prefers a server-reported phase name over the local clock-based
computation. Client clocks skew and cached configuration goes stale;
the local result is a fallback, not the authority.

# Key Normalization

External data spells phase names inconsistently ("Quiet_Period",
"recapitulation"). NormalizeKey maps all accepted spellings onto the
canonical keys at the boundary, so nothing past this package ever
string-matches phase names.

# Countdown

Target picks what to count toward (voting start before the window,
voting end inside it, a far-future sentinel otherwise) and Until
decomposes the remainder into clamped day/hour/minute/second
components. StartTicker drives periodic recomputation with
pause/resume for background tabs; resuming resynchronizes immediately.
*/
package phase
