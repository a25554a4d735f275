// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package phase

import "time"

// Status of one phase relative to the current time.
type Status string

const (
	Upcoming  Status = "upcoming"
	Active    Status = "active"
	Completed Status = "completed"
)

// Window is a configured phase interval. A nil Start or End means the
// bound is open; a fully nil window means "not configured yet", which
// resolves to Upcoming rather than an error.
type Window struct {
	Label string
	Start *time.Time
	End   *time.Time
}

// Entry is one resolved timeline row.
type Entry struct {
	Key    Key
	Label  string
	Start  *time.Time
	End    *time.Time
	Status Status
}

// Timeline is the full resolved schedule in canonical order.
type Timeline struct {
	Entries []Entry
}

// statusAt classifies a single window.
func statusAt(w Window, now time.Time) Status {
	switch {
	case w.Start != nil && now.Before(*w.Start):
		return Upcoming
	case w.End != nil && now.After(*w.End):
		return Completed
	case w.Start != nil && !now.Before(*w.Start):
		// Started and either open-ended or still inside the window.
		return Active
	default:
		// No data yet.
		return Upcoming
	}
}

// Resolve evaluates every canonical phase against the configured
// windows. Phases absent from the map resolve to Upcoming with no
// bounds.
func Resolve(windows map[Key]Window, now time.Time) Timeline {
	entries := make([]Entry, 0, len(Canonical))
	for _, k := range Canonical {
		w := windows[k]
		label := w.Label
		if label == "" {
			label = string(k)
		}
		entries = append(entries, Entry{
			Key:    k,
			Label:  label,
			Start:  w.Start,
			End:    w.End,
			Status: statusAt(w, now),
		})
	}
	return Timeline{Entries: entries}
}

// ActivePhase returns the locally computed current phase: the first
// canonical entry whose status is Active. ok is false when nothing is
// active (between phases, or nothing configured).
func (tl Timeline) ActivePhase() (Entry, bool) {
	for _, e := range tl.Entries {
		if e.Status == Active {
			return e, true
		}
	}
	return Entry{}, false
}

// Current picks the authoritative phase. A server-reported phase name,
// when present and recognizable, wins over the local computation; the
// local ActivePhase is the fallback for stale or absent reports.
func (tl Timeline) Current(reported string) (Key, bool) {
	if reported != "" {
		if k, ok := NormalizeKey(reported); ok {
			return k, true
		}
	}
	if e, ok := tl.ActivePhase(); ok {
		return e.Key, true
	}
	return "", false
}

// WindowsFromConfig normalizes externally keyed phase windows (as they
// arrive from the phases endpoint or a seed file) into canonical keys.
// Unrecognized keys are dropped; on duplicate keys the first mapping
// wins.
func WindowsFromConfig(raw map[string]Window) map[Key]Window {
	out := make(map[Key]Window, len(raw))
	// Two passes so exact canonical spellings beat alias spellings
	// regardless of map iteration order.
	for s, w := range raw {
		if k, ok := NormalizeKey(s); ok && s == string(k) {
			out[k] = w
		}
	}
	for s, w := range raw {
		if k, ok := NormalizeKey(s); ok {
			if _, exists := out[k]; !exists {
				out[k] = w
			}
		}
	}
	return out
}
