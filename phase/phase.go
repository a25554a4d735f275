// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package phase

import "strings"

// Key identifies one stage of the election timeline.
type Key string

const (
	Registration Key = "registration"
	Verification Key = "verification"
	Campaign     Key = "campaign"
	QuietPeriod  Key = "quiet-period"
	Voting       Key = "voting"
	Recap        Key = "recap"
)

// Canonical is the timeline ordering. Resolution walks this slice, so
// when two configured windows overlap the earlier canonical phase wins.
var Canonical = []Key{Registration, Verification, Campaign, QuietPeriod, Voting, Recap}

// aliases maps normalized spellings seen in upstream configuration to
// canonical keys. Keys here are already lowercased and hyphenated.
var aliases = map[string]Key{
	"quiet":          QuietPeriod,
	"quiet-time":     QuietPeriod,
	"silent-period":  QuietPeriod,
	"recapitulation": Recap,
	"recap-period":   Recap,
	"verify":         Verification,
	"validation":     Verification,
	"campaigning":    Campaign,
	"vote":           Voting,
	"voting-period":  Voting,
	"register":       Registration,
}

// NormalizeKey maps an externally supplied phase name onto a canonical
// Key. Matching is case-insensitive and treats hyphens, underscores and
// spaces as equivalent. Returns false for names it cannot place.
func NormalizeKey(s string) (Key, bool) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.ReplaceAll(n, "_", "-")
	n = strings.ReplaceAll(n, " ", "-")
	for _, k := range Canonical {
		if n == string(k) {
			return k, true
		}
	}
	if k, ok := aliases[n]; ok {
		return k, true
	}
	return "", false
}
