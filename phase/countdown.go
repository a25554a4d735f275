// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package phase

import "time"

// FarFuture is the countdown target used when an election has no usable
// voting window. The countdown stays renderable instead of going nil.
var FarFuture = time.Date(2099, time.December, 31, 23, 59, 59, 0, time.UTC)

// Target picks the instant the countdown runs toward: the start of
// voting before the window opens, the end of voting while it is open,
// and FarFuture otherwise.
func Target(now time.Time, votingStart, votingEnd *time.Time) time.Time {
	if votingStart != nil && now.Before(*votingStart) {
		return *votingStart
	}
	if votingStart != nil && votingEnd != nil &&
		!now.Before(*votingStart) && !now.After(*votingEnd) {
		return *votingEnd
	}
	return FarFuture
}

// Countdown is a display-ready decomposition of the time remaining.
// All components are clamped to zero; IsPast reports target <= now.
type Countdown struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
	IsPast  bool
}

// Until decomposes the remaining time into countdown components.
func Until(now, target time.Time) Countdown {
	d := target.Sub(now)
	if d <= 0 {
		return Countdown{IsPast: true}
	}
	return Countdown{
		Days:    int(d / (24 * time.Hour)),
		Hours:   int(d/time.Hour) % 24,
		Minutes: int(d/time.Minute) % 60,
		Seconds: int(d/time.Second) % 60,
	}
}
