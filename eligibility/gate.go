// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package eligibility

import (
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/phase"
)

// Reason explains a disabled voting action in channel-specific terms.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonNotOpen         Reason = "voting_not_open"
	ReasonNotEligible     Reason = "not_eligible"
	ReasonChannelDisabled Reason = "channel_disabled"
	ReasonWrongChannel    Reason = "channel_not_assigned"
	ReasonAlreadyVoted    Reason = "already_voted"
)

// Decision is the gate output: the four booleans that enable or
// disable voting actions, plus per-channel reasons for the disabled
// ones.
type Decision struct {
	HasVoted      bool
	IsEligible    bool
	VotingOpen    bool
	CanVoteOnline bool
	CanVoteTPS    bool

	OnlineReason Reason
	TPSReason    Reason
}

// Evaluate combines the current phase, the voter's status record and
// the election's channel toggles. It is a pure function: same inputs,
// same Decision.
//
// A nil status fails open on eligibility so an unauthenticated preview
// can render; it never enables a cast, because the server re-checks
// status on every vote request.
func Evaluate(current phase.Key, haveCurrent bool, election models.Election, status *models.VoterStatus) Decision {
	var d Decision

	d.VotingOpen = (haveCurrent && current == phase.Voting) ||
		election.Status == models.ElectionVotingOpen

	d.IsEligible = true
	allowsOnline := true
	allowsTPS := true
	if status != nil {
		d.HasVoted = status.HasVoted
		d.IsEligible = status.Eligible && !status.Blocked
		allowsOnline = status.Channel == models.ChannelOnline
		allowsTPS = status.Channel == models.ChannelTPS
	}

	d.CanVoteOnline = d.VotingOpen && d.IsEligible && !d.HasVoted &&
		election.OnlineEnabled && allowsOnline
	d.CanVoteTPS = d.VotingOpen && d.IsEligible && !d.HasVoted &&
		election.TPSEnabled && allowsTPS

	d.OnlineReason = disabledReason(d, election.OnlineEnabled, allowsOnline, d.CanVoteOnline)
	d.TPSReason = disabledReason(d, election.TPSEnabled, allowsTPS, d.CanVoteTPS)
	return d
}

// disabledReason reports the first blocking condition in display
// priority: already voted beats everything, then eligibility, then the
// schedule, then channel configuration.
func disabledReason(d Decision, channelEnabled, channelAssigned, can bool) Reason {
	if can {
		return ReasonNone
	}
	switch {
	case d.HasVoted:
		return ReasonAlreadyVoted
	case !d.IsEligible:
		return ReasonNotEligible
	case !d.VotingOpen:
		return ReasonNotOpen
	case !channelEnabled:
		return ReasonChannelDisabled
	case !channelAssigned:
		return ReasonWrongChannel
	default:
		return ReasonNone
	}
}
