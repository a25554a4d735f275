// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voteflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/campus-vote/eligibility"
)

// OnlineState is the online casting flow position.
type OnlineState int

const (
	OnlineSelecting OnlineState = iota
	OnlineConfirming
	OnlineSigning
	OnlineSubmitted
	OnlineBlocked
)

func (s OnlineState) String() string {
	switch s {
	case OnlineSelecting:
		return "selecting"
	case OnlineConfirming:
		return "confirming"
	case OnlineSigning:
		return "signing"
	case OnlineSubmitted:
		return "submitted"
	case OnlineBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

var (
	ErrNotSelecting   = errors.New("no candidate selection in progress")
	ErrNotConfirming  = errors.New("no confirmation in progress")
	ErrNotSigning     = errors.New("no signature step in progress")
	ErrVoteRecorded   = errors.New("vote already recorded; cannot go back")
	ErrFlowBlocked    = errors.New("voting flow is blocked")
	ErrFlowTerminated = errors.New("voting flow already finished")
)

// OnlineFlow drives one voter through select → confirm → sign →
// submitted. A flow is single-use: once the ballot write round-trips,
// no backward transition exists.
type OnlineFlow struct {
	mu sync.Mutex

	electionID string
	caster     Caster
	status     StatusFetcher // optional authoritative re-check

	state        OnlineState
	blockReason  eligibility.Reason
	candidateID  string
	acknowledged bool
	inFlight     bool
	voteRecorded bool
	receipt      Receipt
}

// NewOnlineFlow builds a flow for one voter session. The eligibility
// decision gates entry: a voter who cannot vote online starts (and
// stays) in OnlineBlocked with the channel-specific reason.
func NewOnlineFlow(electionID string, caster Caster, status StatusFetcher, d eligibility.Decision) *OnlineFlow {
	f := &OnlineFlow{
		electionID: electionID,
		caster:     caster,
		status:     status,
		state:      OnlineSelecting,
	}
	if !d.CanVoteOnline {
		f.state = OnlineBlocked
		f.blockReason = d.OnlineReason
	}
	return f
}

// State returns the current flow position.
func (f *OnlineFlow) State() OnlineState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// BlockReason explains an OnlineBlocked state.
func (f *OnlineFlow) BlockReason() eligibility.Reason {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blockReason
}

// Selection returns the pending candidate choice.
func (f *OnlineFlow) Selection() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.candidateID
}

// Receipt returns the display receipt; valid once Submitted.
func (f *OnlineFlow) Receipt() Receipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipt
}

// Select records a candidate choice and advances to confirmation.
// Re-selecting while confirming replaces the pending choice; the
// acknowledgement resets since it applied to the previous choice.
func (f *OnlineFlow) Select(candidateID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case OnlineSelecting, OnlineConfirming:
		f.candidateID = candidateID
		f.acknowledged = false
		f.state = OnlineConfirming
		return nil
	case OnlineBlocked:
		return ErrFlowBlocked
	default:
		return ErrNotSelecting
	}
}

// Acknowledge records the "I confirm this is final" checkbox.
func (f *OnlineFlow) Acknowledge(ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == OnlineConfirming {
		f.acknowledged = ok
	}
}

// Cancel abandons confirmation and returns to selecting. Once the
// ballot write has round-tripped there is no way back.
func (f *OnlineFlow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.voteRecorded {
		return ErrVoteRecorded
	}
	if f.state != OnlineConfirming {
		return ErrNotConfirming
	}
	f.state = OnlineSelecting
	f.candidateID = ""
	f.acknowledged = false
	return nil
}

// SubmitVote sends the ballot. Submitting without the acknowledgement
// is a no-op. A Conflict from the recorder advances the flow exactly
// like an Accepted: the ballot already exists, so the voter moves on
// to signing rather than being stranded. Transient failures keep the
// flow in Confirming for retry. A second call while one is in flight
// is ignored.
func (f *OnlineFlow) SubmitVote(ctx context.Context) error {
	f.mu.Lock()
	if f.state != OnlineConfirming {
		f.mu.Unlock()
		return ErrNotConfirming
	}
	if !f.acknowledged || f.inFlight {
		f.mu.Unlock()
		return nil
	}
	f.inFlight = true
	candidateID := f.candidateID
	f.mu.Unlock()

	outcome, err := f.castWithAuthoritativeCheck(ctx, candidateID)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if err != nil {
		return err
	}
	_ = outcome // Accepted and AlreadyRecorded advance identically.
	f.voteRecorded = true
	f.state = OnlineSigning
	return nil
}

// castWithAuthoritativeCheck re-queries the status record before the
// write. A has-voted record means a prior attempt landed; that is the
// AlreadyRecorded outcome, not an error.
func (f *OnlineFlow) castWithAuthoritativeCheck(ctx context.Context, candidateID string) (Outcome, error) {
	if f.status != nil {
		st, err := f.status.VoterStatus(ctx, f.electionID)
		if err == nil && st.HasVoted {
			return AlreadyRecorded, nil
		}
		// A failed status read is not fatal: the cast itself is the
		// authoritative check.
	}
	return f.caster.CastOnlineVote(ctx, f.electionID, candidateID)
}

// SubmitSignature sends the captured signature image. Blank captures
// are rejected locally before any network call. Success or an
// already-exists conflict both finish the flow.
func (f *OnlineFlow) SubmitSignature(ctx context.Context, image []byte) error {
	f.mu.Lock()
	if f.state != OnlineSigning {
		f.mu.Unlock()
		return ErrNotSigning
	}
	if len(image) == 0 {
		f.mu.Unlock()
		return ErrEmptySignature
	}
	if f.inFlight {
		f.mu.Unlock()
		return nil
	}
	f.inFlight = true
	f.mu.Unlock()

	_, err := f.caster.SubmitSignature(ctx, f.electionID, image)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if err != nil {
		return err
	}
	f.state = OnlineSubmitted
	f.receipt = Receipt{Token: uuid.NewString(), IssuedAt: time.Now()}
	return nil
}
