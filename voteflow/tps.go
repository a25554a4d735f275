// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voteflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// TPSState is the station casting flow position.
type TPSState int

const (
	TPSAwaitingScan TPSState = iota
	TPSValidating
	TPSReadyToVote
	TPSSelecting
	TPSConfirming
	TPSSubmitted
	TPSRejected
)

func (s TPSState) String() string {
	switch s {
	case TPSAwaitingScan:
		return "awaiting_scan"
	case TPSValidating:
		return "validating"
	case TPSReadyToVote:
		return "ready_to_vote"
	case TPSSelecting:
		return "selecting"
	case TPSConfirming:
		return "confirming"
	case TPSSubmitted:
		return "submitted"
	case TPSRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// RejectReason is the typed rejection taxonomy. Each reason gets its
// own screen and recovery action, never a generic error banner.
type RejectReason string

const (
	RejectAlreadyVoted RejectReason = "already_voted" // routes back to dashboard
	RejectExpiredQR    RejectReason = "expired_qr"    // offers a rescan
	RejectNotStarted   RejectReason = "not_started"   // shows the scheduled start
	RejectClosed       RejectReason = "closed"        // routes back to dashboard
)

var (
	ErrNotAwaitingScan  = errors.New("no scan expected in this state")
	ErrNotReady         = errors.New("credential not yet validated")
	ErrRescanNotOffered = errors.New("this rejection does not offer a rescan")
)

// DefaultValidateDuration is the minimum perceived length of the
// validating step. The checks themselves are near-instant; finishing
// the progress animation early reads as "nothing was checked" to the
// officer watching the screen.
const DefaultValidateDuration = 2 * time.Second

// TPSDeps are the collaborators a station flow talks to.
type TPSDeps struct {
	Caster    Caster
	Validator CredentialValidator
	Status    StatusFetcher
	Schedule  ScheduleReporter

	// MinValidate overrides DefaultValidateDuration; Sleep overrides
	// the context-aware wait (tests pass a no-op).
	MinValidate time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// TPSFlow drives one check-in at a physical station: scan → validate →
// select → confirm → submitted, or a typed rejection. One device runs
// one flow at a time; a new voter gets a new flow.
type TPSFlow struct {
	mu sync.Mutex

	electionID string
	deps       TPSDeps

	state        TPSState
	reason       RejectReason
	rejectDetail string

	token       string
	scannedAt   time.Time
	voterID     string
	stationID   string
	stationName string

	candidateID  string
	acknowledged bool
	inFlight     bool
	voteRecorded bool
}

// NewTPSFlow builds a flow in AwaitingScan.
func NewTPSFlow(electionID string, deps TPSDeps) *TPSFlow {
	if deps.MinValidate == 0 {
		deps.MinValidate = DefaultValidateDuration
	}
	if deps.Sleep == nil {
		deps.Sleep = func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		}
	}
	return &TPSFlow{electionID: electionID, deps: deps, state: TPSAwaitingScan}
}

// State returns the current flow position.
func (f *TPSFlow) State() TPSState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Rejection returns the typed reason and its display detail (the last
// vote time for already_voted, the scheduled start for not_started).
func (f *TPSFlow) Rejection() (RejectReason, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reason, f.rejectDetail
}

// Station identifies where this check-in happened; valid once the
// credential validated.
func (f *TPSFlow) Station() (id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stationID, f.stationName
}

// ScannedAt is when the QR decode landed.
func (f *TPSFlow) ScannedAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scannedAt
}

// Scan consumes a decoded QR token and runs the validation step. The
// step takes at least MinValidate even when the checks finish sooner.
// Rejection reasons are evaluated in fixed order: already voted, then
// credential validity, then schedule. Transient failures return the
// flow to AwaitingScan with the error surfaced; the recovery is a
// rescan.
func (f *TPSFlow) Scan(ctx context.Context, token string) error {
	f.mu.Lock()
	if f.state != TPSAwaitingScan {
		f.mu.Unlock()
		return ErrNotAwaitingScan
	}
	f.state = TPSValidating
	f.token = token
	f.scannedAt = time.Now()
	f.mu.Unlock()

	started := time.Now()
	next, reason, detail, voterID, stationID, stationName, err := f.validate(ctx, token)

	// Hold the validating screen for the remainder of the minimum
	// duration before revealing the verdict.
	if remaining := f.deps.MinValidate - time.Since(started); remaining > 0 && err == nil {
		if serr := f.deps.Sleep(ctx, remaining); serr != nil {
			err = serr
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = TPSAwaitingScan
		f.token = ""
		return err
	}
	f.state = next
	f.reason = reason
	f.rejectDetail = detail
	f.voterID = voterID
	f.stationID = stationID
	f.stationName = stationName
	return nil
}

func (f *TPSFlow) validate(ctx context.Context, token string) (next TPSState, reason RejectReason, detail, voterID, stationID, stationName string, err error) {
	st, err := f.deps.Status.VoterStatus(ctx, f.electionID)
	if err != nil {
		return 0, "", "", "", "", "", err
	}
	if st.HasVoted {
		detail := "a ballot is already recorded for this voter"
		if st.VotedAt != nil {
			detail = "voted " + humanize.Time(*st.VotedAt)
		}
		return TPSRejected, RejectAlreadyVoted, detail, "", "", "", nil
	}

	cred, err := f.deps.Validator.ValidateCredential(ctx, token)
	if errors.Is(err, ErrCredentialExpired) || errors.Is(err, ErrCredentialInvalid) {
		return TPSRejected, RejectExpiredQR, "", "", "", "", nil
	}
	if err != nil {
		return 0, "", "", "", "", "", err
	}

	sched, err := f.deps.Schedule.VotingSchedule(ctx, f.electionID)
	if err != nil {
		return 0, "", "", "", "", "", err
	}
	if !sched.VotingOpen() {
		now := time.Now()
		if sched.VotingStart != nil && now.Before(*sched.VotingStart) {
			return TPSRejected, RejectNotStarted,
				"voting opens " + humanize.Time(*sched.VotingStart), "", "", "", nil
		}
		if sched.VotingEnd != nil && now.After(*sched.VotingEnd) {
			return TPSRejected, RejectClosed, "", "", "", "", nil
		}
		// No usable window but the phase is not voting either; the
		// schedule simply has not reached voting yet.
		return TPSRejected, RejectNotStarted, "", "", "", "", nil
	}

	return TPSReadyToVote, "", "", cred.VoterID, cred.StationID, cred.StationName, nil
}

// Rescan resets an expired-credential rejection back to AwaitingScan.
// The other rejection reasons are terminal for the session.
func (f *TPSFlow) Rescan() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != TPSRejected || f.reason != RejectExpiredQR {
		return ErrRescanNotOffered
	}
	f.state = TPSAwaitingScan
	f.reason = ""
	f.rejectDetail = ""
	f.token = ""
	return nil
}

// StartSelection moves a validated check-in to the candidate list.
func (f *TPSFlow) StartSelection() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != TPSReadyToVote {
		return ErrNotReady
	}
	f.state = TPSSelecting
	return nil
}

// Select records a candidate choice; re-selecting replaces it and
// resets the acknowledgement.
func (f *TPSFlow) Select(candidateID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != TPSSelecting && f.state != TPSConfirming {
		return ErrNotSelecting
	}
	f.candidateID = candidateID
	f.acknowledged = false
	f.state = TPSConfirming
	return nil
}

// Acknowledge records the finality confirmation.
func (f *TPSFlow) Acknowledge(ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == TPSConfirming {
		f.acknowledged = ok
	}
}

// Cancel returns from confirmation to the candidate list, allowed only
// before the ballot write round-trips.
func (f *TPSFlow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.voteRecorded {
		return ErrVoteRecorded
	}
	if f.state != TPSConfirming {
		return ErrNotConfirming
	}
	f.state = TPSSelecting
	f.candidateID = ""
	f.acknowledged = false
	return nil
}

// Submit casts the ballot tagged with this station. Same contract as
// the online flow: no acknowledgement means no-op, a conflict advances
// like a success, transient failures stay in Confirming, and a call
// while one is in flight is ignored.
func (f *TPSFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state != TPSConfirming {
		f.mu.Unlock()
		return ErrNotConfirming
	}
	if !f.acknowledged || f.inFlight {
		f.mu.Unlock()
		return nil
	}
	f.inFlight = true
	candidateID := f.candidateID
	stationID := f.stationID
	f.mu.Unlock()

	_, err := f.deps.Caster.CastTPSVote(ctx, f.electionID, candidateID, stationID)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if err != nil {
		return err
	}
	f.voteRecorded = true
	f.state = TPSSubmitted
	return nil
}
