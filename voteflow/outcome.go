// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voteflow

import (
	"context"
	"errors"
	"time"

	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/phase"
)

// Outcome is the result of a successful round-trip to the vote
// recorder. AlreadyRecorded is the conflict-as-success case: the store
// already holds this voter's write (usually a retried request after a
// dropped response), so the machine advances exactly as on Accepted.
type Outcome int

const (
	Accepted Outcome = iota
	AlreadyRecorded
)

// Credential validation failures. Terminal for the scanned token but
// recoverable by rescanning with a fresh one.
var (
	ErrCredentialExpired = errors.New("credential expired")
	ErrCredentialInvalid = errors.New("credential invalid")
)

// ErrEmptySignature is returned for a blank signature capture, before
// any network call is made.
var ErrEmptySignature = errors.New("signature is empty")

// Caster records ballots and signatures with the authoritative vote
// recording service. Implementations return an error only for failures
// that are not conflicts; an already-recorded write is (AlreadyRecorded, nil).
type Caster interface {
	CastOnlineVote(ctx context.Context, electionID, candidateID string) (Outcome, error)
	SubmitSignature(ctx context.Context, electionID string, signature []byte) (Outcome, error)
	CastTPSVote(ctx context.Context, electionID, candidateID, stationID string) (Outcome, error)
}

// CredentialValidator checks a scanned QR token against the credential
// service. Expired or malformed tokens fail with ErrCredentialExpired
// or ErrCredentialInvalid; other errors are transient.
type CredentialValidator interface {
	ValidateCredential(ctx context.Context, token string) (models.ValidateCredentialResponse, error)
}

// StatusFetcher re-reads the authoritative VoterStatus record. The
// machines call it before consequential transitions instead of
// trusting a cached has-voted flag.
type StatusFetcher interface {
	VoterStatus(ctx context.Context, electionID string) (models.VoterStatus, error)
}

// Schedule is the phase standing the TPS validation step needs: where
// the timeline claims we are, plus the voting window bounds for the
// not-started rejection display.
type Schedule struct {
	Current     phase.Key
	HaveCurrent bool
	StatusOpen  bool // election status says voting_open
	VotingStart *time.Time
	VotingEnd   *time.Time
}

// VotingOpen reports whether the schedule permits casting right now.
// The election's own status flag wins alongside the phase timeline,
// matching the server's standing check.
func (s Schedule) VotingOpen() bool {
	return (s.HaveCurrent && s.Current == phase.Voting) || s.StatusOpen
}

// ScheduleReporter supplies the current Schedule for an election.
type ScheduleReporter interface {
	VotingSchedule(ctx context.Context, electionID string) (Schedule, error)
}

// Receipt is the client-generated display artifact shown on the
// success screen. It is not a proof of tally.
type Receipt struct {
	Token    string
	IssuedAt time.Time
}
