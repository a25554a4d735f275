// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/phase"
	"github.com/danielhkuo/campus-vote/voteflow"
)

// Client talks to the campus-vote API and implements the voteflow
// collaborator interfaces (Caster, CredentialValidator, StatusFetcher,
// ScheduleReporter). Every request carries the caller's context, so
// tearing down a view cancels its in-flight fetches.
type Client struct {
	baseURL    string
	voterToken string
	httpc      *http.Client
}

// New builds a client. voterToken may be empty for unauthenticated
// preview reads.
func New(baseURL, voterToken string) *Client {
	return &Client{
		baseURL:    baseURL,
		voterToken: voterToken,
		httpc:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Election is the current-election payload including the
// server-reported phase.
type Election struct {
	models.Election
	CurrentPhase string `json:"current_phase,omitempty"`
}

// apiError is a non-2xx response decoded into the server's error shape.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d (%s)", e.Status, e.Code)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.voterToken != "" {
		req.Header.Set("X-Voter-Token", c.voterToken)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var er models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		return &apiError{Status: resp.StatusCode, Code: er.Code, Message: er.Message}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// CurrentElection fetches the active election, or an error wrapping a
// 404 when none is running.
func (c *Client) CurrentElection(ctx context.Context) (Election, error) {
	var e Election
	err := c.do(ctx, http.MethodGet, "/election", nil, &e)
	return e, err
}

// Phases fetches the configured phase windows.
func (c *Client) Phases(ctx context.Context, electionID string) ([]models.Phase, error) {
	var phases []models.Phase
	err := c.do(ctx, http.MethodGet, "/election/"+electionID+"/phases", nil, &phases)
	return phases, err
}

// Candidates fetches the ballot entries.
func (c *Client) Candidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := c.do(ctx, http.MethodGet, "/election/"+electionID+"/candidates", nil, &candidates)
	return candidates, err
}

// VoterStatus fetches the authoritative gating record.
func (c *Client) VoterStatus(ctx context.Context, electionID string) (models.VoterStatus, error) {
	var st models.VoterStatus
	err := c.do(ctx, http.MethodGet, "/election/"+electionID+"/status", nil, &st)
	return st, err
}

// CastOnlineVote records an online ballot. A 409 already_voted maps to
// AlreadyRecorded, the conflict-as-success outcome.
func (c *Client) CastOnlineVote(ctx context.Context, electionID, candidateID string) (voteflow.Outcome, error) {
	err := c.do(ctx, http.MethodPost, "/election/"+electionID+"/votes/online",
		models.CastVoteRequest{CandidateID: candidateID}, nil)
	return outcomeFromErr(err, models.CodeAlreadyVoted)
}

// CastTPSVote records a station ballot; same conflict mapping as the
// online channel.
func (c *Client) CastTPSVote(ctx context.Context, electionID, candidateID, stationID string) (voteflow.Outcome, error) {
	err := c.do(ctx, http.MethodPost, "/election/"+electionID+"/votes/tps",
		models.CastTPSVoteRequest{CandidateID: candidateID, StationID: stationID}, nil)
	return outcomeFromErr(err, models.CodeAlreadyVoted)
}

// SubmitSignature uploads the signature image; a signature_exists
// conflict maps to AlreadyRecorded.
func (c *Client) SubmitSignature(ctx context.Context, electionID string, signature []byte) (voteflow.Outcome, error) {
	err := c.do(ctx, http.MethodPost, "/election/"+electionID+"/signature",
		models.SubmitSignatureRequest{SignatureImage: base64.StdEncoding.EncodeToString(signature)}, nil)
	return outcomeFromErr(err, models.CodeSignatureExists)
}

// outcomeFromErr maps the conflict code for this operation onto
// AlreadyRecorded; everything else stays an error.
func outcomeFromErr(err error, conflictCode string) (voteflow.Outcome, error) {
	if err == nil {
		return voteflow.Accepted, nil
	}
	var ae *apiError
	if asAPIError(err, &ae) && ae.Code == conflictCode {
		return voteflow.AlreadyRecorded, nil
	}
	return 0, err
}

func asAPIError(err error, target **apiError) bool {
	ae, ok := err.(*apiError)
	if ok {
		*target = ae
	}
	return ok
}

// ValidateCredential checks a scanned QR token, mapping the typed
// credential failures onto the voteflow sentinels.
func (c *Client) ValidateCredential(ctx context.Context, token string) (models.ValidateCredentialResponse, error) {
	var res models.ValidateCredentialResponse
	err := c.do(ctx, http.MethodPost, "/tps/validate", models.ValidateCredentialRequest{Token: token}, &res)
	if err != nil {
		var ae *apiError
		if asAPIError(err, &ae) {
			switch ae.Code {
			case models.CodeCredentialExpired:
				return res, voteflow.ErrCredentialExpired
			case models.CodeCredentialInvalid:
				return res, voteflow.ErrCredentialInvalid
			}
		}
		return res, err
	}
	return res, nil
}

// RotateCredential requests a fresh QR token for the authenticated
// voter.
func (c *Client) RotateCredential(ctx context.Context, electionID string) (models.RotateCredentialResponse, error) {
	var res models.RotateCredentialResponse
	err := c.do(ctx, http.MethodPost, "/election/"+electionID+"/credential/rotate", nil, &res)
	return res, err
}

// VotingSchedule implements voteflow.ScheduleReporter: it combines the
// election row and the phase windows into the standing the TPS
// validation step checks.
func (c *Client) VotingSchedule(ctx context.Context, electionID string) (voteflow.Schedule, error) {
	e, err := c.CurrentElection(ctx)
	if err != nil {
		return voteflow.Schedule{}, err
	}
	phases, err := c.Phases(ctx, electionID)
	if err != nil {
		return voteflow.Schedule{}, err
	}

	raw := make(map[string]phase.Window, len(phases))
	for _, p := range phases {
		raw[p.Key] = phase.Window{Label: p.Label, Start: p.StartsAt, End: p.EndsAt}
	}
	tl := phase.Resolve(phase.WindowsFromConfig(raw), time.Now())
	cur, ok := tl.Current(e.CurrentPhase)

	return voteflow.Schedule{
		Current:     cur,
		HaveCurrent: ok,
		StatusOpen:  e.Status == models.ElectionVotingOpen,
		VotingStart: e.VotingStart,
		VotingEnd:   e.VotingEnd,
	}, nil
}
