package models

import "time"

// Election status constants
const (
	ElectionDraft        = "draft"
	ElectionRegistration = "registration"
	ElectionCampaign     = "campaign"
	ElectionVotingOpen   = "voting_open"
	ElectionVotingClosed = "voting_closed"
	ElectionArchived     = "archived"
)

// Voting channel constants
const (
	ChannelNone   = "none"
	ChannelOnline = "online"
	ChannelTPS    = "tps"
)

// Typed error codes returned in the "code" field of error responses.
// Clients branch on these, never on message text.
const (
	CodeAlreadyVoted      = "already_voted"
	CodeSignatureExists   = "signature_exists"
	CodeNotEligible       = "not_eligible"
	CodeVoterBlocked      = "voter_blocked"
	CodeChannelDisabled   = "channel_disabled"
	CodeChannelNotAllowed = "channel_not_allowed"
	CodeVotingNotStarted  = "voting_not_started"
	CodeVotingClosed      = "voting_closed"
	CodeCredentialExpired = "credential_expired"
	CodeCredentialInvalid = "credential_invalid"
)

// Request types

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

type CastTPSVoteRequest struct {
	CandidateID string `json:"candidate_id"`
	StationID   string `json:"station_id"`
}

// SignatureImage is base64-encoded image bytes captured from the pad.
type SubmitSignatureRequest struct {
	SignatureImage string `json:"signature_image"`
}

type ValidateCredentialRequest struct {
	Token string `json:"token"`
}

// Response types

type CastVoteResponse struct {
	BallotID string    `json:"ballot_id"`
	Channel  string    `json:"channel"`
	VotedAt  time.Time `json:"voted_at"`
}

type SubmitSignatureResponse struct {
	SignedAt time.Time `json:"signed_at"`
}

type ValidateCredentialResponse struct {
	VoterID     string `json:"voter_id"`
	StationID   string `json:"station_id"`
	StationName string `json:"station_name"`
}

type RotateCredentialResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Domain types

type Election struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	OnlineEnabled bool       `json:"online_enabled"`
	TPSEnabled    bool       `json:"tps_enabled"`
	VotingStart   *time.Time `json:"voting_start,omitempty"`
	VotingEnd     *time.Time `json:"voting_end,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Phase struct {
	ElectionID string     `json:"election_id"`
	Key        string     `json:"key"`
	Label      string     `json:"label,omitempty"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
}

type Candidate struct {
	ID           string `json:"id"`
	ElectionID   string `json:"election_id"`
	BallotNumber int    `json:"ballot_number"`
	Name         string `json:"name"`
	Tagline      string `json:"tagline,omitempty"`
}

type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VoterStatus is the per-(voter, election) gating record. has_voted is
// flipped exactly once by a successful ballot insert; everything else
// is read-only outside admin tooling.
type VoterStatus struct {
	VoterID    string     `json:"voter_id"`
	ElectionID string     `json:"election_id"`
	Eligible   bool       `json:"eligible"`
	Blocked    bool       `json:"blocked"`
	HasVoted   bool       `json:"has_voted"`
	Channel    string     `json:"channel"`
	VotedAt    *time.Time `json:"voted_at,omitempty"`
	StationID  *string    `json:"station_id,omitempty"`
}

type Ballot struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	VoterID     string    `json:"-"` // Never expose in JSON
	CandidateID string    `json:"-"` // Never expose in JSON
	Channel     string    `json:"channel"`
	StationID   *string   `json:"station_id,omitempty"`
	CastAt      time.Time `json:"cast_at"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
