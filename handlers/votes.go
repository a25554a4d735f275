// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
)

type VoteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg}
}

// CastOnline handles POST /election/{id}/votes/online
func (h *VoteHandler) CastOnline(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	h.castBallot(w, r, req.CandidateID, models.ChannelOnline, "")
}

// CastTPS handles POST /election/{id}/votes/tps
func (h *VoteHandler) CastTPS(w http.ResponseWriter, r *http.Request) {
	var req models.CastTPSVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.StationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "station_id is required")
		return
	}
	h.castBallot(w, r, req.CandidateID, models.ChannelTPS, req.StationID)
}

// castBallot runs the full server-side check chain and records the
// ballot. Check order: election exists, voting open, voter eligible,
// channel enabled election-wide, channel assigned to this voter,
// candidate exists. The ballot insert carries the write-once
// guarantee: a uniqueness violation means this voter already has a
// ballot on either channel and is reported as 409 already_voted.
func (h *VoteHandler) castBallot(w http.ResponseWriter, r *http.Request, candidateID, channel, stationID string) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}
	if candidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	voterID, err := voterIDForToken(h.db, r.Header.Get("X-Voter-Token"))
	if err == errNoVoter {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Token header required")
		return
	}
	if err != nil {
		slog.Error("failed to resolve voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	election, reportedPhase, err := loadElection(h.db, electionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to load election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	windows, err := loadWindows(h.db, electionID)
	if err != nil {
		slog.Error("failed to load phases", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if open, code := votingStanding(election, reportedPhase, windows, time.Now()); !open {
		middleware.CodedErrorResponse(w, http.StatusConflict, code, "Voting is not open")
		return
	}

	status, err := loadVoterStatus(h.db, voterID, electionID)
	if err != nil {
		slog.Error("failed to load voter status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if status.Blocked {
		middleware.CodedErrorResponse(w, http.StatusForbidden, models.CodeVoterBlocked, "Voter is blocked for this election")
		return
	}
	if !status.Eligible {
		middleware.CodedErrorResponse(w, http.StatusForbidden, models.CodeNotEligible, "Voter is not eligible for this election")
		return
	}

	channelEnabled := election.OnlineEnabled
	if channel == models.ChannelTPS {
		channelEnabled = election.TPSEnabled
	}
	if !channelEnabled {
		middleware.CodedErrorResponse(w, http.StatusConflict, models.CodeChannelDisabled, "This voting channel is disabled")
		return
	}

	// Channel exclusivity is enforced here, server-side. The client
	// gate is advisory; a voter registered for one channel cannot cast
	// through the other no matter what the client shows.
	if status.Channel != channel {
		middleware.CodedErrorResponse(w, http.StatusForbidden, models.CodeChannelNotAllowed, "Voter is not registered for this channel")
		return
	}

	var candidateExists bool
	err = h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM candidate WHERE id = $1 AND election_id = $2)
	`, candidateID, electionID).Scan(&candidateExists)
	if err != nil {
		slog.Error("failed to query candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !candidateExists {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid candidate_id")
		return
	}

	clientIP := middleware.GetClientIP(r)
	ipHash := auth.HashIP(clientIP, h.cfg.CredentialSalt)
	userAgent := r.UserAgent()
	now := time.Now()
	ballotID := uuid.NewString()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var station interface{}
	if stationID != "" {
		station = stationID
	}
	_, err = tx.Exec(`
		INSERT INTO ballot (id, election_id, voter_id, candidate_id, channel, station_id, cast_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, ballotID, electionID, voterID, candidateID, channel, station, now, ipHash, userAgent)

	if isUniqueViolation(err) {
		// First write won; this voter's ballot is already recorded.
		middleware.CodedErrorResponse(w, http.StatusConflict, models.CodeAlreadyVoted, "A ballot is already recorded for this voter")
		return
	}
	if err != nil {
		slog.Error("failed to insert ballot", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record ballot")
		return
	}

	// Flip has_voted, exactly once, in the same transaction as the
	// ballot write.
	_, err = tx.Exec(`
		UPDATE voter_status
		SET has_voted = TRUE, voted_at = $1
		WHERE voter_id = $2 AND election_id = $3
	`, now, voterID, electionID)
	if err != nil {
		slog.Error("failed to update voter status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record ballot")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record ballot")
		return
	}

	slog.Info("ballot recorded", "election_id", electionID, "ballot_id", ballotID, "channel", channel)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		BallotID: ballotID,
		Channel:  channel,
		VotedAt:  now,
	})
}

// SubmitSignature handles POST /election/{id}/signature. One signature
// per (election, voter); a duplicate reports 409 signature_exists,
// which clients treat as success.
func (h *VoteHandler) SubmitSignature(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	voterID, err := voterIDForToken(h.db, r.Header.Get("X-Voter-Token"))
	if err == errNoVoter {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Token header required")
		return
	}
	if err != nil {
		slog.Error("failed to resolve voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.SubmitSignatureRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SignatureImage == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "signature_image is required")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO signature (election_id, voter_id, image, signed_at)
		VALUES ($1, $2, $3, $4)
	`, electionID, voterID, req.SignatureImage, now)

	if isUniqueViolation(err) {
		middleware.CodedErrorResponse(w, http.StatusConflict, models.CodeSignatureExists, "A signature already exists for this voter")
		return
	}
	if err != nil {
		slog.Error("failed to insert signature", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record signature")
		return
	}

	slog.Info("signature recorded", "election_id", electionID)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitSignatureResponse{SignedAt: now})
}
