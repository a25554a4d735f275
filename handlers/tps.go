// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
)

// CredentialTTL bounds how long one issued QR token stays redeemable.
// The QR display rotates well before this; the TTL is the hard stop.
const CredentialTTL = 5 * time.Minute

type TPSHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewTPSHandler(db *sql.DB, cfg cliparse.Config) *TPSHandler {
	return &TPSHandler{db: db, cfg: cfg}
}

// ValidateCredential handles POST /tps/validate. A valid token is
// consumed: the stored nonce rotates, so presenting the same QR twice
// fails the second time.
func (h *TPSHandler) ValidateCredential(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateCredentialRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Token == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "token is required")
		return
	}

	cred, err := auth.ParseCredential(req.Token, h.cfg.CredentialSalt)
	if errors.Is(err, auth.ErrExpiredCredential) {
		middleware.CodedErrorResponse(w, http.StatusGone, models.CodeCredentialExpired, "Credential has expired")
		return
	}
	if err != nil {
		middleware.CodedErrorResponse(w, http.StatusUnauthorized, models.CodeCredentialInvalid, "Credential is not valid")
		return
	}

	// The nonce binds the token to the voter's current rotation. A
	// stale nonce means the credential was rotated (voluntarily or by
	// consumption) and reads as expired to the station.
	var storedNonce sql.NullString
	var stationID sql.NullString
	err = h.db.QueryRow(`
		SELECT credential_nonce, station_id
		FROM voter_status WHERE voter_id = $1 AND election_id = $2
	`, cred.VoterID, cred.ElectionID).Scan(&storedNonce, &stationID)
	if err == sql.ErrNoRows {
		middleware.CodedErrorResponse(w, http.StatusUnauthorized, models.CodeCredentialInvalid, "Credential is not valid")
		return
	}
	if err != nil {
		slog.Error("failed to load voter status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !storedNonce.Valid || storedNonce.String != cred.Nonce {
		middleware.CodedErrorResponse(w, http.StatusGone, models.CodeCredentialExpired, "Credential has been rotated")
		return
	}
	if !stationID.Valid {
		middleware.CodedErrorResponse(w, http.StatusUnauthorized, models.CodeCredentialInvalid, "Voter has no station assignment")
		return
	}

	var stationName string
	err = h.db.QueryRow(`SELECT name FROM station WHERE id = $1`, stationID.String).Scan(&stationName)
	if err != nil {
		slog.Error("failed to load station", "error", err, "station_id", stationID.String)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Consume: rotate the nonce so this token cannot check in twice.
	newNonce, err := auth.GenerateNonce()
	if err != nil {
		slog.Error("failed to generate nonce", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to consume credential")
		return
	}
	_, err = h.db.Exec(`
		UPDATE voter_status SET credential_nonce = $1
		WHERE voter_id = $2 AND election_id = $3
	`, newNonce, cred.VoterID, cred.ElectionID)
	if err != nil {
		slog.Error("failed to rotate nonce", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to consume credential")
		return
	}

	slog.Info("credential validated", "election_id", cred.ElectionID, "station_id", stationID.String)

	middleware.JSONResponse(w, http.StatusOK, models.ValidateCredentialResponse{
		VoterID:     cred.VoterID,
		StationID:   stationID.String,
		StationName: stationName,
	})
}

// RotateCredential handles POST /election/{id}/credential/rotate.
// Issues a fresh QR token for the authenticated voter and stores its
// nonce, invalidating every previously issued token.
func (h *TPSHandler) RotateCredential(w http.ResponseWriter, r *http.Request) {
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

	status, err := loadVoterStatus(h.db, voterID, electionID)
	if err != nil {
		slog.Error("failed to load voter status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if status.Channel != models.ChannelTPS {
		middleware.CodedErrorResponse(w, http.StatusForbidden, models.CodeChannelNotAllowed, "Voter is not registered for TPS voting")
		return
	}

	nonce, err := auth.GenerateNonce()
	if err != nil {
		slog.Error("failed to generate nonce", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to rotate credential")
		return
	}

	_, err = h.db.Exec(`
		UPDATE voter_status SET credential_nonce = $1
		WHERE voter_id = $2 AND election_id = $3
	`, nonce, voterID, electionID)
	if err != nil {
		slog.Error("failed to store nonce", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to rotate credential")
		return
	}

	expiresAt := time.Now().Add(CredentialTTL)
	token := auth.GenerateCredential(auth.Credential{
		VoterID:    voterID,
		ElectionID: electionID,
		Nonce:      nonce,
		ExpiresAt:  expiresAt,
	}, h.cfg.CredentialSalt)

	slog.Info("credential rotated", "election_id", electionID)

	middleware.JSONResponse(w, http.StatusCreated, models.RotateCredentialResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
