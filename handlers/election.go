// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
)

type ElectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// ElectionResponse adds the server-reported current phase to the
// election row. Clients prefer this over their own clock computation.
type ElectionResponse struct {
	models.Election
	CurrentPhase string `json:"current_phase,omitempty"`
}

// GetCurrent handles GET /election: the active (non-draft,
// non-archived) election, or 404 when none is running.
func (h *ElectionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	var electionID string
	err := h.db.QueryRow(`
		SELECT id FROM election
		WHERE status NOT IN ('draft', 'archived')
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&electionID)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No active election")
		return
	}
	if err != nil {
		slog.Error("failed to query current election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	e, currentPhase, err := loadElection(h.db, electionID)
	if err != nil {
		slog.Error("failed to load election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ElectionResponse{Election: e, CurrentPhase: currentPhase})
}

// GetPhases handles GET /election/{id}/phases
func (h *ElectionHandler) GetPhases(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM election WHERE id = $1)`, electionID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}

	rows, err := h.db.Query(`
		SELECT election_id, key, label, starts_at, ends_at
		FROM phase WHERE election_id = $1
	`, electionID)
	if err != nil {
		slog.Error("failed to query phases", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	phases := make([]models.Phase, 0)
	for rows.Next() {
		var p models.Phase
		var label sql.NullString
		var start, end sql.NullTime
		if err := rows.Scan(&p.ElectionID, &p.Key, &label, &start, &end); err != nil {
			slog.Error("failed to scan phase", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		p.Label = label.String
		if start.Valid {
			t := start.Time
			p.StartsAt = &t
		}
		if end.Valid {
			t := end.Time
			p.EndsAt = &t
		}
		phases = append(phases, p)
	}

	middleware.JSONResponse(w, http.StatusOK, phases)
}

// GetCandidates handles GET /election/{id}/candidates
func (h *ElectionHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, election_id, ballot_number, name, tagline
		FROM candidate WHERE election_id = $1
		ORDER BY ballot_number
	`, electionID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	candidates := make([]models.Candidate, 0)
	for rows.Next() {
		var c models.Candidate
		var tagline sql.NullString
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.BallotNumber, &c.Name, &tagline); err != nil {
			slog.Error("failed to scan candidate", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		c.Tagline = tagline.String
		candidates = append(candidates, c)
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// GetVoterStatus handles GET /election/{id}/status. Requires the
// X-Voter-Token header; this is the authoritative gating record the
// clients re-query before consequential transitions.
func (h *ElectionHandler) GetVoterStatus(w http.ResponseWriter, r *http.Request) {
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

	st, err := loadVoterStatus(h.db, voterID, electionID)
	if err != nil {
		slog.Error("failed to load voter status", "error", err, "voter_id", voterID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, st)
}
