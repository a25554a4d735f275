// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/phase"
)

var errNoVoter = errors.New("no voter for token")

// isUniqueViolation matches the uniqueness error text of both
// supported drivers. The ballot and signature tables rely on unique
// constraints for their write-once guarantee, so this is how a
// double write surfaces.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// voterIDForToken resolves the X-Voter-Token header value to a voter.
func voterIDForToken(db *sql.DB, token string) (string, error) {
	if token == "" {
		return "", errNoVoter
	}
	var voterID string
	err := db.QueryRow(`SELECT id FROM voter WHERE token = $1`, token).Scan(&voterID)
	if err == sql.ErrNoRows {
		return "", errNoVoter
	}
	if err != nil {
		return "", err
	}
	return voterID, nil
}

// loadElection fetches one election row.
func loadElection(db *sql.DB, electionID string) (models.Election, string, error) {
	var e models.Election
	var currentPhase sql.NullString
	var start, end sql.NullTime
	err := db.QueryRow(`
		SELECT id, name, status, online_enabled, tps_enabled, current_phase, voting_start, voting_end, created_at
		FROM election WHERE id = $1
	`, electionID).Scan(&e.ID, &e.Name, &e.Status, &e.OnlineEnabled, &e.TPSEnabled,
		&currentPhase, &start, &end, &e.CreatedAt)
	if err != nil {
		return models.Election{}, "", err
	}
	if start.Valid {
		e.VotingStart = &start.Time
	}
	if end.Valid {
		e.VotingEnd = &end.Time
	}
	return e, currentPhase.String, nil
}

// loadWindows fetches the configured phase windows for an election,
// normalized onto canonical keys.
func loadWindows(db *sql.DB, electionID string) (map[phase.Key]phase.Window, error) {
	rows, err := db.Query(`
		SELECT key, label, starts_at, ends_at FROM phase WHERE election_id = $1
	`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raw := make(map[string]phase.Window)
	for rows.Next() {
		var key string
		var label sql.NullString
		var start, end sql.NullTime
		if err := rows.Scan(&key, &label, &start, &end); err != nil {
			return nil, err
		}
		w := phase.Window{Label: label.String}
		if start.Valid {
			t := start.Time
			w.Start = &t
		}
		if end.Valid {
			t := end.Time
			w.End = &t
		}
		raw[key] = w
	}
	return phase.WindowsFromConfig(raw), rows.Err()
}

// votingStanding decides whether casting is allowed right now and, if
// not, which side of the window we are on.
func votingStanding(e models.Election, reportedPhase string, windows map[phase.Key]phase.Window, now time.Time) (open bool, code string) {
	if e.Status == models.ElectionVotingClosed || e.Status == models.ElectionArchived {
		return false, models.CodeVotingClosed
	}

	tl := phase.Resolve(windows, now)
	cur, ok := tl.Current(reportedPhase)
	if (ok && cur == phase.Voting) || e.Status == models.ElectionVotingOpen {
		return true, ""
	}

	for _, entry := range tl.Entries {
		if entry.Key == phase.Voting && entry.Status == phase.Completed {
			return false, models.CodeVotingClosed
		}
	}
	return false, models.CodeVotingNotStarted
}

// loadVoterStatus fetches the gating record. A voter with no row gets
// the default record: eligible, not voted, no channel. The default
// never enables a cast because the channel check still fails.
func loadVoterStatus(db *sql.DB, voterID, electionID string) (models.VoterStatus, error) {
	st := models.VoterStatus{
		VoterID:    voterID,
		ElectionID: electionID,
		Eligible:   true,
		Channel:    models.ChannelNone,
	}
	var votedAt sql.NullTime
	var stationID sql.NullString
	err := db.QueryRow(`
		SELECT eligible, blocked, has_voted, channel, voted_at, station_id
		FROM voter_status WHERE voter_id = $1 AND election_id = $2
	`, voterID, electionID).Scan(&st.Eligible, &st.Blocked, &st.HasVoted, &st.Channel, &votedAt, &stationID)
	if err == sql.ErrNoRows {
		return st, nil
	}
	if err != nil {
		return models.VoterStatus{}, err
	}
	if votedAt.Valid {
		st.VotedAt = &votedAt.Time
	}
	if stationID.Valid {
		st.StationID = &stationID.String
	}
	return st, nil
}
