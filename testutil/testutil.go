// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/models"
)

// SetupTestDB creates a fresh in-memory database with the full schema.
// A single connection keeps the in-memory database alive for the test.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn, "sqlite"); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           4172,
		DatabaseURL:    ":memory:",
		DatabaseType:   "sqlite",
		CredentialSalt: "test-credential-salt",
	}
}

// CreateTestElection creates an election and returns its ID. For
// voting_open elections the voting window spans [now-1h, now+24h] and
// the server-reported current phase is "voting".
func CreateTestElection(t *testing.T, conn *sql.DB, status string) string {
	t.Helper()

	electionID, _ := auth.GenerateID(8)

	var currentPhase *string
	var start, end *time.Time
	if status == models.ElectionVotingOpen {
		p := "voting"
		currentPhase = &p
		s := time.Now().Add(-time.Hour)
		e := time.Now().Add(24 * time.Hour)
		start, end = &s, &e
	}

	_, err := conn.Exec(`
		INSERT INTO election (id, name, status, online_enabled, tps_enabled, current_phase, voting_start, voting_end, created_at)
		VALUES ($1, 'Test Election', $2, TRUE, TRUE, $3, $4, $5, $6)
	`, electionID, status, currentPhase, start, end, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID
}

// SetChannelFlags toggles the election-wide channel enables.
func SetChannelFlags(t *testing.T, conn *sql.DB, electionID string, online, tps bool) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE election SET online_enabled = $1, tps_enabled = $2 WHERE id = $3
	`, online, tps, electionID)
	if err != nil {
		t.Fatalf("Failed to set channel flags: %v", err)
	}
}

// AddTestPhase configures one phase window.
func AddTestPhase(t *testing.T, conn *sql.DB, electionID, key string, start, end *time.Time) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO phase (election_id, key, label, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
	`, electionID, key, key, start, end)
	if err != nil {
		t.Fatalf("Failed to create test phase: %v", err)
	}
}

// AddTestCandidate adds a candidate and returns its ID.
func AddTestCandidate(t *testing.T, conn *sql.DB, electionID string, number int, name string) string {
	t.Helper()

	candidateID, _ := auth.GenerateID(8)
	_, err := conn.Exec(`
		INSERT INTO candidate (id, election_id, ballot_number, name)
		VALUES ($1, $2, $3, $4)
	`, candidateID, electionID, number, name)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// AddTestStation adds a polling station and returns its ID.
func AddTestStation(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()

	stationID, _ := auth.GenerateID(6)
	_, err := conn.Exec(`
		INSERT INTO station (id, name) VALUES ($1, $2)
	`, stationID, name)
	if err != nil {
		t.Fatalf("Failed to create test station: %v", err)
	}

	return stationID
}

// CreateTestVoter creates a voter and returns (voterID, token).
func CreateTestVoter(t *testing.T, conn *sql.DB, name string) (string, string) {
	t.Helper()

	voterID, _ := auth.GenerateID(8)
	token, _ := auth.GenerateVoterToken()
	_, err := conn.Exec(`
		INSERT INTO voter (id, token, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, voterID, token, name, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterID, token
}

// RegisterVoter creates the voter_status row assigning a channel.
// stationID may be empty for online voters.
func RegisterVoter(t *testing.T, conn *sql.DB, voterID, electionID, channel, stationID string) {
	t.Helper()

	var station interface{}
	if stationID != "" {
		station = stationID
	}
	_, err := conn.Exec(`
		INSERT INTO voter_status (voter_id, election_id, eligible, blocked, channel, station_id)
		VALUES ($1, $2, TRUE, FALSE, $3, $4)
	`, voterID, electionID, channel, station)
	if err != nil {
		t.Fatalf("Failed to register test voter: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
