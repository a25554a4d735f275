// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/testutil"
)

// castOnline drives one POST /election/{id}/votes/online request.
func castOnline(handler *VoteHandler, electionID, candidateID, token string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("POST", "/election/"+electionID+"/votes/online",
		models.CastVoteRequest{CandidateID: candidateID},
		map[string]string{"X-Voter-Token": token})
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.CastOnline(w, req)
	return w
}

// castTPS drives one POST /election/{id}/votes/tps request.
func castTPS(handler *VoteHandler, electionID, candidateID, stationID, token string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("POST", "/election/"+electionID+"/votes/tps",
		models.CastTPSVoteRequest{CandidateID: candidateID, StationID: stationID},
		map[string]string{"X-Voter-Token": token})
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.CastTPS(w, req)
	return w
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, wantCode string) {
	t.Helper()
	var errResp models.ErrorResponse
	testutil.AssertJSON(t, w, &errResp)
	if errResp.Code != wantCode {
		t.Errorf("Expected code %q, got %q (message: %s)", wantCode, errResp.Code, errResp.Message)
	}
}

func TestCastOnlineVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
	candidateID := testutil.AddTestCandidate(t, db, electionID, 1, "Pair One")
	voterID, token := testutil.CreateTestVoter(t, db, "Online Voter")
	testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelOnline, "")

	w := castOnline(handler, electionID, candidateID, token)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CastVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.BallotID == "" {
		t.Error("Expected ballot_id in response")
	}
	if resp.Channel != models.ChannelOnline {
		t.Errorf("Expected channel online, got %s", resp.Channel)
	}

	// The ballot write flips has_voted in the same transaction
	var hasVoted bool
	err := db.QueryRow(`
		SELECT has_voted FROM voter_status WHERE voter_id = $1 AND election_id = $2
	`, voterID, electionID).Scan(&hasVoted)
	if err != nil {
		t.Fatalf("Failed to query voter status: %v", err)
	}
	if !hasVoted {
		t.Error("Expected has_voted to flip with the ballot write")
	}
}

func TestCastVoteTwice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
	c1 := testutil.AddTestCandidate(t, db, electionID, 1, "Pair One")
	c2 := testutil.AddTestCandidate(t, db, electionID, 2, "Pair Two")
	voterID, token := testutil.CreateTestVoter(t, db, "Double Voter")
	testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelOnline, "")

	w := castOnline(handler, electionID, c1, token)
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Second cast, even for a different candidate, is a typed conflict
	w = castOnline(handler, electionID, c2, token)
	testutil.AssertStatus(t, w, http.StatusConflict)
	assertErrorCode(t, w, models.CodeAlreadyVoted)

	// Exactly one ballot in the database
	var count int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM ballot WHERE election_id = $1 AND voter_id = $2
	`, electionID, voterID).Scan(&count); err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 ballot, got %d", count)
	}
}

func TestCastVoteChecks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	tests := []struct {
		name       string
		setup      func(t *testing.T) (electionID, candidateID, token string)
		tps        bool
		stationID  string
		wantStatus int
		wantCode   string
	}{
		{
			name: "voting not started",
			setup: func(t *testing.T) (string, string, string) {
				electionID := testutil.CreateTestElection(t, db, models.ElectionCampaign)
				candidateID := testutil.AddTestCandidate(t, db, electionID, 1, "A")
				voterID, token := testutil.CreateTestVoter(t, db, "Early Voter")
				testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelOnline, "")
				return electionID, candidateID, token
			},
			wantStatus: http.StatusConflict,
			wantCode:   models.CodeVotingNotStarted,
		},
		{
			name: "voting closed",
			setup: func(t *testing.T) (string, string, string) {
				electionID := testutil.CreateTestElection(t, db, models.ElectionVotingClosed)
				candidateID := testutil.AddTestCandidate(t, db, electionID, 1, "A")
				voterID, token := testutil.CreateTestVoter(t, db, "Late Voter")
				testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelOnline, "")
				return electionID, candidateID, token
			},
			wantStatus: http.StatusConflict,
			wantCode:   models.CodeVotingClosed,
		},
		{
			name: "blocked voter",
			setup: func(t *testing.T) (string, string, string) {
				electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
				candidateID := testutil.AddTestCandidate(t, db, electionID, 1, "A")
				voterID, token := testutil.CreateTestVoter(t, db, "Blocked Voter")
				testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelOnline, "")
				if _, err := db.Exec(`UPDATE voter_status SET blocked = TRUE WHERE voter_id = $1`, voterID); err != nil {
					t.Fatal(err)
				}
				return electionID, candidateID, token
			},
			wantStatus: http.StatusForbidden,
			wantCode:   models.CodeVoterBlocked,
		},
		{
			name: "ineligible voter",
			setup: func(t *testing.T) (string, string, string) {
				electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
				candidateID := testutil.AddTestCandidate(t, db, electionID, 1, "A")
				voterID, token := testutil.CreateTestVoter(t, db, "Ineligible Voter")
				testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelOnline, "")
				if _, err := db.Exec(`UPDATE voter_status SET eligible = FALSE WHERE voter_id = $1`, voterID); err != nil {
					t.Fatal(err)
				}
				return electionID, candidateID, token
			},
			wantStatus: http.StatusForbidden,
			wantCode:   models.CodeNotEligible,
		},
		{
			name: "online channel disabled",
			setup: func(t *testing.T) (string, string, string) {
				electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
				testutil.SetChannelFlags(t, db, electionID, false, true)
				candidateID := testutil.AddTestCandidate(t, db, electionID, 1, "A")
				voterID, token := testutil.CreateTestVoter(t, db, "Disabled Channel Voter")
				testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelOnline, "")
				return electionID, candidateID, token
			},
			wantStatus: http.StatusConflict,
			wantCode:   models.CodeChannelDisabled,
		},
		{
			name: "tps voter cannot cast online",
			setup: func(t *testing.T) (string, string, string) {
				electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
				candidateID := testutil.AddTestCandidate(t, db, electionID, 1, "A")
				stationID := testutil.AddTestStation(t, db, "Station A")
				voterID, token := testutil.CreateTestVoter(t, db, "TPS Voter")
				testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelTPS, stationID)
				return electionID, candidateID, token
			},
			wantStatus: http.StatusForbidden,
			wantCode:   models.CodeChannelNotAllowed,
		},
		{
			name: "online voter cannot cast at a station",
			setup: func(t *testing.T) (string, string, string) {
				electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
				candidateID := testutil.AddTestCandidate(t, db, electionID, 1, "A")
				voterID, token := testutil.CreateTestVoter(t, db, "Crossover Voter")
				testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelOnline, "")
				return electionID, candidateID, token
			},
			tps:        true,
			stationID:  "some-station",
			wantStatus: http.StatusForbidden,
			wantCode:   models.CodeChannelNotAllowed,
		},
		{
			name: "unregistered voter has no channel",
			setup: func(t *testing.T) (string, string, string) {
				electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
				candidateID := testutil.AddTestCandidate(t, db, electionID, 1, "A")
				_, token := testutil.CreateTestVoter(t, db, "Unregistered Voter")
				return electionID, candidateID, token
			},
			wantStatus: http.StatusForbidden,
			wantCode:   models.CodeChannelNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			electionID, candidateID, token := tt.setup(t)

			var w *httptest.ResponseRecorder
			if tt.tps {
				w = castTPS(handler, electionID, candidateID, tt.stationID, token)
			} else {
				w = castOnline(handler, electionID, candidateID, token)
			}

			testutil.AssertStatus(t, w, tt.wantStatus)
			assertErrorCode(t, w, tt.wantCode)
		})
	}
}

func TestCastVoteValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
	testutil.AddTestCandidate(t, db, electionID, 1, "A")
	voterID, token := testutil.CreateTestVoter(t, db, "Validation Voter")
	testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelOnline, "")

	// Missing voter token
	w := castOnline(handler, electionID, "whatever", "")
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	// Unknown election
	w = castOnline(handler, "nope", "whatever", token)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	// Missing candidate
	w = castOnline(handler, electionID, "", token)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Unknown candidate
	w = castOnline(handler, electionID, "no-such-candidate", token)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCastTPSVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
	candidateID := testutil.AddTestCandidate(t, db, electionID, 1, "Pair One")
	stationID := testutil.AddTestStation(t, db, "Gym A")
	voterID, token := testutil.CreateTestVoter(t, db, "Station Voter")
	testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelTPS, stationID)

	// Missing station_id
	req := testutil.MakeRequest("POST", "/election/"+electionID+"/votes/tps",
		models.CastTPSVoteRequest{CandidateID: candidateID},
		map[string]string{"X-Voter-Token": token})
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.CastTPS(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = castTPS(handler, electionID, candidateID, stationID, token)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CastVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Channel != models.ChannelTPS {
		t.Errorf("Expected channel tps, got %s", resp.Channel)
	}

	// The recorded ballot carries the station
	var recorded string
	if err := db.QueryRow(`
		SELECT station_id FROM ballot WHERE election_id = $1 AND voter_id = $2
	`, electionID, voterID).Scan(&recorded); err != nil {
		t.Fatalf("Failed to query ballot: %v", err)
	}
	if recorded != stationID {
		t.Errorf("Expected station %s on ballot, got %s", stationID, recorded)
	}
}

// A TPS ballot after an online ballot (or vice versa) hits the same
// uniqueness constraint: one ballot per voter per election across both
// channels.
func TestCrossChannelDoubleVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
	candidateID := testutil.AddTestCandidate(t, db, electionID, 1, "Pair One")
	stationID := testutil.AddTestStation(t, db, "Gym A")
	voterID, token := testutil.CreateTestVoter(t, db, "Sneaky Voter")
	testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelTPS, stationID)

	w := castTPS(handler, electionID, candidateID, stationID, token)
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Re-register the voter onto the online channel and try again. Even
	// with the channel check satisfied, the ballot constraint holds.
	if _, err := db.Exec(`
		UPDATE voter_status SET channel = 'online' WHERE voter_id = $1 AND election_id = $2
	`, voterID, electionID); err != nil {
		t.Fatal(err)
	}

	w = castOnline(handler, electionID, candidateID, token)
	testutil.AssertStatus(t, w, http.StatusConflict)
	assertErrorCode(t, w, models.CodeAlreadyVoted)
}

func TestSubmitSignature(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	electionID := testutil.CreateTestElection(t, db, models.ElectionVotingOpen)
	voterID, token := testutil.CreateTestVoter(t, db, "Signing Voter")
	testutil.RegisterVoter(t, db, voterID, electionID, models.ChannelOnline, "")

	submit := func(image string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/election/"+electionID+"/signature",
			models.SubmitSignatureRequest{SignatureImage: image},
			map[string]string{"X-Voter-Token": token})
		req.SetPathValue("id", electionID)
		w := httptest.NewRecorder()
		handler.SubmitSignature(w, req)
		return w
	}

	// Empty signature rejected
	w := submit("")
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = submit("aGVsbG8=")
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Duplicate is a typed conflict, which clients treat as success
	w = submit("aGVsbG8=")
	testutil.AssertStatus(t, w, http.StatusConflict)
	assertErrorCode(t, w, models.CodeSignatureExists)
}
