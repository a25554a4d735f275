// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/handlers"
	"github.com/danielhkuo/campus-vote/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)
	tpsHandler := handlers.NewTPSHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Election timeline (public)
	mux.HandleFunc("GET /election", middleware.WithLogging(electionHandler.GetCurrent))
	mux.HandleFunc("GET /election/{id}/phases", middleware.WithLogging(electionHandler.GetPhases))
	mux.HandleFunc("GET /election/{id}/candidates", middleware.WithLogging(electionHandler.GetCandidates))

	// Voter status (authenticated via X-Voter-Token)
	mux.HandleFunc("GET /election/{id}/status", middleware.WithLogging(electionHandler.GetVoterStatus))

	// Vote casting
	mux.HandleFunc("POST /election/{id}/votes/online", middleware.WithLogging(voteHandler.CastOnline))
	mux.HandleFunc("POST /election/{id}/votes/tps", middleware.WithLogging(voteHandler.CastTPS))
	mux.HandleFunc("POST /election/{id}/signature", middleware.WithLogging(voteHandler.SubmitSignature))

	// TPS credentials
	mux.HandleFunc("POST /tps/validate", middleware.WithLogging(tpsHandler.ValidateCredential))
	mux.HandleFunc("POST /election/{id}/credential/rotate", middleware.WithLogging(tpsHandler.RotateCredential))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("campus-vote API v1"))
	})

	return mux
}
