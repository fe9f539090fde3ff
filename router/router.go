// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/account"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/handlers"
	"github.com/danielhkuo/quickly-vote/identity"
	"github.com/danielhkuo/quickly-vote/ledger"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/notify"
	"github.com/danielhkuo/quickly-vote/polls"
	"github.com/danielhkuo/quickly-vote/results"
	"github.com/danielhkuo/quickly-vote/voting"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, m *metrics.Metrics, notifier notify.Notifier) *http.ServeMux {
	mux := http.NewServeMux()
	log := slog.Default()

	// Stores
	identities := identity.New(db)
	pollStore := polls.New(db)
	ballots := ledger.New(db)

	// Services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accounts := account.New(log, identities, auth.NewBcryptHasher(0), tokens, notifier, auth.NewEmailValidator(cfg.EmailDomain))
	votes := voting.New(log, pollStore, ballots, m)
	aggregator := results.NewAggregator(pollStore, ballots)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(accounts)
	pollHandler := handlers.NewPollHandler(pollStore, votes)
	votingHandler := handlers.NewVotingHandler(votes)
	resultsHandler := handlers.NewResultsHandler(aggregator)

	authn := middleware.NewAuthenticator(tokens, identities)
	logged := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(m, h)
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return logged(middleware.RequireAdmin(cfg.AdminCode, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", m.Handler())

	// Accounts
	mux.HandleFunc("POST /register", logged(accountHandler.Register))
	mux.HandleFunc("POST /verify", logged(accountHandler.Verify))
	mux.HandleFunc("POST /login", logged(accountHandler.Login))
	mux.HandleFunc("POST /forgot-password", logged(accountHandler.ForgotPassword))
	mux.HandleFunc("POST /reset-password", logged(accountHandler.ResetPassword))

	// Polls (public)
	mux.HandleFunc("GET /polls", logged(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", logged(pollHandler.GetPoll))

	// Voting (bearer token)
	mux.HandleFunc("POST /vote", logged(authn.Authenticate(votingHandler.Vote)))
	mux.HandleFunc("GET /hasvoted", logged(authn.Authenticate(votingHandler.HasVoted)))
	mux.HandleFunc("GET /results", logged(resultsHandler.GetResults))

	// Poll management (X-Admin-Code)
	mux.HandleFunc("POST /admin/polls", admin(pollHandler.CreatePoll))
	mux.HandleFunc("PATCH /admin/polls/{id}", admin(pollHandler.UpdatePoll))
	mux.HandleFunc("DELETE /admin/polls/{id}", admin(pollHandler.DeletePoll))
	mux.HandleFunc("POST /admin/polls/{id}/reset", admin(pollHandler.ResetVotes))
	mux.HandleFunc("GET /admin/polls/{id}/results", admin(resultsHandler.GetAdminResults))

	// Root endpoint; {$} keeps it from matching every unrouted GET
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-vote API v1"))
	})

	return mux
}
