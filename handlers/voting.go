// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/voting"
)

type VotingHandler struct {
	voting *voting.Service
}

func NewVotingHandler(voting *voting.Service) *VotingHandler {
	return &VotingHandler{voting: voting}
}

// Vote handles POST /vote
// Requires Authenticate upstream; an anonymous request gets 401 from the service.
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	choice, err := h.voting.SubmitVote(r.Context(), identity, req.PollID, req.Choice)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{
		Message: "Vote recorded",
		Choice:  choice,
	})
}

// HasVoted handles GET /hasvoted?poll_id=
func (h *VotingHandler) HasVoted(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	voted, err := h.voting.HasVoted(r.Context(), identity, r.URL.Query().Get("poll_id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HasVotedResponse{HasVoted: voted})
}
