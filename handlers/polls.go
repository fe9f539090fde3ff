// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/polls"
	"github.com/danielhkuo/quickly-vote/voting"
)

type PollHandler struct {
	polls  *polls.Store
	voting *voting.Service
}

func NewPollHandler(polls *polls.Store, voting *voting.Service) *PollHandler {
	return &PollHandler{polls: polls, voting: voting}
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	list, err := h.polls.List(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, list)
}

// GetPoll handles GET /polls/:id
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.polls.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// CreatePoll handles POST /admin/polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.polls.Create(r.Context(), req.Title, req.Question)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "title", poll.Title)

	middleware.JSONResponse(w, http.StatusCreated, models.PollResponse{
		Message: "Poll created",
		Poll:    poll,
	})
}

// UpdatePoll handles PATCH /admin/polls/:id
// An unknown poll is reported before a malformed body.
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	if _, err := h.polls.Get(r.Context(), pollID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Active == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "active (boolean) is required")
		return
	}

	poll, err := h.voting.SetPollActive(r.Context(), pollID, *req.Active)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	message := "Poll closed"
	if poll.Active {
		message = "Poll opened"
	}
	middleware.JSONResponse(w, http.StatusOK, models.PollResponse{
		Message: message,
		Poll:    poll,
	})
}

// ResetVotes handles POST /admin/polls/:id/reset
func (h *PollHandler) ResetVotes(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	if err := h.voting.ResetVotes(r.Context(), pollID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollIDResponse{
		Message: "Votes reset",
		ID:      pollID,
	})
}

// DeletePoll handles DELETE /admin/polls/:id
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	if err := h.voting.DeletePoll(r.Context(), pollID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollIDResponse{
		Message: "Poll deleted",
		ID:      pollID,
	})
}
