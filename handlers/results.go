// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/results"
)

type ResultsHandler struct {
	results *results.Aggregator
}

func NewResultsHandler(results *results.Aggregator) *ResultsHandler {
	return &ResultsHandler{results: results}
}

// GetResults handles GET /results?poll_id=
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := strings.TrimSpace(r.URL.Query().Get("poll_id"))
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	h.writeResults(w, r, pollID, false)
}

// GetAdminResults handles GET /admin/polls/:id/results
func (h *ResultsHandler) GetAdminResults(w http.ResponseWriter, r *http.Request) {
	h.writeResults(w, r, r.PathValue("id"), true)
}

func (h *ResultsHandler) writeResults(w http.ResponseWriter, r *http.Request, pollID string, withTitle bool) {
	poll, res, err := h.results.Results(r.Context(), pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp := models.ResultsResponse{
		PollID:     poll.ID,
		Yes:        res.Yes,
		No:         res.No,
		Total:      res.Total,
		YesPercent: res.YesPercent,
		NoPercent:  res.NoPercent,
	}
	if withTitle {
		resp.PollTitle = poll.Title
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
