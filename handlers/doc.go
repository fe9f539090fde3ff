// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Vote API.

# Handler Types

Each handler is a thin struct over the services it calls:

  - AccountHandler: Registration, verification, login and password reset
  - PollHandler: Poll listing and the admin lifecycle (create, toggle, reset, delete)
  - VotingHandler: Ballot submission and has-voted checks
  - ResultsHandler: Public and admin results

Handlers decode the request, call one service operation and render the
outcome. Errors go through middleware.WriteError, which maps the apperr kind
to a status code:

	pollHandler := handlers.NewPollHandler(pollStore, votingService)

# Voting Flow

	POST /vote {poll_id, choice} → VotingHandler.Vote

The caller must carry a bearer token for a verified identity. A second vote
on the same poll answers 409 and leaves the first ballot in place.

# Admin Flow

	POST   /admin/polls            → CreatePoll
	PATCH  /admin/polls/{id}       → UpdatePoll {active}
	POST   /admin/polls/{id}/reset → ResetVotes
	DELETE /admin/polls/{id}       → DeletePoll

Admin operations require the X-Admin-Code header, checked by
middleware.RequireAdmin before the handler runs.
*/
package handlers
