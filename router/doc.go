// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Vote API.

# Route Registration

NewRouter wires stores, services and handlers onto one http.ServeMux:

	mux := router.NewRouter(db, cfg, metrics.New(), notifier)

# Endpoints

Operational:

	GET /health  - Liveness
	GET /metrics - Prometheus exposition

Accounts (public):

	POST /register        - Create a pending account, send a code
	POST /verify          - Confirm the code, returns a token
	POST /login           - Returns a token for a verified account
	POST /forgot-password - Send a reset code
	POST /reset-password  - Set a new password with the reset code

Polls and voting:

	GET  /polls             - All polls, newest first
	GET  /polls/{id}        - One poll
	POST /vote              - Cast a ballot (Bearer token)
	GET  /hasvoted?poll_id= - Whether the caller voted (Bearer token)
	GET  /results?poll_id=  - Tally and percentages

Administration (requires X-Admin-Code):

	POST   /admin/polls              - Create poll
	PATCH  /admin/polls/{id}         - Open or close
	POST   /admin/polls/{id}/reset   - Drop every ballot of the poll
	DELETE /admin/polls/{id}         - Remove poll and ballots
	GET    /admin/polls/{id}/results - Results with title

Every route except /health and /metrics goes through middleware.WithLogging.
CORS is applied by the caller around the returned mux.
*/
package router
