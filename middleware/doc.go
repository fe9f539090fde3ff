// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging and metrics:

	mux.HandleFunc("POST /vote", middleware.WithLogging(m, handler))

Logs request start (method, path, remote) and completion (status,
duration_ms), and records quickly_vote_http_requests_total and
quickly_vote_http_request_duration_seconds when m is non-nil.

# Authentication

Authenticator.Authenticate resolves "Authorization: Bearer <token>" to the
current identity and stores it in the request context:

	identity := middleware.IdentityFromContext(r.Context()) // nil if anonymous

Requests without a token pass through; bad tokens get 401.

RequireAdmin gates admin routes on the X-Admin-Code header. With no admin
code configured every admin route answers 500.

# CORS

	handler := middleware.CORS(cfg.CORSOrigins)(mux)

Backed by github.com/rs/cors. An empty origin list allows any origin.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.WriteError(w, err)

WriteError maps an apperr classification to its status code and writes
{error, kind, code, message}. Store failures and unclassified errors are
logged and reported as a generic 500.
*/
package middleware
