// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/identity"
	"github.com/danielhkuo/quickly-vote/models"
)

type identityKey struct{}

// IdentityFinder loads the current state of an identity.
type IdentityFinder interface {
	FindByID(ctx context.Context, id string) (models.Identity, error)
}

// Authenticator resolves bearer tokens to identities
type Authenticator struct {
	tokens     *auth.TokenIssuer
	identities IdentityFinder
}

func NewAuthenticator(tokens *auth.TokenIssuer, identities IdentityFinder) *Authenticator {
	return &Authenticator{tokens: tokens, identities: identities}
}

// Authenticate attaches the bearer's identity to the request context.
// A request without a token passes through anonymously; handlers decide
// whether that is allowed. A token that fails to validate, or whose
// identity no longer exists, is rejected with 401.
//
// The identity is reloaded on every request so verification state is current.
func (a *Authenticator) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		claims, err := a.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired token. Please log in again.")
			return
		}

		current, err := a.identities.FindByID(r.Context(), claims.IdentityID)
		if errors.Is(err, identity.ErrNotFound) {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired token. Please log in again.")
			return
		}
		if err != nil {
			WriteError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, &current)
		next(w, r.WithContext(ctx))
	}
}

// IdentityFromContext returns the authenticated identity, or nil.
func IdentityFromContext(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(identityKey{}).(*models.Identity)
	return id
}

// RequireAdmin checks the X-Admin-Code header against the configured code
func RequireAdmin(adminCode string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := auth.ValidateAdminCode(r.Header.Get("X-Admin-Code"), adminCode)
		switch {
		case errors.Is(err, auth.ErrAdminNotConfigured):
			slog.Error("admin route called without ADMIN_CODE configured", "path", r.URL.Path)
			ErrorResponse(w, http.StatusInternalServerError, "admin code not configured")
			return
		case err != nil:
			ErrorResponse(w, http.StatusUnauthorized, "Invalid admin code")
			return
		}
		next(w, r)
	}
}
