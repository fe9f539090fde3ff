// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential, token and admin-code utilities.

# Access Tokens

TokenIssuer signs HS256 JWTs carrying the identity id (uid), email and a
"typ" of "access":

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	token, err := issuer.Issue(identity)
	claims, err := issuer.Parse(token)

Parse rejects other signing methods, missing or past expiry, and tokens whose
type is not "access". A valid token only proves who the bearer is; whether
the identity is verified is read from the store on every request.

# Passwords

BcryptHasher wraps golang.org/x/crypto/bcrypt. Compare returns
ErrPasswordMismatch for a wrong password.

# Verification Codes

GenerateVerificationCode returns a six digit code from crypto/rand. Codes are
compared as plain strings by the identity store.

# Admin Code

ValidateAdminCode checks the X-Admin-Code header against the configured code
with hmac.Equal. An empty configured code disables admin access entirely.

# School Emails

EmailValidator accepts vorname.nachname@domain and nachname@domain, letters
and inner hyphens only, case-insensitive.
*/
package auth
