// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/quickly-vote/models"
)

var ErrInvalidToken = errors.New("invalid token")

const tokenTypeAccess = "access"

// Claims is what an access token asserts about its bearer.
type Claims struct {
	IdentityID string
	Email      string
	ExpiresAt  time.Time
}

// TokenIssuer signs and validates HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed access token for the identity.
func (ti *TokenIssuer) Issue(identity models.Identity) (string, error) {
	const op = "auth.Issue"

	claims := jwt.MapClaims{
		"uid":   identity.ID,
		"email": identity.Email,
		"typ":   tokenTypeAccess,
		"iat":   ti.now().Unix(),
		"exp":   ti.now().Add(ti.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// Parse validates the signature, expiry and type of an access token.
func (ti *TokenIssuer) Parse(tokenString string) (Claims, error) {
	const op = "auth.Parse"

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(ti.now))
	if err != nil {
		return Claims{}, fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("%s: %w: bad claims", op, ErrInvalidToken)
	}

	if typ, _ := mc["typ"].(string); typ != tokenTypeAccess {
		return Claims{}, fmt.Errorf("%s: %w: unexpected type %v", op, ErrInvalidToken, mc["typ"])
	}

	uid, _ := mc["uid"].(string)
	if uid == "" {
		return Claims{}, fmt.Errorf("%s: %w: uid missing", op, ErrInvalidToken)
	}
	email, _ := mc["email"].(string)

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, fmt.Errorf("%s: %w: exp missing", op, ErrInvalidToken)
	}

	return Claims{IdentityID: uid, Email: email, ExpiresAt: exp.Time}, nil
}
