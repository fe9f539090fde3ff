// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/identity"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/notify"
)

const MinPasswordLength = 4

var (
	ErrMissingFields      = apperr.New(apperr.KindValidation, "missing_fields", "Required fields are missing")
	ErrInvalidEmail       = apperr.New(apperr.KindValidation, "invalid_email", "Please use your school email (firstname.lastname@domain or lastname@domain)")
	ErrPasswordTooShort   = apperr.New(apperr.KindValidation, "password_too_short", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	ErrInvalidCredentials = apperr.New(apperr.KindAuth, "invalid_credentials", "Incorrect email or password")
	ErrNotVerified        = apperr.New(apperr.KindForbidden, "not_verified", "Please verify your email first. A new code has been sent.")
	ErrInvalidCode        = apperr.New(apperr.KindValidation, "invalid_code", "Email or code is invalid")
)

type IdentityStore interface {
	Register(ctx context.Context, email string, credentialHash []byte, code string) (identity.Registration, error)
	Verify(ctx context.Context, email, code string) (models.Identity, error)
	FindByEmail(ctx context.Context, email string) (models.Identity, error)
	RotateCode(ctx context.Context, email, code string) error
	ResetCredential(ctx context.Context, email, code string, credentialHash []byte) error
}

type Hasher interface {
	Hash(password string) ([]byte, error)
	Compare(hash []byte, password string) error
}

type TokenIssuer interface {
	Issue(identity models.Identity) (string, error)
}

// Registration is the result of Register. Rotated is set when a pending
// account already existed and only its code was replaced.
type Registration struct {
	Email   string
	Rotated bool
}

// Session is a signed-in identity.
type Session struct {
	Token    string
	Identity models.Identity
}

type Service struct {
	log        *slog.Logger
	identities IdentityStore
	hasher     Hasher
	tokens     TokenIssuer
	notifier   notify.Notifier
	emails     *auth.EmailValidator
	newCode    func() (string, error)
}

func New(
	log *slog.Logger,
	identities IdentityStore,
	hasher Hasher,
	tokens TokenIssuer,
	notifier notify.Notifier,
	emails *auth.EmailValidator,
) *Service {
	return &Service{
		log:        log,
		identities: identities,
		hasher:     hasher,
		tokens:     tokens,
		notifier:   notifier,
		emails:     emails,
		newCode:    auth.GenerateVerificationCode,
	}
}

// Register creates a pending account and sends it a verification code.
// Registering a pending email again only sends a fresh code; the stored
// password stays as first given.
func (s *Service) Register(ctx context.Context, email, password string) (Registration, error) {
	const op = "account.Register"

	email = auth.NormalizeEmail(email)
	if email == "" || password == "" {
		return Registration{}, fmt.Errorf("%s: %w", op, ErrMissingFields)
	}
	if !s.emails.Valid(email) {
		return Registration{}, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}
	if len(password) < MinPasswordLength {
		return Registration{}, fmt.Errorf("%s: %w", op, ErrPasswordTooShort)
	}

	code, err := s.newCode()
	if err != nil {
		return Registration{}, fmt.Errorf("%s: %w", op, err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Registration{}, fmt.Errorf("%s: %w", op, err)
	}

	reg, err := s.identities.Register(ctx, email, hash, code)
	if err != nil {
		return Registration{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("registration", slog.String("email", email), slog.Bool("rotated", reg.Rotated))
	s.deliver(ctx, op, email, code, s.notifier.SendVerificationCode)

	return Registration{Email: email, Rotated: reg.Rotated}, nil
}

// Verify confirms an email with its code and signs the identity in.
func (s *Service) Verify(ctx context.Context, email, code string) (Session, error) {
	const op = "account.Verify"

	email = auth.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return Session{}, fmt.Errorf("%s: %w", op, ErrMissingFields)
	}

	verified, err := s.identities.Verify(ctx, email, code)
	if errors.Is(err, identity.ErrNotFound) {
		return Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCode)
	}
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.session(op, verified)
}

// Login checks the password first, so an unverified account is only
// revealed to someone who knows its password.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	const op = "account.Login"

	email = auth.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%s: %w", op, ErrMissingFields)
	}

	found, err := s.identities.FindByEmail(ctx, email)
	if errors.Is(err, identity.ErrNotFound) {
		return Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.hasher.Compare(found.CredentialHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if !found.Verified {
		code, err := s.newCode()
		if err != nil {
			return Session{}, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.identities.RotateCode(ctx, email, code); err != nil {
			return Session{}, fmt.Errorf("%s: %w", op, err)
		}
		s.deliver(ctx, op, email, code, s.notifier.SendVerificationCode)
		return Session{}, fmt.Errorf("%s: %w", op, ErrNotVerified)
	}

	return s.session(op, found)
}

// ForgotPassword sends a reset code if the account exists. Unknown emails
// succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	const op = "account.ForgotPassword"

	email = auth.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingFields)
	}

	if _, err := s.identities.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			s.log.Debug("password reset for unknown email", slog.String("email", email))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.identities.RotateCode(ctx, email, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.deliver(ctx, op, email, code, s.notifier.SendPasswordReset)
	return nil
}

// ResetPassword replaces the password when code matches the pending code.
// The match and the write are one statement in the identity store.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	const op = "account.ResetPassword"

	email = auth.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingFields)
	}
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("%s: %w", op, ErrPasswordTooShort)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.identities.ResetCredential(ctx, email, code, hash)
	if errors.Is(err, identity.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrInvalidCode)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password reset", slog.String("email", email))
	return nil
}

func (s *Service) session(op string, identity models.Identity) (Session, error) {
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return Session{Token: token, Identity: identity}, nil
}

// deliver sends a code. Delivery failures never fail the request; the code
// is logged so an operator can pass it on.
func (s *Service) deliver(ctx context.Context, op, email, code string, send func(context.Context, string, string) error) {
	if err := send(ctx, email, code); err != nil {
		s.log.Warn("code delivery failed",
			slog.String("op", op),
			slog.String("email", email),
			slog.String("code", code),
			slog.Any("error", err),
		)
	}
}
