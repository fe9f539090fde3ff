// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package identity stores registered accounts and their verification state.
//
// Every method normalizes the email before it touches the database, so callers
// may pass user input as-is. State changes are single conditional statements;
// the store never reads a row to decide whether to write it.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
)

var (
	ErrDuplicateEmail  = apperr.New(apperr.KindConflict, "duplicate_email", "This email is already registered. Please log in.")
	ErrNotFound        = apperr.New(apperr.KindNotFound, "identity_not_found", "No account with this email")
	ErrAlreadyVerified = apperr.New(apperr.KindValidation, "already_verified", "Email is already verified")
	ErrCodeMismatch    = apperr.New(apperr.KindValidation, "code_mismatch", "The code is incorrect")
)

const identityColumns = `id, email, credential_hash, verified, verification_code, created_at`

// Registration describes the effect of Register.
type Registration struct {
	ID      string
	Rotated bool
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(conn *sql.DB) *Store {
	return &Store{db: conn, now: time.Now}
}

// Register creates a pending identity. If a pending identity already holds the
// email, its verification code is replaced instead and Rotated is set.
// A verified identity with the email yields ErrDuplicateEmail.
func (s *Store) Register(ctx context.Context, email string, credentialHash []byte, code string) (Registration, error) {
	const op = "identity.Register"

	email = auth.NormalizeEmail(email)

	id, err := s.rotatePending(ctx, email, code)
	if err == nil {
		return Registration{ID: id, Rotated: true}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Registration{}, apperr.Store(op, err)
	}

	id = uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO identity (id, email, credential_hash, verified, verification_code, created_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)
	`, id, email, string(credentialHash), code, s.now().UTC())
	if err == nil {
		return Registration{ID: id}, nil
	}
	if !db.IsUniqueViolation(err) {
		return Registration{}, apperr.Store(op, err)
	}

	// Lost a race with a concurrent registration of the same email.
	id, err = s.rotatePending(ctx, email, code)
	switch {
	case err == nil:
		return Registration{ID: id, Rotated: true}, nil
	case errors.Is(err, sql.ErrNoRows):
		return Registration{}, fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
	default:
		return Registration{}, apperr.Store(op, err)
	}
}

func (s *Store) rotatePending(ctx context.Context, email, code string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		UPDATE identity SET verification_code = $1
		WHERE email = $2 AND verified = FALSE
		RETURNING id
	`, code, email).Scan(&id)
	return id, err
}

// Verify marks the identity verified when code equals the stored code.
// The code is consumed in the same statement, so it verifies at most once.
func (s *Store) Verify(ctx context.Context, email, code string) (models.Identity, error) {
	const op = "identity.Verify"

	email = auth.NormalizeEmail(email)

	row := s.db.QueryRowContext(ctx, `
		UPDATE identity SET verified = TRUE, verification_code = NULL
		WHERE email = $1 AND verified = FALSE AND verification_code = $2
		RETURNING `+identityColumns, email, code)
	identity, err := scanIdentity(row)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, apperr.Store(op, err)
	}

	// Nothing changed; find out why.
	current, err := s.FindByEmail(ctx, email)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%s: %w", op, err)
	}
	if current.Verified {
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrAlreadyVerified)
	}
	return models.Identity{}, fmt.Errorf("%s: %w", op, ErrCodeMismatch)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (models.Identity, error) {
	const op = "identity.FindByEmail"

	row := s.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identity WHERE email = $1`, auth.NormalizeEmail(email))
	identity, err := scanIdentity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return models.Identity{}, apperr.Store(op, err)
	}
	return identity, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (models.Identity, error) {
	const op = "identity.FindByID"

	row := s.db.QueryRowContext(ctx, `SELECT `+identityColumns+` FROM identity WHERE id = $1`, id)
	identity, err := scanIdentity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return models.Identity{}, apperr.Store(op, err)
	}
	return identity, nil
}

// RotateCode replaces the pending code of any identity, verified or not.
// Password resets reuse the verification code column.
func (s *Store) RotateCode(ctx context.Context, email, code string) error {
	const op = "identity.RotateCode"

	res, err := s.db.ExecContext(ctx,
		`UPDATE identity SET verification_code = $1 WHERE email = $2`, code, auth.NormalizeEmail(email))
	return affectedOne(op, res, err)
}

// UpdateCredential replaces the credential hash unconditionally and consumes
// any pending code.
func (s *Store) UpdateCredential(ctx context.Context, email string, credentialHash []byte) error {
	const op = "identity.UpdateCredential"

	res, err := s.db.ExecContext(ctx, `
		UPDATE identity SET credential_hash = $1, verification_code = NULL
		WHERE email = $2
	`, string(credentialHash), auth.NormalizeEmail(email))
	return affectedOne(op, res, err)
}

// ResetCredential replaces the credential hash only while code is still the
// pending code, and consumes the code in the same statement. A rotation
// racing the reset either lands first, so the old code mismatches, or
// finds the code already consumed.
func (s *Store) ResetCredential(ctx context.Context, email, code string, credentialHash []byte) error {
	const op = "identity.ResetCredential"

	email = auth.NormalizeEmail(email)

	res, err := s.db.ExecContext(ctx, `
		UPDATE identity SET credential_hash = $1, verification_code = NULL
		WHERE email = $2 AND verification_code = $3
	`, string(credentialHash), email, code)
	if err != nil {
		return apperr.Store(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store(op, err)
	}
	if n == 1 {
		return nil
	}

	if _, err := s.FindByEmail(ctx, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, ErrCodeMismatch)
}

func affectedOne(op string, res sql.Result, err error) error {
	if err != nil {
		return apperr.Store(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (models.Identity, error) {
	var (
		identity models.Identity
		hash     string
		code     sql.NullString
	)
	err := row.Scan(&identity.ID, &identity.Email, &hash, &identity.Verified, &code, &identity.CreatedAt)
	if err != nil {
		return models.Identity{}, err
	}
	identity.CredentialHash = []byte(hash)
	if code.Valid {
		identity.VerificationCode = &code.String
	}
	return identity, nil
}
