// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
)

// Outcome is the result of a cast attempt that reached the database.
type Outcome int

const (
	Accepted Outcome = iota + 1
	AlreadyVoted
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case AlreadyVoted:
		return "already_voted"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownPoll     = apperr.New(apperr.KindNotFound, "unknown_poll", "Poll not found")
	ErrUnknownIdentity = apperr.New(apperr.KindNotFound, "unknown_identity", "Identity not found")
	ErrInvalidChoice   = apperr.New(apperr.KindValidation, "invalid_choice", "Choice must be yes or no")
)

// Ledger records at most one ballot per (poll, identity).
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

func New(conn *sql.DB) *Ledger {
	return &Ledger{db: conn, now: time.Now}
}

// CastIfAbsent inserts a ballot unless one already exists for the pair.
// The UNIQUE (poll_id, identity_id) constraint decides; there is no prior read.
func (l *Ledger) CastIfAbsent(ctx context.Context, pollID, identityID string, choice models.Choice) (Outcome, error) {
	const op = "ledger.CastIfAbsent"

	if _, ok := models.ParseChoice(string(choice)); !ok {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidChoice)
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO ballot (id, poll_id, identity_id, choice, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), pollID, identityID, string(choice), l.now().UTC())
	switch {
	case err == nil:
		return Accepted, nil
	case db.IsUniqueViolation(err):
		return AlreadyVoted, nil
	case db.IsForeignKeyViolation(err):
		return 0, l.missingParent(ctx, op, pollID)
	default:
		return 0, apperr.Store(op, err)
	}
}

// missingParent names which reference a rejected insert was missing.
func (l *Ledger) missingParent(ctx context.Context, op, pollID string) error {
	var exists bool
	err := l.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM poll WHERE id = $1)`, pollID).Scan(&exists)
	if err != nil {
		return apperr.Store(op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, ErrUnknownPoll)
	}
	return fmt.Errorf("%s: %w", op, ErrUnknownIdentity)
}

// HasVoted reports whether a ballot exists for the pair. It is informational
// only and never gates a cast.
func (l *Ledger) HasVoted(ctx context.Context, pollID, identityID string) (bool, error) {
	const op = "ledger.HasVoted"

	var exists bool
	err := l.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM ballot WHERE poll_id = $1 AND identity_id = $2)
	`, pollID, identityID).Scan(&exists)
	if err != nil {
		return false, apperr.Store(op, err)
	}
	return exists, nil
}

// Reset deletes every ballot of the poll and returns how many were removed.
func (l *Ledger) Reset(ctx context.Context, pollID string) (int64, error) {
	const op = "ledger.Reset"

	res, err := l.db.ExecContext(ctx, `DELETE FROM ballot WHERE poll_id = $1`, pollID)
	if err != nil {
		return 0, apperr.Store(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Store(op, err)
	}
	return n, nil
}

// Tally counts the ballots of a poll. An unknown poll counts as empty.
func (l *Ledger) Tally(ctx context.Context, pollID string) (models.Tally, error) {
	const op = "ledger.Tally"

	var t models.Tally
	err := l.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN choice = 'yes' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN choice = 'no' THEN 1 ELSE 0 END), 0),
			COUNT(*)
		FROM ballot
		WHERE poll_id = $1
	`, pollID).Scan(&t.Yes, &t.No, &t.Total)
	if err != nil {
		return models.Tally{}, apperr.Store(op, err)
	}
	return t, nil
}
