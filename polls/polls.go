// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package polls stores polls and their open/closed state.
package polls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/models"
)

var (
	ErrInvalidInput = apperr.New(apperr.KindValidation, "invalid_input", "Title is required")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "poll_not_found", "Poll not found")
)

const pollColumns = `id, title, question, active, created_at`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(conn *sql.DB) *Store {
	return &Store{db: conn, now: time.Now}
}

// Create inserts a new active poll. An empty question is stored as NULL.
func (s *Store) Create(ctx context.Context, title, question string) (models.Poll, error) {
	const op = "polls.Create"

	title = strings.TrimSpace(title)
	if title == "" {
		return models.Poll{}, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	poll := models.Poll{
		ID:        uuid.NewString(),
		Title:     title,
		Active:    true,
		CreatedAt: s.now().UTC(),
	}
	if q := strings.TrimSpace(question); q != "" {
		poll.Question = &q
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO poll (id, title, question, active, created_at)
		VALUES ($1, $2, $3, TRUE, $4)
	`, poll.ID, poll.Title, poll.Question, poll.CreatedAt)
	if err != nil {
		return models.Poll{}, apperr.Store(op, err)
	}

	return poll, nil
}

func (s *Store) Get(ctx context.Context, id string) (models.Poll, error) {
	const op = "polls.Get"

	row := s.db.QueryRowContext(ctx, `SELECT `+pollColumns+` FROM poll WHERE id = $1`, id)
	poll, err := scanPoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return models.Poll{}, apperr.Store(op, err)
	}
	return poll, nil
}

// List returns all polls, newest first.
func (s *Store) List(ctx context.Context) ([]models.Poll, error) {
	const op = "polls.List"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pollColumns+` FROM poll ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	defer rows.Close()

	list := []models.Poll{}
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, apperr.Store(op, err)
		}
		list = append(list, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(op, err)
	}

	return list, nil
}

// SetActive opens or closes a poll and returns its new state.
func (s *Store) SetActive(ctx context.Context, id string, active bool) (models.Poll, error) {
	const op = "polls.SetActive"

	row := s.db.QueryRowContext(ctx,
		`UPDATE poll SET active = $1 WHERE id = $2 RETURNING `+pollColumns, active, id)
	poll, err := scanPoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return models.Poll{}, apperr.Store(op, err)
	}
	return poll, nil
}

// Delete removes the poll and all of its ballots in one transaction.
func (s *Store) Delete(ctx context.Context, id string) error {
	const op = "polls.Delete"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Store(op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ballot WHERE poll_id = $1`, id); err != nil {
		return apperr.Store(op, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM poll WHERE id = $1`, id)
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

	if err := tx.Commit(); err != nil {
		return apperr.Store(op, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (models.Poll, error) {
	var (
		poll     models.Poll
		question sql.NullString
	)
	if err := row.Scan(&poll.ID, &poll.Title, &question, &poll.Active, &poll.CreatedAt); err != nil {
		return models.Poll{}, err
	}
	if question.Valid {
		poll.Question = &question.String
	}
	return poll, nil
}
