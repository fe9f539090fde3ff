// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/ledger"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/polls"
)

var (
	ErrUnauthenticated = apperr.New(apperr.KindAuth, "unauthenticated", "Please log in with a verified account")
	ErrInvalidInput    = apperr.New(apperr.KindValidation, "invalid_input", "poll_id is required")
	ErrInvalidChoice   = apperr.New(apperr.KindValidation, "invalid_choice", "Choice must be yes or no")
	ErrPollNotFound    = apperr.New(apperr.KindNotFound, "poll_not_found", "Poll not found")
	ErrPollClosed      = apperr.New(apperr.KindValidation, "poll_closed", "This poll is closed")
	ErrAlreadyVoted    = apperr.New(apperr.KindConflict, "already_voted", "You have already voted on this poll")
)

type PollStore interface {
	Get(ctx context.Context, id string) (models.Poll, error)
	SetActive(ctx context.Context, id string, active bool) (models.Poll, error)
	Delete(ctx context.Context, id string) error
}

type Ledger interface {
	CastIfAbsent(ctx context.Context, pollID, identityID string, choice models.Choice) (ledger.Outcome, error)
	HasVoted(ctx context.Context, pollID, identityID string) (bool, error)
	Reset(ctx context.Context, pollID string) (int64, error)
}

type Service struct {
	log     *slog.Logger
	polls   PollStore
	ledger  Ledger
	metrics *metrics.Metrics
}

func New(log *slog.Logger, polls PollStore, ledger Ledger, m *metrics.Metrics) *Service {
	return &Service{log: log, polls: polls, ledger: ledger, metrics: m}
}

// SubmitVote records choice for identity on pollID. identity is nil for
// anonymous callers.
//
// Checks run in a fixed order: identity, choice, poll existence, poll open.
// Whether the identity already voted is decided only by the ledger insert.
func (s *Service) SubmitVote(ctx context.Context, identity *models.Identity, pollID, choice string) (models.Choice, error) {
	const op = "voting.SubmitVote"

	c, err := s.submit(ctx, identity, pollID, choice)
	switch {
	case err == nil:
		s.metrics.Votes.WithLabelValues(metrics.OutcomeAccepted).Inc()
	case errors.Is(err, ErrAlreadyVoted):
		s.metrics.Votes.WithLabelValues(metrics.OutcomeAlreadyVoted).Inc()
	case apperr.IsStore(err):
		s.log.Error("vote failed", slog.String("op", op), slog.String("poll_id", pollID), slog.Any("error", err))
	default:
		s.metrics.Votes.WithLabelValues(metrics.OutcomeRejected).Inc()
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (s *Service) submit(ctx context.Context, identity *models.Identity, pollID, choice string) (models.Choice, error) {
	if err := requireVerified(identity); err != nil {
		return "", err
	}

	c, ok := models.ParseChoice(choice)
	if !ok {
		return "", ErrInvalidChoice
	}

	poll, err := s.poll(ctx, pollID)
	if err != nil {
		return "", err
	}
	if !poll.Active {
		return "", ErrPollClosed
	}

	outcome, err := s.ledger.CastIfAbsent(ctx, poll.ID, identity.ID, c)
	switch {
	case errors.Is(err, ledger.ErrUnknownPoll):
		// deleted after the lookup
		return "", ErrPollNotFound
	case errors.Is(err, ledger.ErrUnknownIdentity):
		return "", ErrUnauthenticated
	case err != nil:
		return "", err
	}

	if outcome == ledger.AlreadyVoted {
		return "", ErrAlreadyVoted
	}

	s.log.Info("vote accepted",
		slog.String("poll_id", poll.ID),
		slog.String("identity_id", identity.ID),
		slog.String("choice", string(c)),
	)
	return c, nil
}

// HasVoted reports whether identity has a ballot on pollID.
func (s *Service) HasVoted(ctx context.Context, identity *models.Identity, pollID string) (bool, error) {
	const op = "voting.HasVoted"

	if err := requireVerified(identity); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	pollID = strings.TrimSpace(pollID)
	if pollID == "" {
		return false, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	voted, err := s.ledger.HasVoted(ctx, pollID, identity.ID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return voted, nil
}

// SetPollActive opens or closes voting on a poll.
func (s *Service) SetPollActive(ctx context.Context, pollID string, active bool) (models.Poll, error) {
	const op = "voting.SetPollActive"

	poll, err := s.polls.SetActive(ctx, pollID, active)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, translatePollErr(err))
	}

	s.log.Info("poll state changed", slog.String("poll_id", pollID), slog.Bool("active", active))
	return poll, nil
}

// ResetVotes removes every ballot of a poll. Each identity may vote again.
func (s *Service) ResetVotes(ctx context.Context, pollID string) error {
	const op = "voting.ResetVotes"

	if _, err := s.poll(ctx, pollID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	removed, err := s.ledger.Reset(ctx, pollID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.VoteResets.Inc()
	s.log.Info("votes reset", slog.String("poll_id", pollID), slog.Int64("removed", removed))
	return nil
}

// DeletePoll removes a poll together with its ballots.
func (s *Service) DeletePoll(ctx context.Context, pollID string) error {
	const op = "voting.DeletePoll"

	if _, err := s.poll(ctx, pollID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.polls.Delete(ctx, pollID); err != nil {
		return fmt.Errorf("%s: %w", op, translatePollErr(err))
	}

	s.log.Info("poll deleted", slog.String("poll_id", pollID))
	return nil
}

func (s *Service) poll(ctx context.Context, pollID string) (models.Poll, error) {
	pollID = strings.TrimSpace(pollID)
	if pollID == "" {
		return models.Poll{}, ErrInvalidInput
	}
	poll, err := s.polls.Get(ctx, pollID)
	if err != nil {
		return models.Poll{}, translatePollErr(err)
	}
	return poll, nil
}

func requireVerified(identity *models.Identity) error {
	if identity == nil || !identity.Verified {
		return ErrUnauthenticated
	}
	return nil
}

func translatePollErr(err error) error {
	if errors.Is(err, polls.ErrNotFound) {
		return ErrPollNotFound
	}
	return err
}
