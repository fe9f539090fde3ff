// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package results turns ledger tallies into yes/no percentages.
package results

import (
	"context"
	"fmt"

	"github.com/danielhkuo/quickly-vote/models"
)

type PollReader interface {
	Get(ctx context.Context, id string) (models.Poll, error)
}

type Tallier interface {
	Tally(ctx context.Context, pollID string) (models.Tally, error)
}

type Aggregator struct {
	polls   PollReader
	ballots Tallier
}

func NewAggregator(polls PollReader, ballots Tallier) *Aggregator {
	return &Aggregator{polls: polls, ballots: ballots}
}

// Results returns the current results of a poll. Unknown polls yield the
// poll store's not-found error.
func (a *Aggregator) Results(ctx context.Context, pollID string) (models.Poll, models.Results, error) {
	const op = "results.Results"

	poll, err := a.polls.Get(ctx, pollID)
	if err != nil {
		return models.Poll{}, models.Results{}, fmt.Errorf("%s: %w", op, err)
	}

	tally, err := a.ballots.Tally(ctx, pollID)
	if err != nil {
		return models.Poll{}, models.Results{}, fmt.Errorf("%s: %w", op, err)
	}

	return poll, Compute(tally), nil
}

// Compute derives percentages from a tally. The yes share is rounded half up
// and no takes the remainder, so the two always sum to 100 when Total > 0.
func Compute(t models.Tally) models.Results {
	r := models.Results{Tally: t}
	if t.Total <= 0 {
		return r
	}
	r.YesPercent = (t.Yes*200 + t.Total) / (2 * t.Total)
	r.NoPercent = 100 - r.YesPercent
	return r
}
