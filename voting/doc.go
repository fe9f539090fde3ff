// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting orchestrates vote submission and the admin poll lifecycle.

# Submitting a vote

SubmitVote rejects in this order:

 1. ErrUnauthenticated - no identity, or identity not verified
 2. ErrInvalidChoice - choice is not "yes" or "no"
 3. ErrPollNotFound - unknown poll id
 4. ErrPollClosed - poll is inactive, whether or not the caller voted before
 5. ErrAlreadyVoted - the ledger insert hit the unique constraint

The cheap checks run first so clearly invalid requests never reach the
ledger. The last word on "already voted" is always the ledger insert;
HasVoted is never consulted on this path.

# Admin operations

SetPollActive, ResetVotes and DeletePoll return ErrPollNotFound for unknown
ids. A reset puts every identity back into the not-voted state for that poll.

# Metrics

Every submission increments quickly_vote_votes_total with outcome accepted,
already_voted or rejected. Store failures are logged and not counted.
*/
package voting
