// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger records ballots and enforces one ballot per identity per poll.

# Casting

CastIfAbsent is a single INSERT. The table carries

	UNIQUE (poll_id, identity_id)

and a rejected insert is reported as the AlreadyVoted outcome, not as an
error. Concurrent casts for the same pair therefore resolve inside the
database: exactly one is Accepted, the rest see AlreadyVoted. This holds
across processes when the backend is PostgreSQL.

HasVoted exists for status displays. Nothing in the cast path reads it.

# Foreign keys

Ballots reference poll and identity with ON DELETE CASCADE. An insert that
violates either reference returns ErrUnknownPoll or ErrUnknownIdentity.

# Counting

Tally aggregates with COUNT and SUM over the ballot rows on every call.
There is no counter column to drift out of sync.
*/
package ledger
