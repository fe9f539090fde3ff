// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - RegisterRequest, VerifyRequest, LoginRequest: account flows
  - ForgotPasswordRequest, ResetPasswordRequest: password reset
  - VoteRequest: poll_id, choice
  - CreatePollRequest: title, optional question
  - UpdatePollRequest: active (required, pointer to detect absence)

# Response Types

  - RegisterResponse, AuthResponse, MessageResponse
  - VoteResponse: message, choice
  - HasVotedResponse: hasVoted
  - PollResponse, PollIDResponse
  - ResultsResponse: poll_id, yes, no, total, yes_percent, no_percent
  - ErrorResponse: error, kind, code, message

# Domain Types

  - Identity: registered account; CredentialHash and VerificationCode never serialize
  - Poll: title, optional question, active flag
  - Ballot: one vote of one identity on one poll
  - Tally, Results: counts and derived percentages

# Choices

	ChoiceYes = "yes"
	ChoiceNo  = "no"

ParseChoice rejects anything else.
*/
package models
