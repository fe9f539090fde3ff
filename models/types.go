package models

import "time"

// Choice is a yes/no ballot value.
type Choice string

const (
	ChoiceYes Choice = "yes"
	ChoiceNo  Choice = "no"
)

// ParseChoice returns the choice for s and whether it is one of yes/no.
func ParseChoice(s string) (Choice, bool) {
	switch Choice(s) {
	case ChoiceYes, ChoiceNo:
		return Choice(s), true
	}
	return "", false
}

// Request types

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type VoteRequest struct {
	PollID string `json:"poll_id"`
	Choice string `json:"choice"`
}

type CreatePollRequest struct {
	Title    string `json:"title"`
	Question string `json:"question"`
}

// Active is a pointer so a missing field can be told apart from false.
type UpdatePollRequest struct {
	Active *bool `json:"active"`
}

// Response types

type RegisterResponse struct {
	Message              string `json:"message"`
	RequiresVerification bool   `json:"requiresVerification"`
	Email                string `json:"email"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    IdentityView `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
}

type VoteResponse struct {
	Message string `json:"message"`
	Choice  Choice `json:"choice"`
}

type HasVotedResponse struct {
	HasVoted bool `json:"hasVoted"`
}

type PollResponse struct {
	Message string `json:"message"`
	Poll    Poll   `json:"poll"`
}

// PollIDResponse answers admin actions that leave no poll to return.
type PollIDResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type ResultsResponse struct {
	PollID     string `json:"poll_id"`
	PollTitle  string `json:"poll_title,omitempty"`
	Yes        int    `json:"yes"`
	No         int    `json:"no"`
	Total      int    `json:"total"`
	YesPercent int    `json:"yes_percent"`
	NoPercent  int    `json:"no_percent"`
}

// Domain types

type Identity struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	CredentialHash   []byte    `json:"-"`
	Verified         bool      `json:"verified"`
	VerificationCode *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// IdentityView is the part of an identity returned to its owner.
type IdentityView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (i Identity) View() IdentityView {
	return IdentityView{ID: i.ID, Email: i.Email}
}

type Poll struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Question  *string   `json:"question,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Ballot struct {
	ID         string    `json:"id"`
	PollID     string    `json:"poll_id"`
	IdentityID string    `json:"-"`
	Choice     Choice    `json:"choice"`
	CreatedAt  time.Time `json:"created_at"`
}

// Tally is the raw count of ballots for one poll.
type Tally struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Total int `json:"total"`
}

// Results is a tally plus derived percentages.
type Results struct {
	Tally
	YesPercent int `json:"yes_percent"`
	NoPercent  int `json:"no_percent"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
