// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedCode   string
	}{
		{"first registration", models.RegisterRequest{Email: "Anna.Schmidt@brecht-schule.hamburg", Password: "secret"}, http.StatusCreated, ""},
		{"pending again rotates code", models.RegisterRequest{Email: "anna.schmidt@brecht-schule.hamburg", Password: "other"}, http.StatusOK, ""},
		{"lastname only", models.RegisterRequest{Email: "schmidt@brecht-schule.hamburg", Password: "secret"}, http.StatusCreated, ""},
		{"foreign domain", models.RegisterRequest{Email: "anna@example.com", Password: "secret"}, http.StatusBadRequest, "invalid_email"},
		{"short password", models.RegisterRequest{Email: "kurz@brecht-schule.hamburg", Password: "abc"}, http.StatusBadRequest, "password_too_short"},
		{"missing fields", models.RegisterRequest{Email: "leer@brecht-schule.hamburg"}, http.StatusBadRequest, "missing_fields"},
		{"invalid JSON", "invalid json", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.account.Register(w, rawRequest(t, "POST", "/register", tt.requestBody))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedCode != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Code != tt.expectedCode {
					t.Errorf("Expected code %q, got %q", tt.expectedCode, resp.Code)
				}
			}
			if tt.expectedStatus == http.StatusCreated || tt.expectedStatus == http.StatusOK {
				var resp models.RegisterResponse
				testutil.AssertJSON(t, w, &resp)
				if !resp.RequiresVerification {
					t.Error("Expected requiresVerification=true")
				}
				if resp.Email != auth.NormalizeEmail(resp.Email) {
					t.Errorf("Expected a normalized email, got %q", resp.Email)
				}
			}
		})
	}

	t.Run("verified email conflicts", func(t *testing.T) {
		testutil.CreateTestIdentity(t, env.db, "fertig@brecht-schule.hamburg", true)

		w := httptest.NewRecorder()
		env.account.Register(w, rawRequest(t, "POST", "/register",
			models.RegisterRequest{Email: "fertig@brecht-schule.hamburg", Password: "secret"}))

		testutil.AssertStatus(t, w, http.StatusConflict)
	})
}

func TestVerifyAndLogin(t *testing.T) {
	env := newTestEnv(t)
	email := "lena.meyer@brecht-schule.hamburg"

	w := httptest.NewRecorder()
	env.account.Register(w, rawRequest(t, "POST", "/register", models.RegisterRequest{Email: email, Password: "secret"}))
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Login before verification is refused and sends a fresh code
	env.mail.codes[email] = ""
	w = httptest.NewRecorder()
	env.account.Login(w, rawRequest(t, "POST", "/login", models.LoginRequest{Email: email, Password: "secret"}))
	testutil.AssertStatus(t, w, http.StatusForbidden)
	code := env.mail.last(email)
	if code == "" {
		t.Fatal("Expected a code to be sent after unverified login")
	}

	// Wrong code
	w = httptest.NewRecorder()
	env.account.Verify(w, rawRequest(t, "POST", "/verify", models.VerifyRequest{Email: email, Code: "000000x"}))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Right code
	w = httptest.NewRecorder()
	env.account.Verify(w, rawRequest(t, "POST", "/verify", models.VerifyRequest{Email: email, Code: code}))
	testutil.AssertStatus(t, w, http.StatusOK)
	var verified models.AuthResponse
	testutil.AssertJSON(t, w, &verified)
	if verified.Token == "" || verified.User.Email != email {
		t.Errorf("Unexpected verify response: %+v", verified)
	}

	// Verifying twice is rejected
	w = httptest.NewRecorder()
	env.account.Verify(w, rawRequest(t, "POST", "/verify", models.VerifyRequest{Email: email, Code: code}))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	tests := []struct {
		name           string
		request        models.LoginRequest
		expectedStatus int
	}{
		{"valid", models.LoginRequest{Email: email, Password: "secret"}, http.StatusOK},
		{"mixed case email", models.LoginRequest{Email: "Lena.Meyer@Brecht-Schule.Hamburg", Password: "secret"}, http.StatusOK},
		{"wrong password", models.LoginRequest{Email: email, Password: "wrong"}, http.StatusUnauthorized},
		{"unknown email", models.LoginRequest{Email: "nobody@brecht-schule.hamburg", Password: "secret"}, http.StatusUnauthorized},
		{"missing password", models.LoginRequest{Email: email}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.account.Login(w, rawRequest(t, "POST", "/login", tt.request))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusOK {
				var resp models.AuthResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Token == "" {
					t.Error("Expected a token")
				}
			}
		})
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	email := "jonas@brecht-schule.hamburg"
	testutil.CreateTestIdentity(t, env.db, email, true)

	// Unknown and known emails get the same answer
	var messages []string
	for _, addr := range []string{email, "ghost@brecht-schule.hamburg"} {
		w := httptest.NewRecorder()
		env.account.ForgotPassword(w, rawRequest(t, "POST", "/forgot-password", models.ForgotPasswordRequest{Email: addr}))
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.MessageResponse
		testutil.AssertJSON(t, w, &resp)
		messages = append(messages, resp.Message)
	}
	if messages[0] != messages[1] {
		t.Errorf("Expected identical answers, got %q and %q", messages[0], messages[1])
	}
	if env.mail.last("ghost@brecht-schule.hamburg") != "" {
		t.Error("No code may be sent to an unknown address")
	}

	code := env.mail.last(email)
	if code == "" {
		t.Fatal("Expected a reset code")
	}

	w := httptest.NewRecorder()
	env.account.ResetPassword(w, rawRequest(t, "POST", "/reset-password",
		models.ResetPasswordRequest{Email: email, Code: "999999x", NewPassword: "newpass"}))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = httptest.NewRecorder()
	env.account.ResetPassword(w, rawRequest(t, "POST", "/reset-password",
		models.ResetPasswordRequest{Email: email, Code: code, NewPassword: "newpass"}))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	env.account.Login(w, rawRequest(t, "POST", "/login", models.LoginRequest{Email: email, Password: testutil.TestPassword}))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = httptest.NewRecorder()
	env.account.Login(w, rawRequest(t, "POST", "/login", models.LoginRequest{Email: email, Password: "newpass"}))
	testutil.AssertStatus(t, w, http.StatusOK)

	// The code is single use
	w = httptest.NewRecorder()
	env.account.ResetPassword(w, rawRequest(t, "POST", "/reset-password",
		models.ResetPasswordRequest{Email: email, Code: code, NewPassword: "again"}))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}
