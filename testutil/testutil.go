// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
)

// TestPassword is the password of every identity created by CreateTestIdentity
const TestPassword = "test-password"

// SetupTestDB opens a fresh SQLite database in a temp dir with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := "file:" + filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(context.Background(), db.TypeSQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file::memory:",
		DatabaseType: db.TypeSQLite,
		JWTSecret:    "test-jwt-secret",
		TokenTTL:     time.Hour,
		AdminCode:    "test-admin-code",
		EmailDomain:  "brecht-schule.hamburg",
		LogLevel:     "error",
	}
}

// CreateTestIdentity inserts an identity with TestPassword and returns it
func CreateTestIdentity(t *testing.T, conn *sql.DB, email string, verified bool) models.Identity {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	identity := models.Identity{
		ID:             uuid.NewString(),
		Email:          auth.NormalizeEmail(email),
		CredentialHash: hash,
		Verified:       verified,
		CreatedAt:      time.Now().UTC(),
	}
	var code *string
	if !verified {
		c := "123456"
		code = &c
		identity.VerificationCode = code
	}

	_, err = conn.Exec(`
		INSERT INTO identity (id, email, credential_hash, verified, verification_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, identity.ID, identity.Email, string(hash), verified, code, identity.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test identity: %v", err)
	}

	return identity
}

// CreateTestPoll inserts a poll and returns its ID
func CreateTestPoll(t *testing.T, conn *sql.DB, title string, active bool) string {
	t.Helper()

	pollID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll (id, title, active, created_at)
		VALUES ($1, $2, $3, $4)
	`, pollID, title, active, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID
}

// CastTestBallot records a ballot directly, bypassing the voting rules
func CastTestBallot(t *testing.T, conn *sql.DB, pollID, identityID string, choice models.Choice) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO ballot (id, poll_id, identity_id, choice, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), pollID, identityID, string(choice), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}
}

// CountBallots returns how many ballots reference pollID
func CountBallots(t *testing.T, conn *sql.DB, pollID string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ballot WHERE poll_id = $1`, pollID).Scan(&n); err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}
	return n
}

// BearerHeaders returns an Authorization header carrying a token for identity
func BearerHeaders(t *testing.T, cfg cliparse.Config, identity models.Identity) map[string]string {
	t.Helper()

	token, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL).Issue(identity)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// AdminHeaders returns the admin code header for cfg
func AdminHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{"X-Admin-Code": cfg.AdminCode}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
