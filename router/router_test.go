// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/testutil"
)

// codeBox keeps the last code sent to each address
type codeBox struct {
	mu    sync.Mutex
	codes map[string]string
}

func newCodeBox() *codeBox {
	return &codeBox{codes: make(map[string]string)}
}

func (b *codeBox) SendVerificationCode(_ context.Context, email, code string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codes[email] = code
	return nil
}

func (b *codeBox) SendPasswordReset(ctx context.Context, email, code string) error {
	return b.SendVerificationCode(ctx, email, code)
}

func (b *codeBox) code(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.codes[email]
}

func newTestRouter(t *testing.T) (*http.ServeMux, *sql.DB, *codeBox) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	box := newCodeBox()
	mux := NewRouter(db, testutil.GetTestConfig(), metrics.New(), box)
	return mux, db, box
}

func TestHealthEndpoint(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "quickly-vote API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	// one logged request so the HTTP series exist
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/polls", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	body := w.Body.String()
	for _, want := range []string{"quickly_vote_http_requests_total", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected /metrics to expose %s", want)
		}
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	// Test that routes respond (handler is invoked)
	// 400, 401, 404 are all valid responses depending on handler logic
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"GET", "/metrics"},

		{"POST", "/register"},
		{"POST", "/verify"},
		{"POST", "/login"},
		{"POST", "/forgot-password"},
		{"POST", "/reset-password"},

		{"GET", "/polls"},
		{"GET", "/polls/test-id"},
		{"POST", "/vote"},
		{"GET", "/hasvoted?poll_id=test-id"},
		{"GET", "/results?poll_id=test-id"},

		{"POST", "/admin/polls"},
		{"PATCH", "/admin/polls/test-id"},
		{"DELETE", "/admin/polls/test-id"},
		{"POST", "/admin/polls/test-id/reset"},
		{"GET", "/admin/polls/test-id/results"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	testCases := []struct {
		name   string
		method string
		path   string
	}{
		{"POST to health endpoint", "POST", "/health"},
		{"DELETE on public poll", "DELETE", "/polls/test-id"},
		{"PUT on admin poll", "PUT", "/admin/polls/test-id"},
		{"GET on vote", "GET", "/vote"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestUnknownRoutes(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	testCases := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{"GET", "/no-such-route", http.StatusNotFound},
		{"GET", "/polls/abc/extra", http.StatusNotFound},
		{"GET", "/admin/polls", http.StatusMethodNotAllowed},
		{"GET", "/vote", http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if w.Body.String() == "quickly-vote API v1" {
				t.Errorf("%s %s must not serve the root banner", tc.method, tc.path)
			}
		})
	}
}

func TestRouteProtection(t *testing.T) {
	mux, db, _ := newTestRouter(t)
	pollID := testutil.CreateTestPoll(t, db, "Protected", true)

	testCases := []struct {
		name    string
		method  string
		path    string
		body    interface{}
		headers map[string]string
	}{
		{"vote without token", "POST", "/vote", models.VoteRequest{PollID: pollID, Choice: "yes"}, nil},
		{"hasvoted without token", "GET", "/hasvoted?poll_id=" + pollID, nil, nil},
		{"vote with garbage token", "POST", "/vote", models.VoteRequest{PollID: pollID, Choice: "yes"},
			map[string]string{"Authorization": "Bearer garbage"}},
		{"create poll without code", "POST", "/admin/polls", models.CreatePollRequest{Title: "x"}, nil},
		{"reset with wrong code", "POST", "/admin/polls/" + pollID + "/reset", nil,
			map[string]string{"X-Admin-Code": "wrong"}},
		{"delete without code", "DELETE", "/admin/polls/" + pollID, nil, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest(tc.method, tc.path, tc.body, tc.headers))
			testutil.AssertStatus(t, w, http.StatusUnauthorized)
		})
	}

	// Nothing above may have touched the poll
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/polls/"+pollID, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
}

// TestEndToEnd walks one voter and one admin through the whole API.
func TestEndToEnd(t *testing.T) {
	mux, _, box := newTestRouter(t)
	cfg := testutil.GetTestConfig()
	admin := testutil.AdminHeaders(cfg)
	email := "max.mustermann@brecht-schule.hamburg"

	serve := func(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest(method, path, body, headers))
		return w
	}

	// Step 1: Admin creates a poll
	w := serve("POST", "/admin/polls", models.CreatePollRequest{Title: "Longer breaks?"}, admin)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.PollResponse
	testutil.AssertJSON(t, w, &created)
	pollID := created.Poll.ID
	if pollID == "" || !created.Poll.Active {
		t.Fatalf("Step 1 - Expected an active poll with an ID, got %+v", created.Poll)
	}

	// Step 2: Voter registers and verifies
	w = serve("POST", "/register", models.RegisterRequest{Email: email, Password: "secret"}, nil)
	testutil.AssertStatus(t, w, http.StatusCreated)
	code := box.code(email)
	if code == "" {
		t.Fatal("Step 2 - No verification code was sent")
	}

	w = serve("POST", "/verify", models.VerifyRequest{Email: email, Code: code}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var session models.AuthResponse
	testutil.AssertJSON(t, w, &session)
	bearer := map[string]string{"Authorization": "Bearer " + session.Token}

	// Step 3: Vote once, then try again
	w = serve("POST", "/vote", models.VoteRequest{PollID: pollID, Choice: "yes"}, bearer)
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = serve("POST", "/vote", models.VoteRequest{PollID: pollID, Choice: "no"}, bearer)
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = serve("GET", "/hasvoted?poll_id="+pollID, nil, bearer)
	testutil.AssertStatus(t, w, http.StatusOK)
	var voted models.HasVotedResponse
	testutil.AssertJSON(t, w, &voted)
	if !voted.HasVoted {
		t.Error("Step 3 - Expected hasVoted=true")
	}

	// Step 4: Results show the single yes
	w = serve("GET", "/results?poll_id="+pollID, nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var res models.ResultsResponse
	testutil.AssertJSON(t, w, &res)
	if res.Yes != 1 || res.No != 0 || res.Total != 1 || res.YesPercent != 100 || res.NoPercent != 0 {
		t.Errorf("Step 4 - Unexpected results: %+v", res)
	}

	// Step 5: Closing blocks voting
	closed := false
	w = serve("PATCH", "/admin/polls/"+pollID, models.UpdatePollRequest{Active: &closed}, admin)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = serve("POST", "/vote", models.VoteRequest{PollID: pollID, Choice: "no"}, bearer)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Step 6: Reopen and reset, then the voter may vote again
	open := true
	w = serve("PATCH", "/admin/polls/"+pollID, models.UpdatePollRequest{Active: &open}, admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	w = serve("POST", "/admin/polls/"+pollID+"/reset", nil, admin)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = serve("POST", "/vote", models.VoteRequest{PollID: pollID, Choice: "no"}, bearer)
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = serve("GET", "/admin/polls/"+pollID+"/results", nil, admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	res = models.ResultsResponse{}
	testutil.AssertJSON(t, w, &res)
	if res.No != 1 || res.Total != 1 || res.PollTitle != "Longer breaks?" {
		t.Errorf("Step 6 - Unexpected admin results: %+v", res)
	}

	// Step 7: Delete removes the poll and its results
	w = serve("DELETE", "/admin/polls/"+pollID, nil, admin)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = serve("GET", "/results?poll_id="+pollID, nil, nil)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
