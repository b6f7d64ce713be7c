package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"heimwahl/internal/ballot"
	"heimwahl/internal/config"
)

type openElection struct{}

func (openElection) ElectionClosed(context.Context) (bool, error) { return false, nil }

func newTestAPI(t *testing.T, store *ballot.MemoryStore, mode string) http.Handler {
	t.Helper()

	cfg := config.Config{
		CredentialMode:   mode,
		BallotMaxSize:    8,
		PublicRateLimit:  1000,
		PublicRateWindow: time.Minute,
		FrontendURL:      "http://localhost:3000",
	}
	api := &API{
		store:   &Store{},
		cfg:     cfg,
		ballots: ballot.New(store, openElection{}, mode, cfg.BallotMaxSize),
	}
	handler, err := api.Routes()
	if err != nil {
		t.Fatalf("Routes() error = %v", err)
	}
	return handler
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func seedTokenStore(t *testing.T) *ballot.MemoryStore {
	t.Helper()
	store := ballot.NewMemory()
	store.AddCandidate(1, "Anna")
	store.AddCandidate(2, "Ben")
	store.AddToken("valid-token", "Haus A", time.Now().Add(time.Hour))
	return store
}

func TestVerifyEndpoint(t *testing.T) {
	handler := newTestAPI(t, seedTokenStore(t), config.CredentialModeToken)

	rec := postJSON(t, handler, "/api/votes/verify", `{"token":"valid-token"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp ballot.VerifyResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Valid || resp.FacilityName != "Haus A" {
		t.Fatalf("response = %+v, want valid with facility", resp)
	}

	// Unknown credentials still answer 200 with a reason.
	rec = postJSON(t, handler, "/api/votes/verify", `{"token":"unknown"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Valid || resp.Reason != ballot.ReasonNotFound {
		t.Fatalf("response = %+v, want reason %q", resp, ballot.ReasonNotFound)
	}
}

func TestSubmitEndpoint(t *testing.T) {
	store := seedTokenStore(t)
	handler := newTestAPI(t, store, config.CredentialModeToken)

	rec := postJSON(t, handler, "/api/votes", `{"token":"valid-token","candidateIds":[1,2]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Success    bool `json:"success"`
		VotedCount int  `json:"votedCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.VotedCount != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if len(store.Votes()) != 2 {
		t.Fatalf("vote rows = %d, want 2", len(store.Votes()))
	}
}

func TestSubmitEndpointStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "validation error",
			body: `{"token":"valid-token","candidateIds":[]}`,
			want: http.StatusBadRequest,
		},
		{
			name: "duplicate candidate",
			body: `{"token":"valid-token","candidateIds":[1,1]}`,
			want: http.StatusBadRequest,
		},
		{
			name: "unknown credential",
			body: `{"token":"unknown","candidateIds":[1]}`,
			want: http.StatusConflict,
		},
		{
			name: "unknown candidate",
			body: `{"token":"valid-token","candidateIds":[999]}`,
			want: http.StatusNotFound,
		},
		{
			name: "malformed json",
			body: `{"token":`,
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestAPI(t, seedTokenStore(t), config.CredentialModeToken)
			rec := postJSON(t, handler, "/api/votes", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestSubmitEndpointConsumedCredential(t *testing.T) {
	handler := newTestAPI(t, seedTokenStore(t), config.CredentialModeToken)

	if rec := postJSON(t, handler, "/api/votes", `{"token":"valid-token","candidateIds":[1]}`); rec.Code != http.StatusCreated {
		t.Fatalf("first submission status = %d", rec.Code)
	}

	rec := postJSON(t, handler, "/api/votes", `{"token":"valid-token","candidateIds":[2]}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second submission status = %d, want 409", rec.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != ballot.ReasonAlreadyUsed {
		t.Fatalf("error = %q, want %q", resp.Error, ballot.ReasonAlreadyUsed)
	}
}

func TestSubmitRecordsClientIPWithoutPort(t *testing.T) {
	store := seedTokenStore(t)
	handler := newTestAPI(t, store, config.CredentialModeToken)

	req := httptest.NewRequest(http.MethodPost, "/api/votes", strings.NewReader(`{"token":"valid-token","candidateIds":[1]}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:4711"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	if ip := store.TokenIP("valid-token"); ip != "203.0.113.7" {
		t.Fatalf("recorded ip = %q, want bare address", ip)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	handler := newTestAPI(t, seedTokenStore(t), config.CredentialModeToken)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/results", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
