package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"heimwahl/internal/mailer"
)

func TestSendTestMailEndpoint(t *testing.T) {
	mem := &mailer.Memory{}
	svc, err := mailer.NewService(mem)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	api := &API{store: &Store{}, mail: svc}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/campaign/test",
		strings.NewReader(`{"to":"admin@x.test","message":"Zustellung prüfen"}`))
	api.handleSendTestMail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if len(mem.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(mem.Messages))
	}
	if got := mem.Messages[0]; got.To != "admin@x.test" || !strings.Contains(got.Text, "Zustellung prüfen") {
		t.Fatalf("message = %+v", got)
	}
}

func TestSendTestMailEndpointRejectsBadAddress(t *testing.T) {
	mem := &mailer.Memory{}
	svc, err := mailer.NewService(mem)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	api := &API{store: &Store{}, mail: svc}

	tests := []struct {
		name string
		body string
	}{
		{name: "not an address", body: `{"to":"keine-adresse"}`},
		{name: "empty recipient", body: `{}`},
		{name: "malformed json", body: `{"to":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/admin/campaign/test", strings.NewReader(tt.body))
			api.handleSendTestMail(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
			}
		})
	}

	if len(mem.Messages) != 0 {
		t.Fatalf("messages = %d, want none", len(mem.Messages))
	}
}
