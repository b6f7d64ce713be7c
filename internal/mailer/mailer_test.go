package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestServiceRendersTemplates(t *testing.T) {
	mem := &Memory{}
	svc, err := NewService(mem)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	ctx := context.Background()

	if err := svc.SendVotingToken(ctx, "haus-a@x.test", "Haus A", "https://wahl.example/vote?token=abc"); err != nil {
		t.Fatalf("SendVotingToken() error = %v", err)
	}
	if err := svc.SendNewsletterConfirmation(ctx, "gruppe@x.test", "Gruppe Nord", "https://wahl.example/confirm?token=def"); err != nil {
		t.Fatalf("SendNewsletterConfirmation() error = %v", err)
	}
	if err := svc.SendVotingStart(ctx, "gruppe@x.test", "Gruppe Nord", "https://wahl.example/vote", 8); err != nil {
		t.Fatalf("SendVotingStart() error = %v", err)
	}
	if err := svc.SendVotingReminder(ctx, "gruppe@x.test", "Gruppe Nord", "https://wahl.example/vote"); err != nil {
		t.Fatalf("SendVotingReminder() error = %v", err)
	}

	if len(mem.Messages) != 4 {
		t.Fatalf("messages sent = %d, want 4", len(mem.Messages))
	}

	token := mem.Messages[0]
	if !strings.Contains(token.Text, "Haus A") || !strings.Contains(token.Text, "https://wahl.example/vote?token=abc") {
		t.Fatalf("voting token text is missing fields:\n%s", token.Text)
	}
	if !strings.Contains(token.HTML, "<strong>Haus A</strong>") {
		t.Fatalf("voting token html is missing the facility name")
	}

	confirm := mem.Messages[1]
	if !strings.Contains(confirm.Text, "https://wahl.example/confirm?token=def") {
		t.Fatalf("confirmation text is missing the confirm link:\n%s", confirm.Text)
	}

	start := mem.Messages[2]
	if !strings.Contains(start.Text, "bis zu 8 Kandidaten") {
		t.Fatalf("voting start text is missing the ballot size:\n%s", start.Text)
	}
}

func TestServiceOverrides(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/mail.yaml"
	content := "subjects:\n  voting_token: \"Neuer Betreff\"\ntemplates:\n  voting_reminder_text: \"Kurzfassung für {{.GroupName}}: {{.VotingLink}}\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write overrides: %v", err)
	}

	overrides, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}

	mem := &Memory{}
	svc, err := NewServiceWithOverrides(mem, overrides)
	if err != nil {
		t.Fatalf("NewServiceWithOverrides() error = %v", err)
	}
	ctx := context.Background()

	if err := svc.SendVotingToken(ctx, "a@x.test", "Haus A", "https://wahl.example/vote/t"); err != nil {
		t.Fatalf("SendVotingToken() error = %v", err)
	}
	if mem.Messages[0].Subject != "Neuer Betreff" {
		t.Fatalf("subject = %q, want override", mem.Messages[0].Subject)
	}

	if err := svc.SendVotingReminder(ctx, "a@x.test", "Gruppe Nord", "https://wahl.example/vote"); err != nil {
		t.Fatalf("SendVotingReminder() error = %v", err)
	}
	if got := mem.Messages[1].Text; got != "Kurzfassung für Gruppe Nord: https://wahl.example/vote" {
		t.Fatalf("reminder text = %q", got)
	}
}

func TestOverrideUnknownTemplateFails(t *testing.T) {
	_, err := NewServiceWithOverrides(&Memory{}, Overrides{
		Templates: map[string]string{"no_such_template": "x"},
	})
	if err == nil {
		t.Fatalf("NewServiceWithOverrides() accepted an unknown template name")
	}
}

func TestClientLogOnlyModeWithoutKey(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(Config{APIURL: srv.URL})
	if err := client.Send(context.Background(), Message{To: "a@x.test", Subject: "s"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if called {
		t.Fatalf("client hit the API without an API key")
	}
}

func TestClientSendsJSONRequest(t *testing.T) {
	var got sendRequest
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Api-Token")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Config{
		APIURL:    srv.URL,
		APIKey:    "secret-key",
		FromEmail: "noreply@wahl.example",
		FromName:  "Landesheimrat-Wahl",
	})
	err := client.Send(context.Background(), Message{
		To:      "haus-a@x.test",
		Subject: "Betreff",
		Text:    "Hallo",
		HTML:    "<p>Hallo</p>",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotToken != "secret-key" {
		t.Fatalf("api token header = %q", gotToken)
	}
	if got.From != "Landesheimrat-Wahl <noreply@wahl.example>" {
		t.Fatalf("from = %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "haus-a@x.test" {
		t.Fatalf("to = %v", got.To)
	}
}

func TestClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(Config{APIURL: srv.URL, APIKey: "bad"})
	err := client.Send(context.Background(), Message{To: "a@x.test"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("Send() error = %v, want 401 error", err)
	}
}

func TestServiceSendsTestMail(t *testing.T) {
	mem := &Memory{}
	svc, err := NewService(mem)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	if err := svc.SendTestMail(context.Background(), "admin@x.test", "", ""); err != nil {
		t.Fatalf("SendTestMail() error = %v", err)
	}
	if len(mem.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(mem.Messages))
	}
	msg := mem.Messages[0]
	if msg.Subject != "Test-Email - Landesheimrat-Wahl" {
		t.Fatalf("subject = %q, want default", msg.Subject)
	}
	if !strings.Contains(msg.Text, defaultTestMessage) {
		t.Fatalf("text = %q, want default message", msg.Text)
	}

	if err := svc.SendTestMail(context.Background(), "admin@x.test", "Eigener Betreff", "Zustellung prüfen"); err != nil {
		t.Fatalf("SendTestMail() error = %v", err)
	}
	msg = mem.Messages[1]
	if msg.Subject != "Eigener Betreff" {
		t.Fatalf("subject = %q, want override", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Zustellung prüfen") {
		t.Fatalf("html = %q, want custom message", msg.HTML)
	}
}
