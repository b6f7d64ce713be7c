package campaign

import (
	"context"
	"errors"
	"testing"

	"heimwahl/internal/models"
)

type memoryStore struct {
	subs []models.NewsletterSubscription
}

func (m *memoryStore) ConfirmedSubscribers(_ context.Context, onlyEmail string) ([]models.NewsletterSubscription, error) {
	var out []models.NewsletterSubscription
	for _, s := range m.subs {
		if !s.Confirmed {
			continue
		}
		if onlyEmail != "" && s.Email != onlyEmail {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryStore) UnvotedSubscribers(context.Context) ([]models.NewsletterSubscription, error) {
	var out []models.NewsletterSubscription
	for _, s := range m.subs {
		if s.Confirmed && !s.HasVoted {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryStore) Stats(context.Context) (Stats, error) {
	var stats Stats
	for _, s := range m.subs {
		stats.Total++
		if s.Confirmed {
			stats.Confirmed++
			if s.HasVoted {
				stats.Voted++
			}
		}
	}
	stats.Pending = stats.Total - stats.Confirmed
	return stats, nil
}

type fakeSender struct {
	started  []string
	reminded []string
	failFor  map[string]bool
}

func (f *fakeSender) SendVotingStart(_ context.Context, to, _, _ string, _ int) error {
	if f.failFor[to] {
		return errors.New("delivery refused")
	}
	f.started = append(f.started, to)
	return nil
}

func (f *fakeSender) SendVotingReminder(_ context.Context, to, _, _ string) error {
	if f.failFor[to] {
		return errors.New("delivery refused")
	}
	f.reminded = append(f.reminded, to)
	return nil
}

func fixtureSubs() []models.NewsletterSubscription {
	return []models.NewsletterSubscription{
		{Email: "nord@x.test", GroupName: "Gruppe Nord", Confirmed: true},
		{Email: "sued@x.test", GroupName: "Gruppe Süd", Confirmed: true, HasVoted: true},
		{Email: "pending@x.test", GroupName: "Gruppe West", Confirmed: false},
		{Email: "ost@x.test", GroupName: "Gruppe Ost", Confirmed: true},
	}
}

func TestSendVotingStartBroadcast(t *testing.T) {
	sender := &fakeSender{}
	svc := New(&memoryStore{subs: fixtureSubs()}, sender, "https://wahl.example/vote", 8)

	result, err := svc.SendVotingStart(context.Background(), "")
	if err != nil {
		t.Fatalf("SendVotingStart() error = %v", err)
	}
	if result.Total != 3 || result.Sent != 3 || result.Failed != 0 {
		t.Fatalf("result = %+v, want 3 sent of 3", result)
	}
	if len(sender.started) != 3 {
		t.Fatalf("mails sent = %v", sender.started)
	}
	// Unconfirmed subscribers never get campaign mail.
	for _, to := range sender.started {
		if to == "pending@x.test" {
			t.Fatalf("unconfirmed subscriber received mail")
		}
	}
}

func TestSendVotingStartSingleRecipient(t *testing.T) {
	sender := &fakeSender{}
	svc := New(&memoryStore{subs: fixtureSubs()}, sender, "https://wahl.example/vote", 8)

	result, err := svc.SendVotingStart(context.Background(), "nord@x.test")
	if err != nil {
		t.Fatalf("SendVotingStart() error = %v", err)
	}
	if result.Total != 1 || result.Sent != 1 {
		t.Fatalf("result = %+v, want single send", result)
	}
}

func TestSendRemindersSkipsVoted(t *testing.T) {
	sender := &fakeSender{}
	svc := New(&memoryStore{subs: fixtureSubs()}, sender, "https://wahl.example/vote", 8)

	result, err := svc.SendReminders(context.Background())
	if err != nil {
		t.Fatalf("SendReminders() error = %v", err)
	}
	if result.Total != 2 || result.Sent != 2 {
		t.Fatalf("result = %+v, want reminders for the 2 unvoted confirmed groups", result)
	}
	for _, to := range sender.reminded {
		if to == "sued@x.test" {
			t.Fatalf("group that already voted received a reminder")
		}
	}
}

func TestFailuresAreRecordedPerRecipient(t *testing.T) {
	sender := &fakeSender{failFor: map[string]bool{"ost@x.test": true}}
	svc := New(&memoryStore{subs: fixtureSubs()}, sender, "https://wahl.example/vote", 8)

	result, err := svc.SendVotingStart(context.Background(), "")
	if err != nil {
		t.Fatalf("SendVotingStart() error = %v", err)
	}
	if result.Sent != 2 || result.Failed != 1 {
		t.Fatalf("result = %+v, want 2 sent and 1 failed", result)
	}

	var failed *RecipientResult
	for i := range result.Recipients {
		if !result.Recipients[i].Sent {
			failed = &result.Recipients[i]
		}
	}
	if failed == nil || failed.Email != "ost@x.test" || failed.Error == "" {
		t.Fatalf("failed recipient = %+v", failed)
	}
}

func TestStats(t *testing.T) {
	svc := New(&memoryStore{subs: fixtureSubs()}, &fakeSender{}, "https://wahl.example/vote", 8)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := Stats{Total: 4, Confirmed: 3, Pending: 1, Voted: 1}
	if stats != want {
		t.Fatalf("Stats() = %+v, want %+v", stats, want)
	}
}
