package mailer

import "context"

var defaultSubjects = map[string]string{
	"voting_token":       "Ihr Zugang zur Landesheimrat-Wahl",
	"newsletter_confirm": "Bitte bestätigen Sie Ihre Anmeldung - Landesheimrat-Wahl",
	"voting_start":       "Die Landesheimrat-Wahl hat begonnen!",
	"voting_reminder":    "Erinnerung: Ihre Stimme zur Landesheimrat-Wahl fehlt noch",
	"test_mail":          "Test-Email - Landesheimrat-Wahl",
}

const defaultTestMessage = "Dies ist eine Test-Email vom Landesheimrat-Wahl System."

// Service composes templates into messages and hands them to a Mailer.
type Service struct {
	mailer   Mailer
	engine   *Engine
	subjects map[string]string
}

func NewService(mailer Mailer) (*Service, error) {
	return NewServiceWithOverrides(mailer, Overrides{})
}

// NewServiceWithOverrides builds a Service whose subjects and template
// bodies may be replaced per deployment.
func NewServiceWithOverrides(mailer Mailer, overrides Overrides) (*Service, error) {
	engine, err := NewEngine()
	if err != nil {
		return nil, err
	}
	if err := overrides.apply(engine); err != nil {
		return nil, err
	}

	subjects := make(map[string]string, len(defaultSubjects))
	for k, v := range defaultSubjects {
		subjects[k] = v
	}
	for k, v := range overrides.Subjects {
		subjects[k] = v
	}

	return &Service{mailer: mailer, engine: engine, subjects: subjects}, nil
}

type votingTokenData struct {
	FacilityName string
	VotingLink   string
}

// SendVotingToken mails a facility its one-time voting link.
func (s *Service) SendVotingToken(ctx context.Context, to, facilityName, votingLink string) error {
	return s.send(ctx, to, "voting_token", votingTokenData{FacilityName: facilityName, VotingLink: votingLink})
}

type confirmData struct {
	GroupName   string
	ConfirmLink string
}

// SendNewsletterConfirmation mails the double-opt-in confirmation link.
func (s *Service) SendNewsletterConfirmation(ctx context.Context, to, groupName, confirmLink string) error {
	return s.send(ctx, to, "newsletter_confirm", confirmData{GroupName: groupName, ConfirmLink: confirmLink})
}

type campaignData struct {
	GroupName     string
	VotingLink    string
	MaxCandidates int
}

// SendVotingStart announces the election opening to a subscriber.
func (s *Service) SendVotingStart(ctx context.Context, to, groupName, votingLink string, maxCandidates int) error {
	return s.send(ctx, to, "voting_start", campaignData{GroupName: groupName, VotingLink: votingLink, MaxCandidates: maxCandidates})
}

// SendVotingReminder nudges a subscriber whose group has not voted yet.
func (s *Service) SendVotingReminder(ctx context.Context, to, groupName, votingLink string) error {
	return s.send(ctx, to, "voting_reminder", campaignData{GroupName: groupName, VotingLink: votingLink})
}

type testMailData struct {
	Message string
}

// SendTestMail delivers a diagnostic mail so admins can check delivery.
// Subject and message fall back to German defaults when empty.
func (s *Service) SendTestMail(ctx context.Context, to, subject, message string) error {
	if message == "" {
		message = defaultTestMessage
	}
	data := testMailData{Message: message}

	text, err := s.engine.Render("test_mail_text", data)
	if err != nil {
		return err
	}
	html, err := s.engine.Render("test_mail_html", data)
	if err != nil {
		return err
	}
	if subject == "" {
		subject = s.subjects["test_mail"]
	}
	return s.mailer.Send(ctx, Message{To: to, Subject: subject, Text: text, HTML: html})
}

func (s *Service) send(ctx context.Context, to, name string, data any) error {
	text, err := s.engine.Render(name+"_text", data)
	if err != nil {
		return err
	}
	html, err := s.engine.Render(name+"_html", data)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, Message{To: to, Subject: s.subjects[name], Text: text, HTML: html})
}
