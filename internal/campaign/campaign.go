package campaign

import (
	"context"

	"github.com/rs/zerolog/log"

	"heimwahl/internal/metrics"
	"heimwahl/internal/models"
)

// Sender is the subset of the mail service the campaign workflows use.
type Sender interface {
	SendVotingStart(ctx context.Context, to, groupName, votingLink string, maxCandidates int) error
	SendVotingReminder(ctx context.Context, to, groupName, votingLink string) error
}

// SubscriberStore selects campaign recipients.
type SubscriberStore interface {
	// ConfirmedSubscribers returns confirmed subscriptions, optionally
	// narrowed to a single address.
	ConfirmedSubscribers(ctx context.Context, onlyEmail string) ([]models.NewsletterSubscription, error)
	// UnvotedSubscribers returns confirmed subscriptions that have not voted.
	UnvotedSubscribers(ctx context.Context) ([]models.NewsletterSubscription, error)
	// Stats counts the subscriber base.
	Stats(ctx context.Context) (Stats, error)
}

// RecipientResult reports delivery of one campaign email.
type RecipientResult struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// Result summarizes a campaign run.
type Result struct {
	Total      int               `json:"total"`
	Sent       int               `json:"sent"`
	Failed     int               `json:"failed"`
	Recipients []RecipientResult `json:"recipients"`
}

// Stats describes the subscriber base.
type Stats struct {
	Total     int64 `json:"total"`
	Confirmed int64 `json:"confirmed"`
	Pending   int64 `json:"pending"`
	Voted     int64 `json:"voted"`
}

// Service runs email campaigns against the newsletter subscriber base.
// Delivery failures never abort a run; each recipient gets its own outcome.
type Service struct {
	store      SubscriberStore
	mail       Sender
	votingLink string
	maxBallot  int
}

func New(store SubscriberStore, mail Sender, votingLink string, maxBallot int) *Service {
	return &Service{store: store, mail: mail, votingLink: votingLink, maxBallot: maxBallot}
}

// SendVotingStart announces the election start to every confirmed subscriber,
// or to a single address when onlyEmail is set.
func (s *Service) SendVotingStart(ctx context.Context, onlyEmail string) (Result, error) {
	subs, err := s.store.ConfirmedSubscribers(ctx, onlyEmail)
	if err != nil {
		return Result{}, err
	}
	return s.run(ctx, subs, "voting_start", func(sub models.NewsletterSubscription) error {
		return s.mail.SendVotingStart(ctx, sub.Email, sub.DisplayGroupName(), s.votingLink, s.maxBallot)
	}), nil
}

// SendReminders mails every confirmed subscriber whose group has not voted.
func (s *Service) SendReminders(ctx context.Context) (Result, error) {
	subs, err := s.store.UnvotedSubscribers(ctx)
	if err != nil {
		return Result{}, err
	}
	return s.run(ctx, subs, "voting_reminder", func(sub models.NewsletterSubscription) error {
		return s.mail.SendVotingReminder(ctx, sub.Email, sub.DisplayGroupName(), s.votingLink)
	}), nil
}

// Stats counts the subscriber base.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx)
}

func (s *Service) run(ctx context.Context, subs []models.NewsletterSubscription, kind string, send func(models.NewsletterSubscription) error) Result {
	result := Result{Total: len(subs), Recipients: make([]RecipientResult, 0, len(subs))}
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			result.Recipients = append(result.Recipients, RecipientResult{Email: sub.Email, Error: err.Error()})
			result.Failed++
			continue
		}
		if err := send(sub); err != nil {
			log.Warn().Err(err).Str("email", sub.Email).Str("kind", kind).Msg("campaign mail failed")
			metrics.CampaignMailsFailed.WithLabelValues(kind).Inc()
			result.Recipients = append(result.Recipients, RecipientResult{Email: sub.Email, Error: err.Error()})
			result.Failed++
			continue
		}
		metrics.CampaignMailsSent.WithLabelValues(kind).Inc()
		result.Recipients = append(result.Recipients, RecipientResult{Email: sub.Email, Sent: true})
		result.Sent++
	}
	return result
}
