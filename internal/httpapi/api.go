package httpapi

import (
	"errors"

	"heimwahl/internal/audit"
	"heimwahl/internal/auth"
	"heimwahl/internal/ballot"
	"heimwahl/internal/campaign"
	"heimwahl/internal/config"
	"heimwahl/internal/mailer"
	"heimwahl/internal/results"
	"heimwahl/internal/settings"
)

// API wires stores, domain services, and configuration for HTTP handlers.
type API struct {
	store     *Store
	cfg       config.Config
	ballots   *ballot.Service
	results   *results.Service
	settings  *settings.Service
	campaigns *campaign.Service
	mail      *mailer.Service
	jwt       *auth.JWTService
	audit     *audit.Recorder
}

// New initialises the API layer over the shared store.
func New(store *Store, cfg config.Config) (*API, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.DB == nil || store.ORM == nil {
		return nil, errors.New("store DB and ORM are required")
	}

	settingsSvc := settings.New(store.ORM)

	overrides, err := mailer.LoadOverrides(cfg.MailTemplatesFile)
	if err != nil {
		return nil, err
	}
	mailSvc, err := mailer.NewServiceWithOverrides(mailer.NewClient(mailer.Config{
		APIURL:    cfg.MailAPIURL,
		APIKey:    cfg.MailAPIKey,
		FromEmail: cfg.MailFromEmail,
		FromName:  cfg.MailFromName,
	}), overrides)
	if err != nil {
		return nil, err
	}

	votingLink := cfg.FrontendURL + "/vote"

	return &API{
		store:     store,
		cfg:       cfg,
		ballots:   ballot.New(ballot.NewPostgres(store.DB), settingsSvc, cfg.CredentialMode, cfg.BallotMaxSize),
		results:   results.New(results.NewPostgres(store.DB, cfg.CredentialMode)),
		settings:  settingsSvc,
		campaigns: campaign.New(campaign.NewGormStore(store.ORM), mailSvc, votingLink, cfg.BallotMaxSize),
		mail:      mailSvc,
		jwt:       auth.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.AdminTokenTTL),
		audit:     audit.New(store.ORM),
	}, nil
}
