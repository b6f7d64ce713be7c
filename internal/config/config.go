package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// CredentialMode selects which credential scheme a deployment accepts.
const (
	CredentialModeToken = "token"
	CredentialModeEmail = "email"
)

// Config holds runtime configuration for the heimwahl service.
type Config struct {
	Addr           string   `env:"ADDR,default=:8080"`
	DBDSN          string   `env:"DB_DSN,required"`
	JWTSigningKey  string   `env:"JWT_SIGNING_KEY,required"`
	JWTIssuer      string   `env:"JWT_ISSUER,default=heimwahl"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	OTLPEndpoint   string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	NATSURL        string   `env:"NATS_URL"`
	FrontendURL    string   `env:"FRONTEND_URL,default=http://localhost:3000"`

	AdminTokenTTL time.Duration `env:"ADMIN_TOKEN_TTL,default=8h"`

	CredentialMode  string    `env:"CREDENTIAL_MODE,default=token"`
	BallotMaxSize   int       `env:"BALLOT_MAX_SIZE,default=8"`
	ElectionEndDate time.Time `env:"ELECTION_END_DATE"`

	PublicRateLimit  int           `env:"PUBLIC_RATE_LIMIT,default=30"`
	PublicRateWindow time.Duration `env:"PUBLIC_RATE_WINDOW,default=1m"`

	MailAPIURL        string `env:"MAIL_API_URL,default=https://api.lettermint.co/v1/send"`
	MailAPIKey        string `env:"MAIL_API_KEY"`
	MailFromEmail     string `env:"MAIL_FROM_EMAIL,default=noreply@heimwahl.example"`
	MailFromName      string `env:"MAIL_FROM_NAME,default=Landesheimrat-Wahl"`
	MailTemplatesFile string `env:"MAIL_TEMPLATES_FILE"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks election policy settings that envconfig tags cannot express.
func (c Config) Validate() error {
	switch c.CredentialMode {
	case CredentialModeToken, CredentialModeEmail:
	default:
		return fmt.Errorf("invalid CREDENTIAL_MODE %q: must be %q or %q", c.CredentialMode, CredentialModeToken, CredentialModeEmail)
	}
	if c.BallotMaxSize < 1 {
		return fmt.Errorf("invalid BALLOT_MAX_SIZE %d: must be at least 1", c.BallotMaxSize)
	}
	return nil
}
