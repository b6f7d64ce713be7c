package config

import (
	"context"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/heimwahl_test")
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.CredentialMode != CredentialModeToken {
		t.Errorf("CredentialMode = %q, want %q", cfg.CredentialMode, CredentialModeToken)
	}
	if cfg.BallotMaxSize != 8 {
		t.Errorf("BallotMaxSize = %d, want 8", cfg.BallotMaxSize)
	}
	if cfg.AdminTokenTTL != 8*time.Hour {
		t.Errorf("AdminTokenTTL = %v, want 8h", cfg.AdminTokenTTL)
	}
	if cfg.JWTIssuer != "heimwahl" {
		t.Errorf("JWTIssuer = %q, want heimwahl", cfg.JWTIssuer)
	}
	if cfg.PublicRateLimit != 30 || cfg.PublicRateWindow != time.Minute {
		t.Errorf("rate limit = %d per %v, want 30 per 1m", cfg.PublicRateLimit, cfg.PublicRateWindow)
	}
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/heimwahl_test")
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key")
	t.Setenv("CREDENTIAL_MODE", "paper")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("Load() = nil error, want invalid mode error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "token mode",
			cfg:  Config{CredentialMode: CredentialModeToken, BallotMaxSize: 8},
		},
		{
			name: "email mode",
			cfg:  Config{CredentialMode: CredentialModeEmail, BallotMaxSize: 3},
		},
		{
			name:    "unknown mode",
			cfg:     Config{CredentialMode: "paper", BallotMaxSize: 8},
			wantErr: true,
		},
		{
			name:    "zero ballot size",
			cfg:     Config{CredentialMode: CredentialModeToken, BallotMaxSize: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
