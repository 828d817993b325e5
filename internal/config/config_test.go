package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigFailsClosedInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	if _, err := LoadConfig(); !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("got %v, want ErrMissingJWTSecret", err)
	}
}

func TestLoadConfigFallsBackToDevSecret(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.UsingDevSecret() {
		t.Error("development boot without a secret should use the fallback")
	}
	if cfg.Auth.JWTSecret == "" {
		t.Error("secret left empty")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_JWT_SECRET", "explicit")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.ChallengeTTL != 5*time.Minute {
		t.Errorf("ChallengeTTL = %v, want 5m", cfg.Auth.ChallengeTTL)
	}
	if cfg.Auth.MaxCodeAttempts != 5 {
		t.Errorf("MaxCodeAttempts = %d, want 5", cfg.Auth.MaxCodeAttempts)
	}
	if cfg.Auth.FixedCode != "123456" {
		t.Errorf("FixedCode = %q", cfg.Auth.FixedCode)
	}
	if cfg.UsingDevSecret() {
		t.Error("explicit secret flagged as dev fallback")
	}
	if cfg.IsProduction() {
		t.Error("development env reported as production")
	}
}

func TestLoadConfigRejectsNonPositiveAttempts(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_JWT_SECRET", "explicit")
	t.Setenv("AUTH_MAX_CODE_ATTEMPTS", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("zero attempt limit accepted")
	}
}
