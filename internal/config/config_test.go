package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL() != 7*24*time.Hour {
		t.Errorf("token ttl = %v, want 7 days", cfg.Auth.TokenTTL())
	}
	if cfg.Auth.OTPTTL() != time.Minute {
		t.Errorf("otp ttl = %v, want 1m", cfg.Auth.OTPTTL())
	}
	if cfg.Auth.CookieName != "token" {
		t.Errorf("cookie name = %q", cfg.Auth.CookieName)
	}
	if cfg.Backfill.BatchSize != 1000 {
		t.Errorf("batch size = %d, want 1000", cfg.Backfill.BatchSize)
	}
	if cfg.RateLimit.Generate.Window() != 15*time.Minute {
		t.Errorf("generate window = %v", cfg.RateLimit.Generate.Window())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BAKCHODDOST_SERVER_PORT", "8080")
	t.Setenv("BAKCHODDOST_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("BAKCHODDOST_BACKFILL_BATCH_SIZE", "250")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	want := []string{"https://a.example", "https://b.example"}
	if strings.Join(cfg.Server.CORSOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("cors origins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	if cfg.Backfill.BatchSize != 250 {
		t.Errorf("batch size = %d, want 250", cfg.Backfill.BatchSize)
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("BAKCHODDOST_SERVER_MODE", "production")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "auth.jwt_secret") {
		t.Fatalf("expected jwt_secret error, got %v", err)
	}

	t.Setenv("BAKCHODDOST_AUTH_JWT_SECRET", "a-real-secret")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with secret: %v", err)
	}
}

func TestValidate_BatchSize(t *testing.T) {
	cfg := &Config{Backfill: BackfillConfig{BatchSize: 0}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero batch size")
	}
}
