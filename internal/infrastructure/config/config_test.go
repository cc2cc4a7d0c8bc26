package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.DatabaseMaxConns != 25 {
		t.Errorf("expected 25 max conns, got %d", cfg.DatabaseMaxConns)
	}
	if cfg.MigrationsPath != "migrations" {
		t.Errorf("expected default migrations path, got %s", cfg.MigrationsPath)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("unexpected logging defaults: %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Errorf("expected 24h idempotency TTL, got %v", cfg.IdempotencyTTL)
	}
	if cfg.OutboxPollInterval != 5*time.Second {
		t.Errorf("expected 5s outbox poll interval, got %v", cfg.OutboxPollInterval)
	}
	if cfg.AuthEnabled {
		t.Error("expected auth disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_MAX_CONNS", "50")
	t.Setenv("MIGRATIONS_PATH", "/srv/migrations")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.HTTPPort)
	}
	if cfg.DatabaseMaxConns != 50 {
		t.Errorf("expected 50 max conns, got %d", cfg.DatabaseMaxConns)
	}
	if cfg.MigrationsPath != "/srv/migrations" {
		t.Errorf("expected overridden migrations path, got %s", cfg.MigrationsPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.LogLevel)
	}
	if cfg.HTTPShutdownTimeout != 30*time.Second {
		t.Errorf("expected 30s shutdown timeout, got %v", cfg.HTTPShutdownTimeout)
	}
	if !cfg.AuthEnabled || cfg.JWTSecret != "test-secret" {
		t.Error("expected auth enabled with secret")
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("DATABASE_TIMEOUT", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}
