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
	if cfg.MaxAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.BackoffBase != 2.0 {
		t.Fatalf("expected backoff base 2.0, got %v", cfg.BackoffBase)
	}
	if cfg.BackoffUnit != time.Second {
		t.Fatalf("expected backoff unit 1s, got %v", cfg.BackoffUnit)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("UNEWS_MAX_ATTEMPTS", "5")
	t.Setenv("UNEWS_ATTEMPT_TIMEOUT", "45s")
	t.Setenv("UNEWS_DEPLOY_CONCURRENCY", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxAttempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.AttemptTimeout != 45*time.Second {
		t.Fatalf("expected 45s timeout, got %v", cfg.AttemptTimeout)
	}
	if cfg.DeployConcurrency != 2 {
		t.Fatalf("expected concurrency 2, got %d", cfg.DeployConcurrency)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("UNEWS_MAX_ATTEMPTS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero attempts, got nil")
	}
}

func TestEnvIntFallbackOnGarbage(t *testing.T) {
	t.Setenv("TEST_INT_BAD", "abc")
	if v := envInt("TEST_INT_BAD", 7); v != 7 {
		t.Fatalf("expected fallback 7, got %d", v)
	}
}
