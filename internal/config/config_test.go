package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hoops")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_PORT", "")
	t.Setenv("RATING_K_BASE", "")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()
	if cfg.AppPort != "8080" {
		t.Fatalf("AppPort = %q; want 8080", cfg.AppPort)
	}
	if cfg.KBase != 6 || cfg.DefaultRating != 1000 {
		t.Fatalf("rating defaults = %v/%v", cfg.KBase, cfg.DefaultRating)
	}
	if cfg.SnapshotTTL != 6*time.Hour {
		t.Fatalf("SnapshotTTL = %v", cfg.SnapshotTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hoops")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RATING_K_BASE", "8.5")
	t.Setenv("TEAM_SPLIT_CHANGE", "true")
	t.Setenv("EVENT_RATE_WINDOW_SECONDS", "30")
	t.Setenv("API_RATE_LIMIT", "not-a-number")

	cfg := Load()
	if cfg.KBase != 8.5 {
		t.Fatalf("KBase = %v; want 8.5", cfg.KBase)
	}
	if !cfg.SplitTeamChange {
		t.Fatalf("SplitTeamChange not set")
	}
	if cfg.EventRateWindow != 30*time.Second {
		t.Fatalf("EventRateWindow = %v", cfg.EventRateWindow)
	}
	if cfg.APIRateLimit != 120 {
		t.Fatalf("APIRateLimit = %d; want default 120", cfg.APIRateLimit)
	}
}

func TestLoadRejectsNonFiniteKBase(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hoops")
	t.Setenv("JWT_SECRET", "secret")

	for _, v := range []string{"Inf", "+Inf", "-Inf", "NaN", "-3", "0"} {
		t.Setenv("RATING_K_BASE", v)
		if cfg := Load(); cfg.KBase != 6 {
			t.Fatalf("RATING_K_BASE=%s: KBase = %v; want default 6", v, cfg.KBase)
		}
	}
}
