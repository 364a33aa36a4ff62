package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.CalendarProvider != "gateway" {
		t.Errorf("CalendarProvider = %q, want gateway", cfg.CalendarProvider)
	}
	if cfg.CalendarPollInterval != 500*time.Millisecond {
		t.Errorf("CalendarPollInterval = %v, want 500ms", cfg.CalendarPollInterval)
	}
	if cfg.CalendarFlowTimeout != 5*time.Minute {
		t.Errorf("CalendarFlowTimeout = %v, want 5m", cfg.CalendarFlowTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CALENDAR_PROVIDER", "Google")
	t.Setenv("CALENDAR_POLL_INTERVAL", "250ms")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.lavenius.com, https://staging.lavenius.com")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.CalendarProvider != "google" {
		t.Errorf("CalendarProvider = %q, want google (lowercased)", cfg.CalendarProvider)
	}
	if cfg.CalendarPollInterval != 250*time.Millisecond {
		t.Errorf("CalendarPollInterval = %v, want 250ms", cfg.CalendarPollInterval)
	}
	if !cfg.RedisTLS {
		t.Error("RedisTLS should be true")
	}
	want := []string{"https://app.lavenius.com", "https://staging.lavenius.com"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Errorf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
}

func TestGetEnvAsDuration_Invalid(t *testing.T) {
	t.Setenv("CALENDAR_CLOSE_GRACE", "not-a-duration")
	cfg := Load()
	if cfg.CalendarCloseGrace != 2*time.Second {
		t.Errorf("CalendarCloseGrace = %v, want fallback 2s", cfg.CalendarCloseGrace)
	}
}
